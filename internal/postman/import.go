// Package postman maps Postman collection (v2.1) documents to and from the
// internal collection/request shape.
package postman

import (
	"encoding/json"
	"fmt"

	"github.com/studiowebux/fetchr/internal/types"
	"github.com/tidwall/jsonc"
)

// Import is the internal shape produced from a Postman document: a named
// root plus flat folder and request lists addressed by folder path.
type Import struct {
	Name     string            `json:"name"`
	Folders  []ImportedFolder  `json:"folders"`
	Requests []ImportedRequest `json:"requests"`
}

// ImportedFolder is a folder positioned by the path of its ancestors.
type ImportedFolder struct {
	Name       string   `json:"name"`
	ParentPath []string `json:"parent_path"`
}

// ImportedRequest carries one request with its owning folder path.
type ImportedRequest struct {
	Name       string            `json:"name"`
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Headers    []types.KeyValue  `json:"headers"`
	Body       string            `json:"body"`
	BodyType   string            `json:"body_type"`
	AuthType   string            `json:"auth_type"`
	AuthData   string            `json:"auth_data"`
	FormData   []types.FormField `json:"form_data"`
	FolderPath []string          `json:"folder_path"`
}

type postmanCollection struct {
	Info postmanInfo   `json:"info"`
	Item []postmanItem `json:"item"`
}

type postmanInfo struct {
	Name string `json:"name"`
}

type postmanItem struct {
	Name    string          `json:"name"`
	Item    []postmanItem   `json:"item"`
	Request *postmanRequest `json:"request"`
}

type postmanRequest struct {
	Method string           `json:"method"`
	Header []postmanHeader  `json:"header"`
	Body   *postmanBody     `json:"body"`
	URL    json.RawMessage  `json:"url"`
	Auth   *json.RawMessage `json:"auth"`
}

type postmanHeader struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled"`
}

type postmanBody struct {
	Mode       string            `json:"mode"`
	Raw        string            `json:"raw"`
	FormData   []postmanFormData `json:"formdata"`
	URLEncoded []postmanFormData `json:"urlencoded"`
}

type postmanFormData struct {
	Key   string  `json:"key"`
	Value string  `json:"value"`
	Type  string  `json:"type"`
	Src   *string `json:"src"`
}

// Parse decodes a Postman v2.1 collection document. Comments and trailing
// commas are tolerated since documents are often pasted by hand.
func Parse(raw []byte) (*Import, error) {
	var collection postmanCollection
	if err := json.Unmarshal(jsonc.ToJSON(raw), &collection); err != nil {
		return nil, fmt.Errorf("invalid Postman collection: %w", err)
	}

	imp := &Import{Name: collection.Info.Name}
	processItems(collection.Item, imp, nil)
	return imp, nil
}

func processItems(items []postmanItem, imp *Import, path []string) {
	for _, item := range items {
		if item.Item != nil {
			imp.Folders = append(imp.Folders, ImportedFolder{
				Name:       item.Name,
				ParentPath: clonePath(path),
			})
			processItems(item.Item, imp, append(path, item.Name))
			continue
		}
		if item.Request == nil {
			continue
		}

		req := ImportedRequest{
			Name:       item.Name,
			Method:     item.Request.Method,
			URL:        parseURL(item.Request.URL),
			FolderPath: clonePath(path),
		}

		for _, h := range item.Request.Header {
			req.Headers = append(req.Headers, types.KeyValue{
				Key:     h.Key,
				Value:   h.Value,
				Enabled: !h.Disabled,
			})
		}

		req.Body, req.BodyType, req.FormData = parseBody(item.Request.Body)
		req.AuthType, req.AuthData = parseAuth(item.Request.Auth)

		imp.Requests = append(imp.Requests, req)
	}
}

// parseURL accepts both url shapes: a plain string or an object with a raw
// field.
func parseURL(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Raw string `json:"raw"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Raw
	}
	return ""
}

// parseBody maps Postman body modes onto the internal body types. Raw
// bodies import as json, matching how they are nearly always used.
func parseBody(body *postmanBody) (string, string, []types.FormField) {
	if body == nil {
		return "", types.BodyNone, nil
	}

	switch body.Mode {
	case "raw":
		return body.Raw, types.BodyJSON, nil
	case "formdata":
		var fields []types.FormField
		for _, f := range body.FormData {
			field := types.FormField{
				Key:     f.Key,
				Value:   f.Value,
				Type:    f.Type,
				Enabled: true,
			}
			if field.Type == "" {
				field.Type = "text"
			}
			if f.Src != nil {
				field.FilePath = *f.Src
			}
			fields = append(fields, field)
		}
		return "", types.BodyForm, fields
	case "urlencoded":
		var fields []types.FormField
		for _, f := range body.URLEncoded {
			fields = append(fields, types.FormField{
				Key:     f.Key,
				Value:   f.Value,
				Type:    "text",
				Enabled: true,
			})
		}
		return "", "urlencoded", fields
	default:
		return "", types.BodyNone, nil
	}
}

func parseAuth(raw *json.RawMessage) (string, string) {
	if raw == nil {
		return types.AuthNone, "{}"
	}

	var auth struct {
		Type   string              `json:"type"`
		Basic  []postmanAuthParam  `json:"basic"`
		Bearer []postmanAuthParam  `json:"bearer"`
		APIKey []postmanAuthParam  `json:"apikey"`
	}
	if err := json.Unmarshal(*raw, &auth); err != nil {
		return types.AuthNone, "{}"
	}

	switch auth.Type {
	case "basic":
		data := types.AuthData{}
		for _, p := range auth.Basic {
			switch p.Key {
			case "username":
				data.Username = p.Value
			case "password":
				data.Password = p.Value
			}
		}
		return types.AuthBasic, types.EncodeAuthData(data)
	case "bearer":
		for _, p := range auth.Bearer {
			if p.Key == "token" {
				return types.AuthBearer, types.EncodeAuthData(types.AuthData{Token: p.Value})
			}
		}
	case "apikey":
		data := types.AuthData{}
		for _, p := range auth.APIKey {
			switch p.Key {
			case "key":
				data.Key = p.Value
			case "value":
				data.Value = p.Value
			}
		}
		return types.AuthAPIKey, types.EncodeAuthData(data)
	}

	return types.AuthNone, "{}"
}

type postmanAuthParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func clonePath(path []string) []string {
	if len(path) == 0 {
		return nil
	}
	out := make([]string, len(path))
	copy(out, path)
	return out
}
