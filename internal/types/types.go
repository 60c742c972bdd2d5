package types

import "encoding/json"

// Body types for a request draft.
const (
	BodyNone = "none"
	BodyJSON = "json"
	BodyForm = "form"
	BodyRaw  = "raw"
)

// Auth types for a request draft.
const (
	AuthNone   = "none"
	AuthBasic  = "basic"
	AuthBearer = "bearer"
	AuthAPIKey = "apikey"
)

// KeyValue is one editable header row. Disabled rows are kept for editing
// but excluded from interpolation and sending.
type KeyValue struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// FormField is one multipart form entry. Type is "text" or "file".
type FormField struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Type     string `json:"type"`
	Enabled  bool   `json:"enabled"`
	FilePath string `json:"file_path,omitempty"`
}

// AuthData holds the credentials for whichever auth type is selected.
type AuthData struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
	Key      string `json:"key,omitempty"`
	Value    string `json:"value_field,omitempty"`
}

// RequestDraft is an in-memory, possibly-unsaved request configuration.
// Drafts live inside tabs and hold copies of persisted data, never live
// references.
type RequestDraft struct {
	Method   string      `json:"method"`
	URL      string      `json:"url"`
	Headers  []KeyValue  `json:"headers"`
	Body     string      `json:"body"`
	BodyType string      `json:"body_type"`
	AuthType string      `json:"auth_type"`
	AuthData AuthData    `json:"auth_data"`
	FormData []FormField `json:"form_data,omitempty"`
}

// NewDraft returns the default empty draft used for fresh tabs.
func NewDraft() RequestDraft {
	return RequestDraft{
		Method:   "GET",
		BodyType: BodyNone,
		AuthType: AuthNone,
	}
}

// Cookie is a response cookie extracted from Set-Cookie headers.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// HttpResponse is the result of sending a request.
type HttpResponse struct {
	Status       int               `json:"status"`
	StatusText   string            `json:"status_text"`
	Headers      map[string]string `json:"headers"`
	Body         string            `json:"body"`
	ResponseTime int64             `json:"response_time"` // milliseconds
	Size         int               `json:"size"`          // bytes
	Cookies      []Cookie          `json:"cookies"`
}

// Collection is a tree entity: a folder or a leaf request-container.
// Both kinds may own requests; only tree rendering distinguishes them.
type Collection struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	IsFolder  bool    `json:"is_folder"`
	CreatedAt string  `json:"created_at"`
}

// Request is a persisted request entity owned by exactly one collection.
// Headers and AuthData are stored as serialized JSON.
type Request struct {
	ID           string `json:"id"`
	CollectionID string `json:"collection_id"`
	Name         string `json:"name"`
	Method       string `json:"method"`
	URL          string `json:"url"`
	Headers      string `json:"headers"`
	Body         string `json:"body"`
	BodyType     string `json:"body_type"`
	AuthType     string `json:"auth_type"`
	AuthData     string `json:"auth_data"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// Variable is one entry in an environment's ordered variable list.
type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Environment holds a named set of variables. At most one environment is
// active at a time; the store's backend enforces that invariant.
type Environment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Variables string `json:"variables"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// HistoryEntry is an append-only record of a sent request. It carries no
// foreign key to Request, so history survives request deletion.
type HistoryEntry struct {
	ID           string `json:"id"`
	Method       string `json:"method"`
	URL          string `json:"url"`
	Status       int    `json:"status"`
	ResponseTime int64  `json:"response_time"`
	CreatedAt    string `json:"created_at"`
}

// DecodedHeaders parses the serialized headers column. Malformed data
// resolves to an empty list rather than an error.
func (r *Request) DecodedHeaders() []KeyValue {
	var headers []KeyValue
	if err := json.Unmarshal([]byte(r.Headers), &headers); err != nil {
		return []KeyValue{}
	}
	return headers
}

// DecodedAuthData parses the serialized auth_data column. Malformed data
// resolves to the zero value.
func (r *Request) DecodedAuthData() AuthData {
	var auth AuthData
	if err := json.Unmarshal([]byte(r.AuthData), &auth); err != nil {
		return AuthData{}
	}
	return auth
}

// DecodedVariables parses the serialized variables column. Malformed data
// resolves to an empty list.
func (e *Environment) DecodedVariables() []Variable {
	var vars []Variable
	if err := json.Unmarshal([]byte(e.Variables), &vars); err != nil {
		return []Variable{}
	}
	return vars
}

// DraftFromRequest hydrates an editable draft from a persisted request.
// The draft is a copy; later edits to it never touch the entity.
func DraftFromRequest(r *Request) RequestDraft {
	draft := RequestDraft{
		Method:   r.Method,
		URL:      r.URL,
		Headers:  r.DecodedHeaders(),
		Body:     r.Body,
		BodyType: r.BodyType,
		AuthType: r.AuthType,
		AuthData: r.DecodedAuthData(),
	}
	if draft.Method == "" {
		draft.Method = "GET"
	}
	if draft.BodyType == "" {
		draft.BodyType = BodyNone
	}
	if draft.AuthType == "" {
		draft.AuthType = AuthNone
	}
	return draft
}

// EncodeHeaders serializes a header list for storage.
func EncodeHeaders(headers []KeyValue) string {
	if headers == nil {
		headers = []KeyValue{}
	}
	data, err := json.Marshal(headers)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// EncodeAuthData serializes auth credentials for storage.
func EncodeAuthData(auth AuthData) string {
	data, err := json.Marshal(auth)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// EncodeVariables serializes an environment's variable list for storage.
func EncodeVariables(vars []Variable) string {
	if vars == nil {
		vars = []Variable{}
	}
	data, err := json.Marshal(vars)
	if err != nil {
		return "[]"
	}
	return string(data)
}
