package postman

import (
	"strings"
	"testing"

	"github.com/studiowebux/fetchr/internal/types"
)

const sampleCollection = `{
	"info": {"name": "Sample API", "_postman_id": "abc"},
	"item": [
		{
			"name": "Auth",
			"item": [
				{
					"name": "Login",
					"request": {
						"method": "POST",
						"header": [
							{"key": "Accept", "value": "application/json"},
							{"key": "X-Debug", "value": "1", "disabled": true}
						],
						"body": {"mode": "raw", "raw": "{\"user\":\"bob\"}"},
						"url": {"raw": "https://{{host}}/login"}
					}
				},
				{
					"name": "Nested",
					"item": [
						{
							"name": "Me",
							"request": {
								"method": "GET",
								"url": "https://{{host}}/me",
								"auth": {
									"type": "bearer",
									"bearer": [{"key": "token", "value": "{{token}}"}]
								}
							}
						}
					]
				}
			]
		},
		{
			"name": "Ping",
			"request": {
				"method": "GET",
				"url": "https://{{host}}/ping"
			}
		}
	]
}`

func TestParse_FoldersAndPaths(t *testing.T) {
	imp, err := Parse([]byte(sampleCollection))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if imp.Name != "Sample API" {
		t.Errorf("expected collection name Sample API, got %s", imp.Name)
	}

	if len(imp.Folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(imp.Folders))
	}
	if imp.Folders[0].Name != "Auth" || len(imp.Folders[0].ParentPath) != 0 {
		t.Errorf("unexpected first folder: %+v", imp.Folders[0])
	}
	if imp.Folders[1].Name != "Nested" || strings.Join(imp.Folders[1].ParentPath, "/") != "Auth" {
		t.Errorf("unexpected nested folder: %+v", imp.Folders[1])
	}

	if len(imp.Requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(imp.Requests))
	}
	if got := strings.Join(imp.Requests[1].FolderPath, "/"); got != "Auth/Nested" {
		t.Errorf("expected folder path Auth/Nested, got %s", got)
	}
	if len(imp.Requests[2].FolderPath) != 0 {
		t.Errorf("expected root-level request, got path %v", imp.Requests[2].FolderPath)
	}
}

func TestParse_HeaderDisabledInversion(t *testing.T) {
	imp, err := Parse([]byte(sampleCollection))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	login := imp.Requests[0]
	if len(login.Headers) != 2 {
		t.Fatalf("expected 2 headers, got %d", len(login.Headers))
	}
	if !login.Headers[0].Enabled {
		t.Error("header without disabled flag should import enabled")
	}
	if login.Headers[1].Enabled {
		t.Error("disabled header should import as not enabled")
	}
}

func TestParse_RawBodyImportsAsJSON(t *testing.T) {
	imp, err := Parse([]byte(sampleCollection))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	login := imp.Requests[0]
	if login.BodyType != types.BodyJSON {
		t.Errorf("expected raw body to import as json, got %s", login.BodyType)
	}
	if login.Body != `{"user":"bob"}` {
		t.Errorf("unexpected body: %s", login.Body)
	}

	ping := imp.Requests[2]
	if ping.BodyType != types.BodyNone {
		t.Errorf("expected no body type none, got %s", ping.BodyType)
	}
}

func TestParse_BearerAuth(t *testing.T) {
	imp, err := Parse([]byte(sampleCollection))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	me := imp.Requests[1]
	if me.AuthType != types.AuthBearer {
		t.Fatalf("expected bearer auth, got %s", me.AuthType)
	}
	r := types.Request{AuthData: me.AuthData}
	if got := r.DecodedAuthData().Token; got != "{{token}}" {
		t.Errorf("expected token preserved, got %s", got)
	}
}

func TestParse_URLStringShape(t *testing.T) {
	imp, err := Parse([]byte(sampleCollection))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if imp.Requests[2].URL != "https://{{host}}/ping" {
		t.Errorf("string-shaped url not parsed: %s", imp.Requests[2].URL)
	}
	if imp.Requests[0].URL != "https://{{host}}/login" {
		t.Errorf("object-shaped url not parsed: %s", imp.Requests[0].URL)
	}
}

func TestParse_ToleratesComments(t *testing.T) {
	doc := `{
		// exported by hand
		"info": {"name": "Commented"},
		"item": [],
	}`
	imp, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed on commented JSON: %v", err)
	}
	if imp.Name != "Commented" {
		t.Errorf("expected name Commented, got %s", imp.Name)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("not a collection")); err == nil {
		t.Error("expected error for invalid document")
	}
}

func TestParse_URLEncodedBody(t *testing.T) {
	doc := `{
		"info": {"name": "Forms"},
		"item": [{
			"name": "Submit",
			"request": {
				"method": "POST",
				"url": "https://example.com/submit",
				"body": {
					"mode": "urlencoded",
					"urlencoded": [{"key": "a", "value": "1"}]
				}
			}
		}]
	}`
	imp, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	req := imp.Requests[0]
	if req.BodyType != "urlencoded" {
		t.Errorf("expected urlencoded body type, got %s", req.BodyType)
	}
	if len(req.FormData) != 1 || req.FormData[0].Key != "a" || !req.FormData[0].Enabled {
		t.Errorf("unexpected form data: %+v", req.FormData)
	}
}

func TestExport_RoundShape(t *testing.T) {
	col := types.Collection{ID: "c1", Name: "Sample", IsFolder: true}
	reqs := []types.Request{{
		ID:       "r1",
		Name:     "Login",
		Method:   "POST",
		URL:      "https://example.com/login",
		Headers:  `[{"key":"Accept","value":"*/*","enabled":true}]`,
		Body:     "{}",
		BodyType: types.BodyJSON,
		AuthType: types.AuthNone,
		AuthData: "{}",
	}}

	out, err := Export(col, reqs)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	for _, want := range []string{`"name": "Sample"`, `"method": "POST"`, `"key": "Accept"`} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %s:\n%s", want, out)
		}
	}
}

func TestExport_CorruptColumnsExportEmpty(t *testing.T) {
	col := types.Collection{ID: "c1", Name: "Broken", IsFolder: true}
	reqs := []types.Request{{
		ID:       "r1",
		Name:     "Bad",
		Method:   "GET",
		URL:      "https://example.com",
		Headers:  "{corrupt",
		AuthData: "corrupt",
	}}

	out, err := Export(col, reqs)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(out, `"headers": []`) {
		t.Errorf("expected corrupt headers to export empty:\n%s", out)
	}
}
