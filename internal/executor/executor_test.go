package executor

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/studiowebux/fetchr/internal/types"
)

func TestSend_BasicGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("X-Served-By", "test")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "pong")
	}))
	defer server.Close()

	draft := types.NewDraft()
	draft.URL = server.URL

	resp, err := NewHTTPSender(0).Send(context.Background(), draft)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("expected status 200, got %d", resp.Status)
	}
	if resp.StatusText != "OK" {
		t.Errorf("expected status text OK, got %s", resp.StatusText)
	}
	if resp.Body != "pong" {
		t.Errorf("expected body pong, got %s", resp.Body)
	}
	if resp.Size != 4 {
		t.Errorf("expected size 4, got %d", resp.Size)
	}
	if resp.Headers["X-Served-By"] != "test" {
		t.Errorf("expected response header captured, got %v", resp.Headers)
	}
}

func TestSend_OnlyEnabledHeaders(t *testing.T) {
	var gotEnabled, gotDisabled string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEnabled = r.Header.Get("X-Enabled")
		gotDisabled = r.Header.Get("X-Disabled")
	}))
	defer server.Close()

	draft := types.NewDraft()
	draft.URL = server.URL
	draft.Headers = []types.KeyValue{
		{Key: "X-Enabled", Value: "yes", Enabled: true},
		{Key: "X-Disabled", Value: "no", Enabled: false},
	}

	if _, err := NewHTTPSender(0).Send(context.Background(), draft); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotEnabled != "yes" {
		t.Errorf("enabled header not sent, got %q", gotEnabled)
	}
	if gotDisabled != "" {
		t.Errorf("disabled header was sent: %q", gotDisabled)
	}
}

func TestSend_JSONBodySetsContentType(t *testing.T) {
	var contentType, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		body = string(data)
	}))
	defer server.Close()

	draft := types.NewDraft()
	draft.Method = "POST"
	draft.URL = server.URL
	draft.BodyType = types.BodyJSON
	draft.Body = `{"a":1}`

	if _, err := NewHTTPSender(0).Send(context.Background(), draft); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("expected application/json, got %q", contentType)
	}
	if body != `{"a":1}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestSend_BasicAuth(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
	}))
	defer server.Close()

	draft := types.NewDraft()
	draft.URL = server.URL
	draft.AuthType = types.AuthBasic
	draft.AuthData = types.AuthData{Username: "bob", Password: "hunter2"}

	if _, err := NewHTTPSender(0).Send(context.Background(), draft); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("bob:hunter2"))
	if authHeader != want {
		t.Errorf("expected %q, got %q", want, authHeader)
	}
}

func TestSend_BearerAndAPIKeyAuth(t *testing.T) {
	var auth, apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		apiKey = r.Header.Get("X-Api-Key")
	}))
	defer server.Close()

	draft := types.NewDraft()
	draft.URL = server.URL
	draft.AuthType = types.AuthBearer
	draft.AuthData = types.AuthData{Token: "tok123"}
	if _, err := NewHTTPSender(0).Send(context.Background(), draft); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if auth != "Bearer tok123" {
		t.Errorf("expected bearer header, got %q", auth)
	}

	draft.AuthType = types.AuthAPIKey
	draft.AuthData = types.AuthData{Key: "X-Api-Key", Value: "secret"}
	if _, err := NewHTTPSender(0).Send(context.Background(), draft); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if apiKey != "secret" {
		t.Errorf("expected api key header, got %q", apiKey)
	}
}

func TestSend_MultipartForm(t *testing.T) {
	var contentType, fieldValue string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			return
		}
		fieldValue = r.FormValue("name")
	}))
	defer server.Close()

	draft := types.NewDraft()
	draft.Method = "POST"
	draft.URL = server.URL
	draft.BodyType = types.BodyForm
	draft.FormData = []types.FormField{
		{Key: "name", Value: "bob", Type: "text", Enabled: true},
		{Key: "skipped", Value: "x", Type: "text", Enabled: false},
	}

	if _, err := NewHTTPSender(0).Send(context.Background(), draft); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		t.Errorf("expected multipart content type, got %q", contentType)
	}
	if fieldValue != "bob" {
		t.Errorf("expected form field sent, got %q", fieldValue)
	}
}

func TestSend_Cookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
	}))
	defer server.Close()

	draft := types.NewDraft()
	draft.URL = server.URL

	resp, err := NewHTTPSender(0).Send(context.Background(), draft)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(resp.Cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(resp.Cookies))
	}
	if resp.Cookies[0].Name != "sid" || resp.Cookies[0].Value != "abc" {
		t.Errorf("unexpected cookie: %+v", resp.Cookies[0])
	}
}

func TestSend_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	draft := types.NewDraft()
	draft.URL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewHTTPSender(0).Send(ctx, draft); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(250); got != "250ms" {
		t.Errorf("expected 250ms, got %s", got)
	}
	if got := FormatDuration(1500); got != "1.50s" {
		t.Errorf("expected 1.50s, got %s", got)
	}
}

func TestFormatSize(t *testing.T) {
	if got := FormatSize(512); got != "512B" {
		t.Errorf("expected 512B, got %s", got)
	}
	if got := FormatSize(2048); got != "2.00KB" {
		t.Errorf("expected 2.00KB, got %s", got)
	}
}
