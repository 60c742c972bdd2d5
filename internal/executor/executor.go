// Package executor dispatches interpolated request drafts over HTTP.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/studiowebux/fetchr/internal/types"
)

// DefaultTimeout bounds a send when the caller's context carries no
// deadline of its own.
const DefaultTimeout = 30 * time.Second

// HTTPSender sends drafts with a shared net/http client. It implements
// store.Sender.
type HTTPSender struct {
	client *http.Client
}

// NewHTTPSender creates a sender. A zero timeout falls back to
// DefaultTimeout.
func NewHTTPSender(timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSender{
		client: &http.Client{Timeout: timeout},
	}
}

// Send performs the HTTP request described by an already-interpolated
// draft: enabled headers only, auth injected by auth type, body per body
// type. The context cancels or deadlines the whole exchange.
func (s *HTTPSender) Send(ctx context.Context, draft types.RequestDraft) (*types.HttpResponse, error) {
	body, contentType, err := buildBody(&draft)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, draft.Method, draft.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for _, h := range draft.Headers {
		if h.Enabled {
			req.Header.Set(h.Key, h.Value)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	applyAuth(req, &draft)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		headers[key] = strings.Join(values, ", ")
	}

	var cookies []types.Cookie
	for _, c := range resp.Cookies() {
		cookies = append(cookies, types.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}

	return &types.HttpResponse{
		Status:       resp.StatusCode,
		StatusText:   http.StatusText(resp.StatusCode),
		Headers:      headers,
		Body:         string(bodyBytes),
		ResponseTime: elapsed,
		Size:         len(bodyBytes),
		Cookies:      cookies,
	}, nil
}

// buildBody returns the request body reader and, for body types that imply
// one, the Content-Type to set.
func buildBody(draft *types.RequestDraft) (io.Reader, string, error) {
	switch draft.BodyType {
	case types.BodyJSON:
		if draft.Body == "" {
			return nil, "", nil
		}
		return strings.NewReader(draft.Body), "application/json", nil

	case types.BodyRaw:
		if draft.Body == "" {
			return nil, "", nil
		}
		return strings.NewReader(draft.Body), "", nil

	case types.BodyForm:
		return buildMultipart(draft.FormData)

	default:
		return nil, "", nil
	}
}

func buildMultipart(fields []types.FormField) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for _, field := range fields {
		if !field.Enabled {
			continue
		}
		if field.Type == "file" {
			if field.FilePath == "" {
				continue
			}
			data, err := os.ReadFile(field.FilePath)
			if err != nil {
				return nil, "", fmt.Errorf("failed to read file %s: %w", field.FilePath, err)
			}
			part, err := writer.CreateFormFile(field.Key, filepath.Base(field.FilePath))
			if err != nil {
				return nil, "", fmt.Errorf("failed to create form file: %w", err)
			}
			if _, err := part.Write(data); err != nil {
				return nil, "", fmt.Errorf("failed to write form file: %w", err)
			}
			continue
		}
		if err := writer.WriteField(field.Key, field.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form body: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}

func applyAuth(req *http.Request, draft *types.RequestDraft) {
	switch draft.AuthType {
	case types.AuthBasic:
		if draft.AuthData.Username != "" || draft.AuthData.Password != "" {
			req.SetBasicAuth(draft.AuthData.Username, draft.AuthData.Password)
		}
	case types.AuthBearer:
		if draft.AuthData.Token != "" {
			req.Header.Set("Authorization", "Bearer "+draft.AuthData.Token)
		}
	case types.AuthAPIKey:
		if draft.AuthData.Key != "" {
			req.Header.Set(draft.AuthData.Key, draft.AuthData.Value)
		}
	}
}

// FormatDuration renders a millisecond duration for display.
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000.0)
}

// FormatSize renders a byte count for display.
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}
