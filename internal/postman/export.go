package postman

import (
	"encoding/json"
	"fmt"

	"github.com/studiowebux/fetchr/internal/types"
)

type exportDocument struct {
	Name     string          `json:"name"`
	Requests []exportRequest `json:"requests"`
}

type exportRequest struct {
	Name     string           `json:"name"`
	Method   string           `json:"method"`
	URL      string           `json:"url"`
	Headers  []types.KeyValue `json:"headers"`
	Body     string           `json:"body"`
	BodyType string           `json:"body_type"`
	AuthType string           `json:"auth_type"`
	AuthData types.AuthData   `json:"auth_data"`
}

// Export serializes one collection and its requests into a portable JSON
// document. Serialized header and auth columns are decoded on the way out;
// corrupt ones export as empty, same as everywhere else.
func Export(collection types.Collection, requests []types.Request) (string, error) {
	doc := exportDocument{
		Name:     collection.Name,
		Requests: make([]exportRequest, 0, len(requests)),
	}

	for i := range requests {
		r := &requests[i]
		doc.Requests = append(doc.Requests, exportRequest{
			Name:     r.Name,
			Method:   r.Method,
			URL:      r.URL,
			Headers:  r.DecodedHeaders(),
			Body:     r.Body,
			BodyType: r.BodyType,
			AuthType: r.AuthType,
			AuthData: r.DecodedAuthData(),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize export: %w", err)
	}
	return string(data), nil
}
