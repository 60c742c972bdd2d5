// Package curl serializes request drafts into portable curl commands.
package curl

import (
	"fmt"
	"strings"

	"github.com/studiowebux/fetchr/internal/types"
)

// Generate renders a draft as a single curl command. The method flag is
// omitted for GET, enabled headers keep their list order, auth flags come
// after them, and the URL is always the last token. No header
// deduplication happens except one check for an existing Content-Type
// before auto-injecting one for JSON bodies.
func Generate(draft types.RequestDraft) string {
	parts := []string{"curl"}

	if draft.Method != "" && draft.Method != "GET" {
		parts = append(parts, "-X", draft.Method)
	}

	hasContentType := false
	for _, h := range draft.Headers {
		if !h.Enabled {
			continue
		}
		if strings.EqualFold(h.Key, "Content-Type") {
			hasContentType = true
		}
		parts = append(parts, "-H", quote(h.Key+": "+h.Value))
	}

	switch draft.AuthType {
	case types.AuthBasic:
		parts = append(parts, "-u", quote(draft.AuthData.Username+":"+draft.AuthData.Password))
	case types.AuthBearer:
		parts = append(parts, "-H", quote("Authorization: Bearer "+draft.AuthData.Token))
	case types.AuthAPIKey:
		if draft.AuthData.Key != "" {
			parts = append(parts, "-H", quote(draft.AuthData.Key+": "+draft.AuthData.Value))
		}
	}

	switch draft.BodyType {
	case types.BodyJSON:
		if !hasContentType {
			parts = append(parts, "-H", quote("Content-Type: application/json"))
		}
		if draft.Body != "" {
			parts = append(parts, "-d", quote(draft.Body))
		}
	case types.BodyRaw:
		if draft.Body != "" {
			parts = append(parts, "-d", quote(draft.Body))
		}
	case types.BodyForm:
		for _, field := range draft.FormData {
			if !field.Enabled {
				continue
			}
			if field.Type == "file" && field.FilePath != "" {
				parts = append(parts, "-F", quote(fmt.Sprintf("%s=@%s", field.Key, field.FilePath)))
				continue
			}
			parts = append(parts, "-F", quote(field.Key+"="+field.Value))
		}
	}

	parts = append(parts, quote(draft.URL))
	return strings.Join(parts, " ")
}

// quote wraps a value in single quotes, escaping embedded single quotes
// the shell way: ' becomes '\''.
func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
