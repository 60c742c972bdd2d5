package interp

import (
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/studiowebux/fetchr/internal/types"
)

// Variable placeholder pattern: {{varName}}
var varPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Resolver resolves {{name}} tokens against the active environment's
// variable list. Resolution is total: unknown tokens stay literal and no
// environment means the input passes through unchanged.
type Resolver struct {
	vars      []types.Variable
	overrides map[string]string
}

// New creates a resolver for the given environment. env may be nil when no
// environment is active.
func New(env *types.Environment) *Resolver {
	r := &Resolver{}
	if env != nil {
		r.vars = env.DecodedVariables()
	}
	return r
}

// WithOverrides layers key=value overrides on top of the environment.
// Overrides win over environment variables. Used by the CLI -e flag.
func (r *Resolver) WithOverrides(overrides map[string]string) *Resolver {
	r.overrides = overrides
	return r
}

// Interpolate replaces every {{name}} occurrence in text. Lookup walks the
// environment's variable list in stored order; the first exact key match
// wins when keys collide.
func (r *Resolver) Interpolate(text string) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])

		if value, ok := r.overrides[name]; ok {
			return value
		}
		for _, v := range r.vars {
			if v.Key == name {
				return v.Value
			}
		}

		// Best-effort policy: leave unresolvable tokens in place.
		return match
	})
}

// InterpolateDraft returns an outbound copy of the draft with the URL,
// enabled header values, body (unless body_type is none) and enabled form
// field values resolved. The stored draft is never mutated.
func (r *Resolver) InterpolateDraft(draft types.RequestDraft) types.RequestDraft {
	out := draft

	out.URL = r.Interpolate(draft.URL)

	if len(draft.Headers) > 0 {
		out.Headers = make([]types.KeyValue, len(draft.Headers))
		copy(out.Headers, draft.Headers)
		for i := range out.Headers {
			if out.Headers[i].Enabled {
				out.Headers[i].Value = r.Interpolate(out.Headers[i].Value)
			}
		}
	}

	if draft.BodyType != types.BodyNone {
		out.Body = r.Interpolate(draft.Body)
	}

	if len(draft.FormData) > 0 {
		out.FormData = make([]types.FormField, len(draft.FormData))
		copy(out.FormData, draft.FormData)
		for i := range out.FormData {
			if out.FormData[i].Enabled {
				out.FormData[i].Value = r.Interpolate(out.FormData[i].Value)
			}
		}
	}

	return out
}

// LoadEnvFile reads key=value overrides from a .env style file.
func LoadEnvFile(path string) (map[string]string, error) {
	return godotenv.Read(path)
}
