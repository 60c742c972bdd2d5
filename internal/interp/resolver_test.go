package interp

import (
	"testing"

	"github.com/studiowebux/fetchr/internal/types"
)

func envWith(vars []types.Variable) *types.Environment {
	return &types.Environment{
		ID:        "env-1",
		Name:      "test",
		Variables: types.EncodeVariables(vars),
		IsActive:  true,
	}
}

func TestInterpolate_SimpleValue(t *testing.T) {
	r := New(envWith([]types.Variable{{Key: "x", Value: "42"}}))
	if got := r.Interpolate("{{x}}"); got != "42" {
		t.Errorf("expected 42, got %s", got)
	}
}

func TestInterpolate_MissingStaysLiteral(t *testing.T) {
	r := New(envWith([]types.Variable{{Key: "x", Value: "42"}}))
	if got := r.Interpolate("{{missing}}"); got != "{{missing}}" {
		t.Errorf("expected input unchanged, got %s", got)
	}
}

func TestInterpolate_NoEnvironment(t *testing.T) {
	r := New(nil)
	if got := r.Interpolate("https://{{host}}/login"); got != "https://{{host}}/login" {
		t.Errorf("expected input unchanged, got %s", got)
	}
}

func TestInterpolate_AllOccurrences(t *testing.T) {
	r := New(envWith([]types.Variable{{Key: "host", Value: "api.test"}}))
	got := r.Interpolate("{{host}}/a and {{host}}/b")
	if got != "api.test/a and api.test/b" {
		t.Errorf("expected both tokens resolved, got %s", got)
	}
}

func TestInterpolate_DuplicateKeysFirstWins(t *testing.T) {
	r := New(envWith([]types.Variable{
		{Key: "x", Value: "first"},
		{Key: "x", Value: "second"},
	}))
	if got := r.Interpolate("{{x}}"); got != "first" {
		t.Errorf("expected first match to win, got %s", got)
	}
}

func TestInterpolate_TrimsTokenName(t *testing.T) {
	r := New(envWith([]types.Variable{{Key: "x", Value: "42"}}))
	if got := r.Interpolate("{{ x }}"); got != "42" {
		t.Errorf("expected trimmed name lookup, got %s", got)
	}
}

func TestInterpolate_Overrides(t *testing.T) {
	r := New(envWith([]types.Variable{{Key: "x", Value: "env"}})).
		WithOverrides(map[string]string{"x": "cli"})
	if got := r.Interpolate("{{x}}"); got != "cli" {
		t.Errorf("expected override to win, got %s", got)
	}
}

func TestInterpolateDraft_DoesNotMutateInput(t *testing.T) {
	r := New(envWith([]types.Variable{{Key: "host", Value: "api.test"}}))
	draft := types.RequestDraft{
		Method:   "POST",
		URL:      "https://{{host}}/login",
		Headers:  []types.KeyValue{{Key: "X-Host", Value: "{{host}}", Enabled: true}},
		Body:     `{"host":"{{host}}"}`,
		BodyType: types.BodyJSON,
	}

	out := r.InterpolateDraft(draft)

	if out.URL != "https://api.test/login" {
		t.Errorf("expected resolved URL, got %s", out.URL)
	}
	if out.Headers[0].Value != "api.test" {
		t.Errorf("expected resolved header, got %s", out.Headers[0].Value)
	}
	if out.Body != `{"host":"api.test"}` {
		t.Errorf("expected resolved body, got %s", out.Body)
	}

	if draft.URL != "https://{{host}}/login" {
		t.Error("input draft URL was mutated")
	}
	if draft.Headers[0].Value != "{{host}}" {
		t.Error("input draft header was mutated")
	}
	if draft.Body != `{"host":"{{host}}"}` {
		t.Error("input draft body was mutated")
	}
}

func TestInterpolateDraft_SkipsDisabledHeaders(t *testing.T) {
	r := New(envWith([]types.Variable{{Key: "tok", Value: "secret"}}))
	draft := types.NewDraft()
	draft.Headers = []types.KeyValue{
		{Key: "Authorization", Value: "{{tok}}", Enabled: false},
		{Key: "X-Token", Value: "{{tok}}", Enabled: true},
	}

	out := r.InterpolateDraft(draft)

	if out.Headers[0].Value != "{{tok}}" {
		t.Errorf("disabled header should stay literal, got %s", out.Headers[0].Value)
	}
	if out.Headers[1].Value != "secret" {
		t.Errorf("enabled header should resolve, got %s", out.Headers[1].Value)
	}
}

func TestInterpolateDraft_SkipsBodyWhenNone(t *testing.T) {
	r := New(envWith([]types.Variable{{Key: "x", Value: "42"}}))
	draft := types.NewDraft()
	draft.Body = "{{x}}"

	out := r.InterpolateDraft(draft)
	if out.Body != "{{x}}" {
		t.Errorf("body with type none should stay literal, got %s", out.Body)
	}
}
