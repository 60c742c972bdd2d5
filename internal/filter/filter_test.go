package filter

import (
	"strings"
	"testing"
)

const sampleBody = `{"items":[{"name":"alpha","status":"active"},{"name":"beta","status":"archived"},{"name":"gamma","status":"active"}]}`

func TestApply_FilterNarrows(t *testing.T) {
	out, err := Apply(sampleBody, "items[?status=='active']", "")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "gamma") {
		t.Errorf("expected active items kept: %s", out)
	}
	if strings.Contains(out, "beta") {
		t.Errorf("expected archived item dropped: %s", out)
	}
}

func TestApply_QuerySelects(t *testing.T) {
	out, err := Apply(sampleBody, "", "items[].name")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for _, name := range []string{"alpha", "beta", "gamma"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %s in output: %s", name, out)
		}
	}
	if strings.Contains(out, "status") {
		t.Errorf("expected only names selected: %s", out)
	}
}

func TestApply_FilterThenQuery(t *testing.T) {
	out, err := Apply(sampleBody, "items[?status=='active']", "[].name")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if strings.Contains(out, "beta") {
		t.Errorf("filter must run before query: %s", out)
	}
	if !strings.Contains(out, "alpha") {
		t.Errorf("expected alpha selected: %s", out)
	}
}

func TestApply_NullResult(t *testing.T) {
	out, err := Apply(sampleBody, "", "missing")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != "null" {
		t.Errorf("expected null, got %s", out)
	}
}

func TestApply_InvalidJSON(t *testing.T) {
	if _, err := Apply("not json", "", "items"); err == nil {
		t.Error("expected error for invalid JSON body")
	}
}

func TestApply_InvalidExpression(t *testing.T) {
	if _, err := Apply(sampleBody, "", "items[?"); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestApply_ShellQuery(t *testing.T) {
	out, err := Apply(`{"a":1}`, "", "$(cat)")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != `{"a":1}` {
		t.Errorf("expected body piped through, got %s", out)
	}
}

func TestIsShellCommand(t *testing.T) {
	if !IsShellCommand("$(jq .)") {
		t.Error("expected shell command detected")
	}
	if IsShellCommand("items[].name") {
		t.Error("expected plain expression rejected")
	}
}

func TestIsValidJMESPath(t *testing.T) {
	if !IsValidJMESPath("items[].name") {
		t.Error("expected valid expression accepted")
	}
	if IsValidJMESPath("items[?") {
		t.Error("expected invalid expression rejected")
	}
}
