package tui

import (
	"testing"

	"github.com/studiowebux/fetchr/internal/tree"
	"github.com/studiowebux/fetchr/internal/types"
)

func TestFlattenTree(t *testing.T) {
	nodes := []tree.Node{
		{
			Key: "col-1", Label: "Auth", Type: tree.NodeFolder,
			Children: []tree.Node{
				{Key: "col-2", Label: "Tokens", Type: tree.NodeFolder},
				{Key: "req-1", Label: "Login", Type: tree.NodeRequest, Request: &types.Request{ID: "req-1"}},
			},
		},
		{Key: "req-2", Label: "Ping", Type: tree.NodeRequest, Request: &types.Request{ID: "req-2"}},
	}

	rows := flattenTree(nodes, 0)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	wantLabels := []string{"Auth", "Tokens", "Login", "Ping"}
	wantDepths := []int{0, 1, 1, 0}
	for i, row := range rows {
		if row.node.Label != wantLabels[i] {
			t.Errorf("row %d: expected %s, got %s", i, wantLabels[i], row.node.Label)
		}
		if row.depth != wantDepths[i] {
			t.Errorf("row %d: expected depth %d, got %d", i, wantDepths[i], row.depth)
		}
	}
}

func TestFlattenTree_Empty(t *testing.T) {
	if rows := flattenTree(nil, 0); len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestNextMethod(t *testing.T) {
	if got := nextMethod("GET"); got != "POST" {
		t.Errorf("expected POST after GET, got %s", got)
	}
	if got := nextMethod("OPTIONS"); got != "GET" {
		t.Errorf("expected cycle back to GET, got %s", got)
	}
	if got := nextMethod("BREW"); got != "GET" {
		t.Errorf("expected unknown method to reset to GET, got %s", got)
	}
}

func TestNextBodyType(t *testing.T) {
	if got := nextBodyType(types.BodyNone); got != types.BodyJSON {
		t.Errorf("expected json after none, got %s", got)
	}
	if got := nextBodyType(types.BodyRaw); got != types.BodyNone {
		t.Errorf("expected cycle back to none, got %s", got)
	}
}

func TestRenderResponseBody(t *testing.T) {
	resp := &types.HttpResponse{
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    `{"ok":true}`,
	}
	out := renderResponseBody(resp)
	if out != "Content-Type: application/json\n\n{\"ok\":true}" {
		t.Errorf("unexpected rendering: %q", out)
	}
}
