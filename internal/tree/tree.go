package tree

import "github.com/studiowebux/fetchr/internal/types"

// NodeType identifies what a tree node renders as.
type NodeType int

const (
	NodeFolder NodeType = iota
	NodeRequest
)

// Node is one entry in the rendered collection tree. It is derived state:
// rebuilt from the store's snapshots on every load, never patched.
type Node struct {
	Key        string
	Label      string
	Type       NodeType
	Collection *types.Collection
	Request    *types.Request
	Children   []Node
}

// Build folds the flat collection list and the per-collection request lists
// into an ordered tree. Sibling order follows the input list's insertion
// order; the output is a pure function of its inputs.
//
// Folders recurse first, then their own requests are appended as leaves.
// Non-folder nodes are leaf containers: they do not appear in the tree
// themselves, their requests expand directly at the current level.
func Build(collections []types.Collection, requestsByCollection map[string][]types.Request) []Node {
	return buildLevel(collections, requestsByCollection, nil)
}

func buildLevel(collections []types.Collection, requests map[string][]types.Request, parentID *string) []Node {
	var nodes []Node

	for i := range collections {
		col := collections[i]
		if !sameParent(col.ParentID, parentID) {
			continue
		}

		if col.IsFolder {
			children := buildLevel(collections, requests, &col.ID)
			for _, req := range requests[col.ID] {
				children = append(children, requestNode(req))
			}
			nodes = append(nodes, Node{
				Key:        col.ID,
				Label:      col.Name,
				Type:       NodeFolder,
				Collection: &col,
				Children:   children,
			})
			continue
		}

		for _, req := range requests[col.ID] {
			nodes = append(nodes, requestNode(req))
		}
	}

	return nodes
}

func requestNode(req types.Request) Node {
	r := req
	return Node{
		Key:     req.ID,
		Label:   req.Name,
		Type:    NodeRequest,
		Request: &r,
	}
}

// sameParent treats a nil parent_id as the root sentinel: it matches only
// a nil parentID, never an empty-string id.
func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
