package store

import (
	"context"

	"github.com/studiowebux/fetchr/internal/types"
)

// Backend is the persistence collaborator. Every call may fail; the store
// treats each failure as terminal for that one operation.
type Backend interface {
	ListCollections() ([]types.Collection, error)
	CreateCollection(c types.Collection) error
	DeleteCollection(id string) error

	ListRequests(collectionID string) ([]types.Request, error)
	SaveRequest(r types.Request) error
	GetRequest(id string) (*types.Request, error)
	DeleteRequest(id string) error

	ListEnvironments() ([]types.Environment, error)
	SaveEnvironment(e types.Environment) error
	DeleteEnvironment(id string) error

	AddHistory(h types.HistoryEntry) error
	ListHistory(limit int) ([]types.HistoryEntry, error)
	ClearHistory() error
}

// Sender is the network collaborator that dispatches an already
// interpolated draft.
type Sender interface {
	Send(ctx context.Context, draft types.RequestDraft) (*types.HttpResponse, error)
}
