package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/studiowebux/fetchr/internal/interp"
	"github.com/studiowebux/fetchr/internal/postman"
	"github.com/studiowebux/fetchr/internal/tree"
	"github.com/studiowebux/fetchr/internal/types"
)

// historyLimit caps how many history entries the mirror keeps loaded.
const historyLimit = 100

// Store orchestrates persistence and keeps in-memory mirrors of the
// collections, per-collection requests, environments and history.
//
// Every mutation is write-then-full-reload: the persistence call runs
// first, then the whole affected list is reloaded instead of patching the
// mirror. A failed write skips the reload, so the mirror stays at its
// last-known-good state and can never silently diverge from persisted
// truth. The extra round trip per mutation is the accepted cost.
//
// Mirrors are single-owner, UI-thread-only state: nothing outside the
// store writes them, and callers serialize mutating calls.
type Store struct {
	backend Backend
	sender  Sender

	collections  []types.Collection
	requests     map[string][]types.Request
	environments []types.Environment
	history      []types.HistoryEntry
}

// New creates a store over the given collaborators. Call LoadAll before
// reading the mirrors.
func New(backend Backend, sender Sender) *Store {
	return &Store{
		backend:  backend,
		sender:   sender,
		requests: make(map[string][]types.Request),
	}
}

// LoadAll populates every mirror from the backend.
func (s *Store) LoadAll() error {
	if err := s.reloadCollections(); err != nil {
		return err
	}
	for _, c := range s.collections {
		if err := s.reloadRequests(c.ID); err != nil {
			return err
		}
	}
	if err := s.reloadEnvironments(); err != nil {
		return err
	}
	return s.reloadHistory()
}

func (s *Store) reloadCollections() error {
	collections, err := s.backend.ListCollections()
	if err != nil {
		return fmt.Errorf("failed to reload collections: %w", err)
	}
	s.collections = collections
	return nil
}

func (s *Store) reloadRequests(collectionID string) error {
	requests, err := s.backend.ListRequests(collectionID)
	if err != nil {
		return fmt.Errorf("failed to reload requests: %w", err)
	}
	s.requests[collectionID] = requests
	return nil
}

func (s *Store) reloadEnvironments() error {
	envs, err := s.backend.ListEnvironments()
	if err != nil {
		return fmt.Errorf("failed to reload environments: %w", err)
	}
	s.environments = envs
	return nil
}

func (s *Store) reloadHistory() error {
	entries, err := s.backend.ListHistory(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to reload history: %w", err)
	}
	s.history = entries
	return nil
}

// Collections returns the collections mirror.
func (s *Store) Collections() []types.Collection {
	return s.collections
}

// Requests returns the request mirror for one collection.
func (s *Store) Requests(collectionID string) []types.Request {
	return s.requests[collectionID]
}

// RequestsByCollection returns the full request mirror keyed by collection id.
func (s *Store) RequestsByCollection() map[string][]types.Request {
	return s.requests
}

// Environments returns the environments mirror.
func (s *Store) Environments() []types.Environment {
	return s.environments
}

// ActiveEnvironment returns the active environment, or nil when none is.
func (s *Store) ActiveEnvironment() *types.Environment {
	for i := range s.environments {
		if s.environments[i].IsActive {
			return &s.environments[i]
		}
	}
	return nil
}

// History returns the history mirror, newest first.
func (s *Store) History() []types.HistoryEntry {
	return s.history
}

// Tree rebuilds the collection tree from the current mirrors.
func (s *Store) Tree() []tree.Node {
	return tree.Build(s.collections, s.requests)
}

// CreateCollection persists a new collection node and reloads the
// collection list.
func (s *Store) CreateCollection(name string, parentID *string, isFolder bool) (*types.Collection, error) {
	c := types.Collection{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		IsFolder:  isFolder,
		CreatedAt: now(),
	}
	if err := s.backend.CreateCollection(c); err != nil {
		return nil, err
	}
	if err := s.reloadCollections(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCollection removes a collection and reloads the collection list.
// The requests mirror entry goes with it.
func (s *Store) DeleteCollection(id string) error {
	if err := s.backend.DeleteCollection(id); err != nil {
		return err
	}
	delete(s.requests, id)
	return s.reloadCollections()
}

// SaveDraft persists a draft as a request entity (creating it when
// requestID is empty) and reloads the owning collection's request list.
func (s *Store) SaveDraft(draft types.RequestDraft, requestID, collectionID, name string) (*types.Request, error) {
	timestamp := now()
	r := types.Request{
		ID:           requestID,
		CollectionID: collectionID,
		Name:         name,
		Method:       draft.Method,
		URL:          draft.URL,
		Headers:      types.EncodeHeaders(draft.Headers),
		Body:         draft.Body,
		BodyType:     draft.BodyType,
		AuthType:     draft.AuthType,
		AuthData:     types.EncodeAuthData(draft.AuthData),
		CreatedAt:    timestamp,
		UpdatedAt:    timestamp,
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	} else if existing, err := s.backend.GetRequest(r.ID); err == nil && existing != nil {
		r.CreatedAt = existing.CreatedAt
	}

	if err := s.backend.SaveRequest(r); err != nil {
		return nil, err
	}
	if err := s.reloadRequests(collectionID); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRequest fetches one request from the backend. A missing id returns
// (nil, nil).
func (s *Store) GetRequest(id string) (*types.Request, error) {
	return s.backend.GetRequest(id)
}

// FindRequestByName searches the request mirrors for an exact name match.
func (s *Store) FindRequestByName(name string) *types.Request {
	for _, c := range s.collections {
		for i, r := range s.requests[c.ID] {
			if r.Name == name {
				return &s.requests[c.ID][i]
			}
		}
	}
	return nil
}

// DeleteRequest removes a request and reloads its collection's request
// list.
func (s *Store) DeleteRequest(id string) error {
	r, err := s.backend.GetRequest(id)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteRequest(id); err != nil {
		return err
	}
	if r != nil {
		return s.reloadRequests(r.CollectionID)
	}
	return nil
}

// SaveEnvironment upserts an environment and reloads the environment list.
func (s *Store) SaveEnvironment(env types.Environment) (*types.Environment, error) {
	if env.ID == "" {
		env.ID = uuid.NewString()
		env.CreatedAt = now()
	}
	if env.Variables == "" {
		env.Variables = "[]"
	}
	if err := s.backend.SaveEnvironment(env); err != nil {
		return nil, err
	}
	if err := s.reloadEnvironments(); err != nil {
		return nil, err
	}
	return &env, nil
}

// SetActiveEnvironment marks the target environment active, persists it,
// and reloads all environments to recompute the active one. Deactivating
// the previous active environment is the backend's job, not re-verified
// here.
func (s *Store) SetActiveEnvironment(id string) error {
	var target *types.Environment
	for i := range s.environments {
		if s.environments[i].ID == id {
			env := s.environments[i]
			target = &env
			break
		}
	}
	if target == nil {
		return fmt.Errorf("environment not found: %s", id)
	}

	target.IsActive = true
	if err := s.backend.SaveEnvironment(*target); err != nil {
		return err
	}
	return s.reloadEnvironments()
}

// DeleteEnvironment removes an environment and reloads the environment
// list.
func (s *Store) DeleteEnvironment(id string) error {
	if err := s.backend.DeleteEnvironment(id); err != nil {
		return err
	}
	return s.reloadEnvironments()
}

// ClearHistory wipes the history and reloads it.
func (s *Store) ClearHistory() error {
	if err := s.backend.ClearHistory(); err != nil {
		return err
	}
	return s.reloadHistory()
}

// Send interpolates the draft against the active environment (URL, then
// headers, then body), dispatches it through the network collaborator, and
// appends a history entry once the response settles. The stored draft is
// never mutated; only the outbound copy is resolved.
func (s *Store) Send(ctx context.Context, draft types.RequestDraft) (*types.HttpResponse, error) {
	resolver := interp.New(s.ActiveEnvironment())
	outbound := resolver.InterpolateDraft(draft)

	resp, err := s.sender.Send(ctx, outbound)
	if err != nil {
		return nil, err
	}

	entry := types.HistoryEntry{
		ID:           uuid.NewString(),
		Method:       outbound.Method,
		URL:          outbound.URL,
		Status:       resp.Status,
		ResponseTime: resp.ResponseTime,
		CreatedAt:    now(),
	}
	if err := s.backend.AddHistory(entry); err != nil {
		// The response is still useful; a failed history append must not
		// fail the send.
		return resp, nil
	}
	if err := s.reloadHistory(); err != nil {
		return resp, nil
	}
	return resp, nil
}

// Import persists an already-parsed Postman collection (root collection,
// folders by path, then requests) and reloads the affected mirrors. The
// raw-JSON parsing itself belongs to the postman collaborator.
func (s *Store) Import(imported *postman.Import) (string, error) {
	rootID := uuid.NewString()
	root := types.Collection{
		ID:        rootID,
		Name:      imported.Name,
		IsFolder:  true,
		CreatedAt: now(),
	}
	if err := s.backend.CreateCollection(root); err != nil {
		return "", err
	}

	folderIDs := map[string]string{"": rootID}
	for _, folder := range imported.Folders {
		folderID := uuid.NewString()
		parentID := folderIDs[pathKey(folder.ParentPath)]
		c := types.Collection{
			ID:        folderID,
			Name:      folder.Name,
			ParentID:  &parentID,
			IsFolder:  true,
			CreatedAt: now(),
		}
		if err := s.backend.CreateCollection(c); err != nil {
			return "", err
		}
		folderIDs[pathKey(folder.ParentPath)+folder.Name+"\x00"] = folderID
	}

	for _, req := range imported.Requests {
		collectionID, ok := folderIDs[pathKey(req.FolderPath)]
		if !ok {
			collectionID = rootID
		}
		timestamp := now()
		r := types.Request{
			ID:           uuid.NewString(),
			CollectionID: collectionID,
			Name:         req.Name,
			Method:       req.Method,
			URL:          req.URL,
			Headers:      types.EncodeHeaders(req.Headers),
			Body:         req.Body,
			BodyType:     req.BodyType,
			AuthType:     req.AuthType,
			AuthData:     req.AuthData,
			CreatedAt:    timestamp,
			UpdatedAt:    timestamp,
		}
		if err := s.backend.SaveRequest(r); err != nil {
			return "", err
		}
	}

	if err := s.reloadCollections(); err != nil {
		return "", err
	}
	for _, c := range s.collections {
		if err := s.reloadRequests(c.ID); err != nil {
			return "", err
		}
	}
	return rootID, nil
}

// Export returns the serialized export document for one collection,
// verbatim from the postman collaborator.
func (s *Store) Export(collectionID string) (string, error) {
	var collection *types.Collection
	for i := range s.collections {
		if s.collections[i].ID == collectionID {
			collection = &s.collections[i]
			break
		}
	}
	if collection == nil {
		return "", fmt.Errorf("collection not found: %s", collectionID)
	}

	requests, err := s.backend.ListRequests(collectionID)
	if err != nil {
		return "", err
	}
	return postman.Export(*collection, requests)
}

func pathKey(path []string) string {
	key := ""
	for _, part := range path {
		key += part + "\x00"
	}
	return key
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
