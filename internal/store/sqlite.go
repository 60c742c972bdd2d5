package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/fetchr/internal/types"
)

// SQLiteBackend implements Backend on a local sqlite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.initSchema(); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id TEXT,
		is_folder INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		collection_id TEXT NOT NULL,
		name TEXT NOT NULL,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		headers TEXT NOT NULL DEFAULT '[]',
		body TEXT NOT NULL DEFAULT '',
		body_type TEXT NOT NULL DEFAULT 'none',
		auth_type TEXT NOT NULL DEFAULT 'none',
		auth_data TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS environments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		variables TEXT NOT NULL DEFAULT '[]',
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		status INTEGER NOT NULL,
		response_time INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	if _, err := b.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *SQLiteBackend) ListCollections() ([]types.Collection, error) {
	rows, err := b.db.Query(
		"SELECT id, name, parent_id, is_folder, created_at FROM collections ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []types.Collection
	for rows.Next() {
		var c types.Collection
		var parentID sql.NullString
		var isFolder int
		if err := rows.Scan(&c.ID, &c.Name, &parentID, &isFolder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		if parentID.Valid {
			p := parentID.String
			c.ParentID = &p
		}
		c.IsFolder = isFolder != 0
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (b *SQLiteBackend) CreateCollection(c types.Collection) error {
	var parentID interface{}
	if c.ParentID != nil {
		parentID = *c.ParentID
	}
	_, err := b.db.Exec(
		"INSERT INTO collections (id, name, parent_id, is_folder, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, parentID, boolToInt(c.IsFolder), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) DeleteCollection(id string) error {
	// The requests FK cascade only fires with pragma foreign_keys on, so
	// owned requests are removed explicitly.
	if _, err := b.db.Exec("DELETE FROM requests WHERE collection_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete collection requests: %w", err)
	}
	if _, err := b.db.Exec("DELETE FROM collections WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) ListRequests(collectionID string) ([]types.Request, error) {
	rows, err := b.db.Query(
		`SELECT id, collection_id, name, method, url, headers, body, body_type, auth_type, auth_data, created_at, updated_at
		 FROM requests WHERE collection_id = ? ORDER BY created_at`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []types.Request
	for rows.Next() {
		var r types.Request
		if err := rows.Scan(&r.ID, &r.CollectionID, &r.Name, &r.Method, &r.URL,
			&r.Headers, &r.Body, &r.BodyType, &r.AuthType, &r.AuthData,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (b *SQLiteBackend) SaveRequest(r types.Request) error {
	_, err := b.db.Exec(
		`INSERT OR REPLACE INTO requests
		 (id, collection_id, name, method, url, headers, body, body_type, auth_type, auth_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CollectionID, r.Name, r.Method, r.URL, r.Headers, r.Body,
		r.BodyType, r.AuthType, r.AuthData, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) GetRequest(id string) (*types.Request, error) {
	var r types.Request
	err := b.db.QueryRow(
		`SELECT id, collection_id, name, method, url, headers, body, body_type, auth_type, auth_data, created_at, updated_at
		 FROM requests WHERE id = ?`, id).
		Scan(&r.ID, &r.CollectionID, &r.Name, &r.Method, &r.URL,
			&r.Headers, &r.Body, &r.BodyType, &r.AuthType, &r.AuthData,
			&r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &r, nil
}

func (b *SQLiteBackend) DeleteRequest(id string) error {
	if _, err := b.db.Exec("DELETE FROM requests WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) ListEnvironments() ([]types.Environment, error) {
	rows, err := b.db.Query(
		"SELECT id, name, variables, is_active, created_at FROM environments ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	defer rows.Close()

	var envs []types.Environment
	for rows.Next() {
		var e types.Environment
		var isActive int
		if err := rows.Scan(&e.ID, &e.Name, &e.Variables, &isActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan environment: %w", err)
		}
		e.IsActive = isActive != 0
		envs = append(envs, e)
	}
	return envs, rows.Err()
}

// SaveEnvironment upserts an environment. Saving an active environment
// deactivates all others first, keeping the at-most-one-active invariant.
func (b *SQLiteBackend) SaveEnvironment(e types.Environment) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if e.IsActive {
		if _, err := tx.Exec("UPDATE environments SET is_active = 0"); err != nil {
			return fmt.Errorf("failed to deactivate environments: %w", err)
		}
	}

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO environments (id, name, variables, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Variables, boolToInt(e.IsActive), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save environment: %w", err)
	}

	return tx.Commit()
}

func (b *SQLiteBackend) DeleteEnvironment(id string) error {
	if _, err := b.db.Exec("DELETE FROM environments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete environment: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) AddHistory(h types.HistoryEntry) error {
	_, err := b.db.Exec(
		"INSERT INTO history (id, method, url, status, response_time, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		h.ID, h.Method, h.URL, h.Status, h.ResponseTime, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) ListHistory(limit int) ([]types.HistoryEntry, error) {
	rows, err := b.db.Query(
		"SELECT id, method, url, status, response_time, created_at FROM history ORDER BY created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var h types.HistoryEntry
		if err := rows.Scan(&h.ID, &h.Method, &h.URL, &h.Status, &h.ResponseTime, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (b *SQLiteBackend) ClearHistory() error {
	if _, err := b.db.Exec("DELETE FROM history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
