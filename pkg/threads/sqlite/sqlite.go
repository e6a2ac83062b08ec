// Package sqlite provides a SQLite-backed thread store. Each thread's
// snapshot is one JSON row, so a parked interrupt survives a process
// restart and can be resumed arbitrarily later.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/counterware/clerk/pkg/agent"
)

// Store implements agent.ThreadStore using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (and migrates) a SQLite-backed thread store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS threads (
			id TEXT PRIMARY KEY,
			snapshot TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating threads table: %w", err)
	}

	return &Store{db: db}, nil
}

// Load returns the snapshot for a thread, or agent.ErrThreadNotFound.
func (s *Store) Load(ctx context.Context, threadID string) (*agent.Snapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM threads WHERE id = ?`, threadID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, agent.ErrThreadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying thread %q: %w", threadID, err)
	}

	var snap agent.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot for %q: %w", threadID, err)
	}
	return &snap, nil
}

// Save stores the snapshot for a thread, replacing any prior one.
func (s *Store) Save(ctx context.Context, threadID string, snap *agent.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot for %q: %w", threadID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO threads (id, snapshot, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = CURRENT_TIMESTAMP
	`, threadID, string(raw))
	if err != nil {
		return fmt.Errorf("saving thread %q: %w", threadID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ agent.ThreadStore = (*Store)(nil)
