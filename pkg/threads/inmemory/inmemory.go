// Package inmemory provides a map-backed thread store for tests and
// single-process runs. Snapshots are deep-copied through JSON on both
// reads and writes so callers never share mutable state with the store.
package inmemory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/counterware/clerk/pkg/agent"
)

// Store implements agent.ThreadStore in memory.
type Store struct {
	mu    sync.RWMutex
	snaps map[string][]byte
}

// NewStore creates an empty in-memory thread store.
func NewStore() *Store {
	return &Store{
		snaps: make(map[string][]byte),
	}
}

// Load returns the snapshot for a thread, or agent.ErrThreadNotFound.
func (s *Store) Load(_ context.Context, threadID string) (*agent.Snapshot, error) {
	s.mu.RLock()
	raw, ok := s.snaps[threadID]
	s.mu.RUnlock()

	if !ok {
		return nil, agent.ErrThreadNotFound
	}

	var snap agent.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot for %q: %w", threadID, err)
	}
	return &snap, nil
}

// Save stores the snapshot for a thread.
func (s *Store) Save(_ context.Context, threadID string, snap *agent.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot for %q: %w", threadID, err)
	}

	s.mu.Lock()
	s.snaps[threadID] = raw
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

var _ agent.ThreadStore = (*Store)(nil)
