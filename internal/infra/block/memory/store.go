// Package memory implements an in-memory block Store for tests.
package memory

import (
	"context"
	"sync"

	"orchard/internal/block/core"
)

// Store implements core.Store backed by process memory. Intended for tests.
type Store struct {
	mu     sync.RWMutex
	blocks map[core.ID][]byte
	writes int
}

// New returns an empty in-memory block store.
func New() *Store { return &Store{blocks: make(map[core.ID][]byte)} }

// Driver returns the block driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// GetData returns a copy of the block contents.
func (s *Store) GetData(_ context.Context, id core.ID) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

// PatchData writes buf at offset, creating an erased block if needed.
func (s *Store) PatchData(_ context.Context, id core.ID, buf []byte, offset int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := core.Apply(s.blocks[id], buf, offset)
	if err != nil {
		return err
	}
	s.blocks[id] = next
	s.writes++
	return nil
}

// Writes returns the number of committed patches.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
