package storage

import (
	"context"
	"sync"

	"github.com/CreativeUnicorns/prefhook"
)

// MemoryStore implements the Store interface using an in-memory map.
// This is useful for testing or single-process hosts.
type MemoryStore struct {
	mu   sync.RWMutex
	defs prefhook.Definitions
}

// NewMemoryStore creates a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		defs: make(prefhook.Definitions),
	}
}

// Publish replaces the stored definitions.
func (s *MemoryStore) Publish(_ context.Context, cat *prefhook.Catalog) error {
	defs := cat.Definitions()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = defs
	return nil
}

// Load returns a copy of the stored definitions.
func (s *MemoryStore) Load(_ context.Context) (prefhook.Definitions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(prefhook.Definitions, len(s.defs))
	for k, v := range s.defs {
		out[k] = v
	}
	return out, nil
}

// Close is a no-op for MemoryStore as there are no external resources to release.
func (s *MemoryStore) Close() error {
	return nil
}
