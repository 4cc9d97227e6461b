// Package storage publishes merged preference catalogs so that processes
// which do not run the hooks themselves can read the definitions.
package storage

import (
	"context"
	"fmt"

	"github.com/CreativeUnicorns/prefhook"
)

// Store defines the methods required for a catalog storage backend.
type Store interface {
	// Publish replaces the stored definitions with those of cat.
	Publish(ctx context.Context, cat *prefhook.Catalog) error
	// Load returns the stored definitions, including their Module.
	Load(ctx context.Context) (prefhook.Definitions, error)
	Close() error
}

type storeHook struct {
	name  string
	store Store
}

// AsHook exposes a published catalog as a hook named name, so a downstream
// Registry can merge it with its own modules.
func AsHook(name string, s Store) prefhook.Hook {
	return &storeHook{name: name, store: s}
}

func (h *storeHook) Name() string {
	return h.name
}

func (h *storeHook) UserPreferences(ctx context.Context) (prefhook.Definitions, error) {
	defs, err := h.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load published catalog: %w", err)
	}
	return defs, nil
}
