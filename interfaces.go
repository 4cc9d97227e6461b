// Package prefhook defines the interfaces a Registry depends on.
package prefhook

import (
	"context"
	"time"
)

// Hook is implemented by every module that contributes user preferences.
// Name identifies the module and must be unique within a Registry.
type Hook interface {
	Name() string
	UserPreferences(ctx context.Context) (Definitions, error)
}

// Cache defines the methods required for a caching backend.
// Get returns ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
