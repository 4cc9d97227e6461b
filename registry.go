// registry.go
package prefhook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// CatalogCacheKey is the cache key under which the merged catalog is stored.
const CatalogCacheKey = "prefhook:catalog"

const defaultConcurrency = 8

// Registry collects user preferences from every registered hook and merges
// them into a Catalog.
type Registry struct {
	mu      sync.RWMutex
	config  *Config
	hooks   []Hook
	names   map[string]struct{}
	catalog *Catalog
}

// New returns a Registry configured by opts.
func New(opts ...Option) *Registry {
	cfg := &Config{
		logger:      newDefaultLogger(),
		policy:      ConflictReject,
		concurrency: defaultConcurrency,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Registry{
		config: cfg,
		names:  make(map[string]struct{}),
	}
}

// Register adds hooks to the registry. Hooks are merged in registration
// order, which decides the winner under ConflictFirstWins and ConflictLastWins.
func (r *Registry) Register(hooks ...Hook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range hooks {
		if h == nil || h.Name() == "" {
			return fmt.Errorf("%w: hook must have a name", ErrInvalidInput)
		}
		if _, exists := r.names[h.Name()]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateHook, h.Name())
		}
		r.names[h.Name()] = struct{}{}
		r.hooks = append(r.hooks, h)
		r.config.logger.Debug("Registered user preferences hook", "module", h.Name())
	}
	return nil
}

// Modules returns the names of the registered hooks in registration order.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.hooks))
	for i, h := range r.hooks {
		names[i] = h.Name()
	}
	return names
}

// Collect invokes every registered hook, validates and merges their
// definitions and stores the result as the current catalog.
func (r *Registry) Collect(ctx context.Context) (*Catalog, error) {
	r.mu.RLock()
	hooks := append([]Hook(nil), r.hooks...)
	r.mu.RUnlock()

	results := make([]Definitions, len(hooks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.concurrency)

	for i, h := range hooks {
		i, h := i, h
		g.Go(func() error {
			hctx := gctx
			if r.config.hookTimeout > 0 {
				var cancel context.CancelFunc
				hctx, cancel = context.WithTimeout(gctx, r.config.hookTimeout)
				defer cancel()
			}
			defs, err := invokeHook(hctx, h)
			if err != nil {
				return err
			}
			results[i] = defs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.config.logger.Error("Failed to invoke user preferences hooks", "error", err)
		return nil, err
	}

	cat, err := r.merge(hooks, results)
	if err != nil {
		r.config.logger.Error("Failed to merge user preferences", "error", err)
		return nil, err
	}

	r.mu.Lock()
	r.catalog = cat
	r.mu.Unlock()

	if r.config.cache != nil {
		r.setToCache(ctx, cat)
	}

	r.config.logger.Info("Collected user preferences", "hooks", len(hooks), "preferences", cat.Len())
	return cat, nil
}

// Catalog returns the current catalog. When none has been collected yet it
// is loaded from the cache, and failing that collected from the hooks.
func (r *Registry) Catalog(ctx context.Context) (*Catalog, error) {
	r.mu.RLock()
	cat := r.catalog
	r.mu.RUnlock()
	if cat != nil {
		return cat, nil
	}

	if r.config.cache != nil {
		if cached, err := r.getFromCache(ctx); err == nil {
			r.mu.Lock()
			if r.catalog == nil {
				r.catalog = cached
			}
			cat = r.catalog
			r.mu.Unlock()
			return cat, nil
		} else if !errors.Is(err, ErrNotFound) {
			r.config.logger.Warn("Failed to load user preferences from cache", "error", err)
		}
	}

	return r.Collect(ctx)
}

// Invalidate drops the current catalog and its cached copy so the next call
// to Catalog collects the hooks again.
func (r *Registry) Invalidate(ctx context.Context) error {
	r.mu.Lock()
	r.catalog = nil
	r.mu.Unlock()

	if r.config.cache == nil {
		return nil
	}
	if err := r.config.cache.Delete(ctx, CatalogCacheKey); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (r *Registry) merge(hooks []Hook, results []Definitions) (*Catalog, error) {
	merged := make(Definitions)
	owners := make(map[string][]string)

	for i, h := range hooks {
		module := h.Name()
		keys := make([]string, 0, len(results[i]))
		for key := range results[i] {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			def := results[i][key]
			if err := def.Validate(key); err != nil {
				return nil, fmt.Errorf("%s: %w", module, err)
			}
			def.Module = module
			owners[key] = append(owners[key], module)

			if _, exists := merged[key]; exists {
				switch r.config.policy {
				case ConflictFirstWins:
					r.config.logger.Warn("Ignoring duplicate user preference", "key", key, "kept", merged[key].Module, "ignored", module)
					continue
				case ConflictLastWins:
					r.config.logger.Warn("Overriding duplicate user preference", "key", key, "replaced", merged[key].Module, "by", module)
				default:
					return nil, &CollisionError{Key: key, Modules: owners[key]}
				}
			}
			merged[key] = def
		}
	}

	return newCatalog(merged, time.Now()), nil
}

func (r *Registry) getFromCache(ctx context.Context) (*Catalog, error) {
	data, err := r.config.cache.Get(ctx, CatalogCacheKey)
	if err != nil {
		return nil, err
	}

	var cat Catalog
	if err := cat.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *Registry) setToCache(ctx context.Context, cat *Catalog) {
	data, err := cat.MarshalJSON()
	if err != nil {
		r.config.logger.Error("Failed to marshal user preferences for cache", "error", err)
		return
	}

	if err := r.config.cache.Set(ctx, CatalogCacheKey, data, r.config.cacheTTL); err != nil {
		r.config.logger.Error("Failed to cache user preferences", "error", err)
	}
}
