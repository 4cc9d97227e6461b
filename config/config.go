// Package config loads the prefhook-server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/CreativeUnicorns/prefhook"
)

// Config holds the server settings.
type Config struct {
	ListenAddress  string        `env:"PREFHOOK_LISTEN_ADDR" envDefault:":8080"`
	LogLevel       string        `env:"PREFHOOK_LOG_LEVEL" envDefault:"info"`
	DefinitionsDir string        `env:"PREFHOOK_DEFINITIONS_DIR" envDefault:"./preferences"`
	ConflictPolicy string        `env:"PREFHOOK_CONFLICT_POLICY" envDefault:"reject"`
	HookTimeout    time.Duration `env:"PREFHOOK_HOOK_TIMEOUT" envDefault:"10s"`
	Concurrency    int           `env:"PREFHOOK_HOOK_CONCURRENCY" envDefault:"8"`

	// Cache is "memory", "redis" or "none".
	Cache         string        `env:"PREFHOOK_CACHE" envDefault:"memory"`
	CacheTTL      time.Duration `env:"PREFHOOK_CACHE_TTL" envDefault:"24h"`
	RedisAddr     string        `env:"PREFHOOK_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"PREFHOOK_REDIS_PASSWORD"`
	RedisDB       int           `env:"PREFHOOK_REDIS_DB" envDefault:"0"`

	// Store is "none", "memory", "sqlite" or "postgres". Every collected
	// catalog is published to it.
	Store    string `env:"PREFHOOK_STORE" envDefault:"none"`
	StoreDSN string `env:"PREFHOOK_STORE_DSN"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values that env parsing cannot.
func (c *Config) Validate() error {
	if _, err := prefhook.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid PREFHOOK_LOG_LEVEL: %w", err)
	}
	if _, err := prefhook.ParseConflictPolicy(c.ConflictPolicy); err != nil {
		return fmt.Errorf("invalid PREFHOOK_CONFLICT_POLICY: %w", err)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid PREFHOOK_HOOK_CONCURRENCY %d: must be >= 1", c.Concurrency)
	}

	switch c.Cache {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("invalid PREFHOOK_CACHE %q: must be memory, redis or none", c.Cache)
	}

	switch c.Store {
	case "none", "memory":
	case "sqlite", "postgres":
		if c.StoreDSN == "" {
			return fmt.Errorf("PREFHOOK_STORE_DSN is required for store %q", c.Store)
		}
	default:
		return fmt.Errorf("invalid PREFHOOK_STORE %q: must be none, memory, sqlite or postgres", c.Store)
	}
	return nil
}
