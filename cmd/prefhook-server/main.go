// Package main is the entry point for the prefhook-server application.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CreativeUnicorns/prefhook"
	"github.com/CreativeUnicorns/prefhook/api"
	"github.com/CreativeUnicorns/prefhook/cache"
	"github.com/CreativeUnicorns/prefhook/config"
	"github.com/CreativeUnicorns/prefhook/provider/file"
	"github.com/CreativeUnicorns/prefhook/storage"
)

func main() {
	listenAddr := flag.String("listen-addr", "", "HTTP listen address (overrides PREFHOOK_LISTEN_ADDR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "prefhook-server: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddress = *listenAddr
	}

	level, err := prefhook.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prefhook-server: %v\n", err)
		os.Exit(1)
	}
	logger := prefhook.NewDefaultLogger()
	logger.SetLevel(level)
	logger.Info("Prefhook server starting up...")

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exited gracefully")
}

func run(cfg *config.Config, logger prefhook.Logger) error {
	policy, err := prefhook.ParseConflictPolicy(cfg.ConflictPolicy)
	if err != nil {
		return err
	}
	opts := []prefhook.Option{
		prefhook.WithLogger(logger),
		prefhook.WithConflictPolicy(policy),
		prefhook.WithHookTimeout(cfg.HookTimeout),
		prefhook.WithConcurrency(cfg.Concurrency),
		prefhook.WithCacheTTL(cfg.CacheTTL),
	}

	c, err := openCache(cfg)
	if err != nil {
		return err
	}
	if c != nil {
		defer func() {
			if err := c.Close(); err != nil {
				logger.Error("Failed to close cache", "error", err)
			}
		}()
		opts = append(opts, prefhook.WithCache(c))
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	var publisher api.Publisher
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close store", "error", err)
			}
		}()
		publisher = store
	}

	reg := prefhook.New(opts...)

	hooks, err := file.Dir(cfg.DefinitionsDir)
	if err != nil {
		return err
	}
	if err := reg.Register(hooks...); err != nil {
		return err
	}
	logger.Info("Registered user preferences hooks", "dir", cfg.DefinitionsDir, "modules", reg.Modules())

	// Collect once at startup so broken definitions fail fast.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	cat, err := reg.Collect(ctx)
	if err == nil && publisher != nil {
		err = publisher.Publish(ctx, cat)
	}
	cancel()
	if err != nil {
		return err
	}

	apiServer, err := api.NewServer(api.Config{
		ListenAddress: cfg.ListenAddress,
		Registry:      reg,
		Publisher:     publisher,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	return apiServer.Stop(shutdownCtx)
}

func openCache(cfg *config.Config) (prefhook.Cache, error) {
	switch cfg.Cache {
	case "redis":
		return cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "memory":
		return cache.NewMemoryCache(), nil
	default:
		return nil, nil
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Store {
	case "sqlite":
		return storage.NewSQLiteStore(cfg.StoreDSN)
	case "postgres":
		return storage.NewPostgresStore(cfg.StoreDSN)
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, nil
	}
}
