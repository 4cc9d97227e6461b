// Package api provides the HTTP handlers, middleware and routing that expose
// the merged user preferences catalog.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/prefhook"
)

// Publisher receives every catalog collected through the refresh endpoint.
type Publisher interface {
	Publish(ctx context.Context, cat *prefhook.Catalog) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	registry   *prefhook.Registry
	publisher  Publisher
	logger     prefhook.Logger
	router     *chi.Mux
	httpServer *http.Server
}

// Config holds configuration for the API server.
type Config struct {
	ListenAddress string
	Registry      *prefhook.Registry
	// Publisher is optional.
	Publisher Publisher
	Logger    prefhook.Logger
}

// NewServer creates and configures a new API server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("%w: registry is required", prefhook.ErrInvalidInput)
	}
	if cfg.Logger == nil {
		cfg.Logger = prefhook.NewDefaultLogger()
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}

	s := &Server{
		registry:  cfg.Registry,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		router:    chi.NewRouter(),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server. It blocks until the server is shut down and
// returns nil after a graceful Stop.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("API server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("API server stopped gracefully")
	return nil
}
