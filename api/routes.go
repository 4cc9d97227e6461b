package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.SetHeader("Content-Type", "application/json"))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})

		r.Route("/definitions", func(r chi.Router) {
			r.Get("/", s.handleListDefinitions)            // GET /api/v1/definitions
			r.Get("/{key}", s.handleGetDefinition)         // GET /api/v1/definitions/{key}
			r.Get("/{key}/form-item", s.handleGetFormItem) // GET /api/v1/definitions/{key}/form-item
		})

		r.Get("/forms/{formID}", s.handleListFormItems) // GET /api/v1/forms/{formID}
		r.Get("/modules", s.handleListModules)          // GET /api/v1/modules
		r.Post("/refresh", s.handleRefresh)             // POST /api/v1/refresh
	})
}
