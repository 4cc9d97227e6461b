package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/prefhook"
)

type definitionsResponse struct {
	CollectedAt time.Time        `json:"collected_at"`
	Preferences []prefhook.Entry `json:"preferences"`
}

type modulesResponse struct {
	Registered   []string `json:"registered"`
	Contributing []string `json:"contributing"`
}

type refreshResponse struct {
	CollectedAt time.Time `json:"collected_at"`
	Preferences int       `json:"preferences"`
	Modules     []string  `json:"modules"`
	Published   bool      `json:"published"`
}

// catalog returns the current catalog or writes an error response.
func (s *Server) catalog(w http.ResponseWriter, r *http.Request) (*prefhook.Catalog, bool) {
	cat, err := s.registry.Catalog(r.Context())
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to collect user preferences", err)
		return nil, false
	}
	return cat, true
}

// handleListDefinitions handles fetching all preference definitions.
func (s *Server) handleListDefinitions(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalog(w, r)
	if !ok {
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, definitionsResponse{
		CollectedAt: cat.CollectedAt(),
		Preferences: cat.All(),
	})
}

// handleGetDefinition handles fetching a specific preference definition.
func (s *Server) handleGetDefinition(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalog(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	def, found := cat.Get(key)
	if !found {
		s.respondWithError(w, r, http.StatusNotFound, "Preference definition not found", nil)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, prefhook.Entry{Key: key, Definition: def})
}

// handleGetFormItem returns the form item of a preference with its default value filled in.
func (s *Server) handleGetFormItem(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalog(w, r)
	if !ok {
		return
	}
	item, err := cat.FormItem(chi.URLParam(r, "key"))
	if err != nil {
		s.respondWithError(w, r, http.StatusNotFound, "Form item not found", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, item)
}

// handleListFormItems returns the preferences attached to a form, in render order.
func (s *Server) handleListFormItems(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalog(w, r)
	if !ok {
		return
	}
	entries := cat.ForForm(chi.URLParam(r, "formID"))
	if entries == nil {
		entries = []prefhook.Entry{}
	}
	s.respondWithJSON(w, r, http.StatusOK, entries)
}

// handleListModules lists registered hooks and those that contributed preferences.
func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalog(w, r)
	if !ok {
		return
	}
	resp := modulesResponse{
		Registered:   s.registry.Modules(),
		Contributing: cat.Modules(),
	}
	if resp.Contributing == nil {
		resp.Contributing = []string{}
	}
	s.respondWithJSON(w, r, http.StatusOK, resp)
}

// handleRefresh invokes every hook again and publishes the new catalog.
// The previous catalog keeps serving reads when collection fails.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cat, err := s.registry.Collect(ctx)
	if err != nil {
		s.respondWithError(w, r, statusFor(err), "Failed to collect user preferences", err)
		return
	}

	resp := refreshResponse{
		CollectedAt: cat.CollectedAt(),
		Preferences: cat.Len(),
		Modules:     cat.Modules(),
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, cat); err != nil {
			s.respondWithError(w, r, http.StatusInternalServerError, "Failed to publish user preferences", err)
			return
		}
		resp.Published = true
	}
	s.respondWithJSON(w, r, http.StatusOK, resp)
}

// statusFor maps collection errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, prefhook.ErrKeyCollision):
		return http.StatusConflict
	case errors.Is(err, prefhook.ErrInvalidDefinition), errors.Is(err, prefhook.ErrInvalidKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, prefhook.ErrHookFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError is a helper to send JSON error responses.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := map[string]interface{}{
		"error": map[string]string{
			"message": message,
		},
	}
	if err != nil {
		resp["error"].(map[string]string)["details"] = err.Error()
	}
	s.logger.Error("API Error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	respondWithJSONRaw(w, status, resp)
}

// respondWithJSON is a helper to send JSON responses.
func (s *Server) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to marshal response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// respondWithJSONRaw is a lower-level helper, useful when payload is already a map for error responses.
func respondWithJSONRaw(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Critical: Failed to marshal error response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
