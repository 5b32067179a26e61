package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/me/godp/pkg/model"
)

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.plugins == nil {
		respondPluginsDisabled(w, reqID)
		return
	}
	respondOK(w, reqID, s.plugins.List())
}

func (s *Server) handleLoadPlugin(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.plugins == nil {
		respondPluginsDisabled(w, reqID)
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}
	if req.Path == "" {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("path is required"))
		return
	}

	info, err := s.plugins.Load(req.Path)
	if err != nil {
		respondAPIError(w, reqID, err)
		return
	}
	respondCreated(w, reqID, info)
}

func (s *Server) handleUnloadPlugin(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.plugins == nil {
		respondPluginsDisabled(w, reqID)
		return
	}

	name := chi.URLParam(r, "name")
	if !s.plugins.Unload(name) {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("plugin", name))
		return
	}
	respondOK(w, reqID, map[string]any{"name": name, "unloaded": true})
}

func respondPluginsDisabled(w http.ResponseWriter, reqID string) {
	respondError(w, reqID, http.StatusNotFound,
		&model.APIError{Code: model.ErrNotFound, Message: "plugin support is not enabled"})
}
