package server

import (
	"net/http"
	"time"

	"github.com/me/godp/pkg/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, model.HealthResponse{
		Status: "healthy",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
		Engine: s.engine.Stats(),
	})
}
