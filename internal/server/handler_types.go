package server

import (
	"net/http"

	"github.com/me/godp/pkg/model"
)

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, model.TypesResponse{
		Datasets:   s.datasets.Types(),
		Algorithms: s.algorithms.Types(),
	})
}
