package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "GoDP API",
		Version:     "v1",
		Description: "GoDP Data Platform — priority task scheduling over pluggable datasets and algorithms",
		Endpoints: []endpointInfo{
			{"/api/v1/tasks", []string{"GET", "POST"}, "Submit tasks and list archived task history"},
			{"/api/v1/tasks/{id}", []string{"GET", "DELETE"}, "Full task detail; DELETE requests cancellation"},
			{"/api/v1/tasks/{id}/status", []string{"GET"}, "Task lifecycle status only"},
			{"/api/v1/tasks/{id}/result", []string{"GET"}, "Task result (PENDING until terminal)"},
			{"/api/v1/types", []string{"GET"}, "Registered dataset and algorithm type names"},
			{"/api/v1/plugins", []string{"GET", "POST"}, "List loaded script plugins; POST loads one by path"},
			{"/api/v1/plugins/{name}", []string{"DELETE"}, "Unload a script plugin"},
			{"/api/v1/health", []string{"GET"}, "Server health and engine load"},
		},
	})
}
