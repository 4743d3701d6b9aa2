package server

import (
	"encoding/json"
	"net/http"
)

// HealthHandler reports liveness for the proxy's health checks.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}
}
