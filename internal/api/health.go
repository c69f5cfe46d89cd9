package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"finch/internal/errors"
	"finch/internal/version"
)

// HealthResponse is the body of GET /health on the operations listener
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
	Error   string `json:"error,omitempty"`
}

// handleHealth reports liveness and store reachability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Version: version.Info(),
		Store:   "unknown",
	}
	status := http.StatusOK

	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.deps.Store.PingContext(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Store = "unreachable"
			resp.Error = errors.Store(errors.StoreConnection, err).UserMessage()
			status = http.StatusServiceUnavailable
		} else {
			resp.Store = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
