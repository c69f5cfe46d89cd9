package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes registers all routes. Anything else gets the mux's plain 404, and a known path
// with the wrong method gets its plain 405.
func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleRoot)
	s.router.HandleFunc("GET /api/list_teams", s.handleListTeams)
	s.router.Handle("GET /static/", http.StripPrefix("/static", s.staticHandler()))
}

// opsRouter serves metrics and health on the separate operations listener
func (s *Server) opsRouter() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.stats.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}
