package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"finch/internal/render"
	"finch/internal/storage"
)

// TeamLister reads one page of teams
type TeamLister interface {
	ListPage(ctx context.Context, page storage.Page) ([]storage.Team, error)
}

// Renderer renders named templates and can recompile its template set
type Renderer interface {
	Render(name string, ctx render.Context) (string, error)
	Reload() error
}

// Pinger reports whether the store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the process-lifetime resources shared by every handler. They are fixed when the
// server is built and never reassigned.
type Deps struct {
	Teams     TeamLister
	Templates Renderer
	// Store is optional; when set the health endpoint pings it
	Store Pinger
}

// Config contains server configuration
type Config struct {
	Addr        string
	MetricsAddr string
	StaticDir   string

	// ReloadTemplates recompiles templates before each landing page render. It has no effect
	// in release builds.
	ReloadTemplates bool

	QueryTimeout    time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultConfig returns the default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:3000",
		StaticDir:       "static",
		ReloadTemplates: true,
		QueryTimeout:    5 * time.Second,
		DefaultPageSize: storage.DefaultPageSize,
		MaxPageSize:     50,
	}
}

// Server represents the HTTP server
type Server struct {
	router  *http.ServeMux
	server  *http.Server
	metrics *http.Server
	config  Config
	deps    Deps
	logger  *slog.Logger
	stats   *MetricsCollector
}

// NewServer creates a new HTTP server instance
func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		config: cfg,
		deps:   deps,
		logger: logger,
		router: http.NewServeMux(),
		stats:  NewMetricsCollector(),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.applyMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.MetricsAddr != "" {
		s.metrics = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           s.opsRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until the server is shut down
func (s *Server) Serve(ln net.Listener) error {
	if s.metrics != nil {
		go func() {
			s.logger.Info("Starting metrics server", "addr", s.metrics.Addr)
			if err := s.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error("Metrics server failed", "error", err.Error())
			}
		}()
	}

	s.logger.Info("Starting HTTP server", "addr", ln.Addr().String())

	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if s.metrics != nil {
		if err := s.metrics.Shutdown(ctx); err != nil {
			s.logger.Warn("Metrics server shutdown failed", "error", err.Error())
		}
	}

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = CompressionMiddleware()(handler)
	handler = s.RecoveryMiddleware()(handler)
	handler = MetricsMiddleware(s.stats)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}
