// Package server provides the vesta HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/config"
	"mercator-hq/vesta/pkg/moderation"
	"mercator-hq/vesta/pkg/server/middleware"
	"mercator-hq/vesta/pkg/telemetry/health"
)

// Moderator is the engine surface the API exposes. *engine.Engine
// satisfies it.
type Moderator interface {
	AnalyzeComment(ctx context.Context, text string) *moderation.AnalysisResult
	AnalyzeComments(ctx context.Context, texts []string) []*moderation.AnalysisResult
	ModerateRealtime(ctx context.Context, text string) *moderation.Decision
}

// MetricsCollector records HTTP metrics and serves the scrape endpoint.
// *metrics.Collector satisfies it.
type MetricsCollector interface {
	middleware.Metrics
	Handler() http.Handler
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics records per-route metrics and serves m on path.
func WithMetrics(m MetricsCollector, path string) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsPath = path
	}
}

// WithTracer creates a server span per request.
func WithTracer(t middleware.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithHealth mounts the liveness, readiness and version endpoints.
func WithHealth(c *health.Checker, cfg config.HealthConfig, info health.VersionInfo) Option {
	return func(s *Server) {
		s.health = c
		s.healthConfig = cfg
		s.version = info
	}
}

// WithAudit enables the audit query and export endpoints.
func WithAudit(store audit.Storage, cfg config.QueryConfig) Option {
	return func(s *Server) {
		s.store = store
		s.queryConfig = cfg
	}
}

// Server is the HTTP API server.
type Server struct {
	config    *config.ServerConfig
	moderator Moderator
	logger    *slog.Logger

	metrics     MetricsCollector
	metricsPath string
	tracer      middleware.Tracer

	health       *health.Checker
	healthConfig config.HealthConfig
	version      health.VersionInfo

	store       audit.Storage
	queryConfig config.QueryConfig

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. It does not listen until Start or Serve.
func New(cfg *config.ServerConfig, moderator Moderator, opts ...Option) *Server {
	s := &Server{
		config:    cfg,
		moderator: moderator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	return s
}

// Start listens on the configured address and serves until ctx is
// canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled or the server
// fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if ok {
			s.markStopped()
			return err
		}
		return nil
	}
}

// Shutdown stops accepting connections and waits up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		srv, running := s.httpServer, s.isRunning
		s.mu.RUnlock()
		if !running || srv == nil {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.markStopped()
		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

func (s *Server) markStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "POST /v1/comments/analyze", s.handleAnalyze)
	s.route(mux, "POST /v1/comments/analyze/batch", s.handleBatch)
	s.route(mux, "POST /v1/comments/moderate", s.handleModerate)
	s.route(mux, "GET /v1/audit/records", s.handleAuditRecords)
	s.route(mux, "GET /v1/audit/export", s.handleAuditExport)

	if s.health != nil {
		health.Register(mux, s.health, s.healthConfig, s.version)
	}
	if s.metrics != nil && s.metricsPath != "" {
		mux.Handle("GET "+s.metricsPath, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.AccessLog(s.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.logger)(handler)
	return handler
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	var m middleware.Metrics
	if s.metrics != nil {
		m = s.metrics
	}
	mux.Handle(pattern, middleware.Instrument(pattern, m, s.tracer)(h))
}
