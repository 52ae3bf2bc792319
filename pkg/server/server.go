package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"routedesk-hq/routedesk/pkg/config"
	"routedesk-hq/routedesk/pkg/service"
	"routedesk-hq/routedesk/pkg/telemetry/health"
	"routedesk-hq/routedesk/pkg/telemetry/metrics"
)

// Server is the HTTP front end of the change pipeline: the portal API,
// the probes, and the metrics endpoint.
type Server struct {
	config       config.ServerConfig
	service      *service.Service
	health       *health.Checker
	metrics      *metrics.Collector
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. The metrics collector may be nil when metrics
// are disabled; the /metrics route is then not registered.
func New(
	cfg config.ServerConfig,
	svc *service.Service,
	checker *health.Checker,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if checker == nil {
		checker = health.New(0)
	}
	return &Server{
		config:  cfg,
		service: svc,
		health:  checker,
		metrics: collector,
		logger:  logger.With("component", "server"),
	}
}

// Start runs the HTTP server and blocks until ctx is cancelled, a
// shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the listener is up.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the routed handler with the full middleware chain.
// Exposed for tests driving the server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/nginx/{team}/validate", s.handleValidate)
	mux.HandleFunc("POST /api/nginx/{team}/submit/{env}", s.handleSubmit)
	mux.HandleFunc("GET /api/nginx/{team}/requests", s.handleListRequests)
	mux.HandleFunc("GET /api/nginx/{team}/history", s.handleHistory)
	mux.HandleFunc("GET /api/nginx/{team}/{env}", s.handleCurrentConfig)
	mux.HandleFunc("DELETE /api/nginx/requests/{id}", s.handleAbandon)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = timeoutMiddleware(s.config.WriteTimeout)(handler)
	handler = corsMiddleware(s.config.CORS)(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)

	return handler
}
