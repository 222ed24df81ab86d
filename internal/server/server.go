// Package server assembles the record store HTTP API: routes, middleware chain and lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/vitrina/internal/config"
	"github.com/iudanet/vitrina/internal/server/handlers"
	"github.com/iudanet/vitrina/internal/server/middleware"
	"github.com/iudanet/vitrina/internal/server/storage"
	"github.com/iudanet/vitrina/pkg/api"
)

// Server represents the record store HTTP server
type Server struct {
	httpServer      *http.Server
	limiter         *middleware.RateLimiter
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// Deps are the collaborators the HTTP API is built from
type Deps struct {
	Logger    *slog.Logger
	Storage   storage.RecordStorage
	Metrics   *middleware.Metrics
	Limiter   *middleware.RateLimiter // nil disables rate limiting
	KeyConfig handlers.KeyConfig
	Version   string
}

// NewHandler builds the routed handler with the full middleware chain
func NewHandler(d Deps) http.Handler {
	rest := http.NewServeMux()
	handlers.NewRecordsHandler(d.Logger, d.Storage, handlers.CatalogSchemas()).Register(rest)

	mux := http.NewServeMux()
	mux.Handle("GET /health", handlers.Health(d.Logger, d.Storage, d.Version))
	mux.Handle("GET /metrics", d.Metrics.Handler())
	mux.Handle(api.RestPrefix, middleware.AuthMiddleware(d.Logger, d.KeyConfig)(rest))

	// Цепочка: recovery -> metrics -> logging -> rate limit -> routes
	var h http.Handler = mux
	if d.Limiter != nil {
		h = d.Limiter.Middleware(h)
	}
	h = middleware.Logging(d.Logger, "/health", "/metrics")(h)
	h = d.Metrics.Middleware(h)
	h = middleware.Recover(d.Logger)(h)
	return h
}

// New creates a server from configuration
func New(cfg *config.ServerConfig, logger *slog.Logger, recordStorage storage.RecordStorage, version string) *Server {
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)
	}

	handler := NewHandler(Deps{
		Logger:    logger,
		Storage:   recordStorage,
		Metrics:   middleware.NewMetrics(),
		Limiter:   limiter,
		KeyConfig: handlers.KeyConfig{Secret: []byte(cfg.JWTSecret)},
		Version:   version,
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		limiter:         limiter,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.limiter != nil {
		defer s.limiter.Stop()
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "address", ln.Addr().String())
		errC <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("Server stopped")
	return nil
}
