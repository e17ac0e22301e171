package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
)

// Server serves the item and health routes of NewRouter.
type Server struct {
	http  *http.Server
	port  int
	grace time.Duration

	stopOnce sync.Once
	stopErr  error
}

// NewServer returns a stopped server for cfg; zero fields of cfg take their
// defaults. In-flight requests get up to cfg.WriteTimeout to finish once
// the server is asked to stop, since none can legitimately run longer.
func NewServer(cfg APIConfig, deps Dependencies) *Server {
	cfg.ApplyDefaults()
	if deps.RequestTimeout == 0 {
		deps.RequestTimeout = cfg.WriteTimeout
	}

	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		port:  cfg.Port,
		grace: cfg.WriteTimeout,
	}
}

// Start listens on the configured port and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("API server failed: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or Stop is called, and closes ln.
// Cancellation drains in-flight requests before Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger.Info("API server listening", "addr", ln.Addr().String())

	served := make(chan error, 1)
	go func() { served <- s.http.Serve(ln) }()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.grace)
		defer cancel()
		return s.Stop(stopCtx)
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop shuts the server down, waiting for in-flight requests until ctx is
// done. Only the first call has any effect; later calls return its result.
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		if err := s.http.Shutdown(ctx); err != nil {
			s.stopErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.KeyError, err)
			return
		}
		logger.Info("API server stopped gracefully")
	})
	return s.stopErr
}

// Port returns the configured TCP port.
func (s *Server) Port() int {
	return s.port
}
