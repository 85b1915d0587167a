// Package server exposes metrics and health endpoints while a sweep runs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shapiromatron/hawc-backup-sweep/internal/health"
)

// Server serves /metrics, /health, /ready and /live for a single sweep.
// /ready reports 503 until MarkSwept is called.
type Server struct {
	server          *http.Server
	logger          *slog.Logger
	checker         *health.Checker
	shutdownTimeout time.Duration

	swept atomic.Bool
	addr  string
	done  chan struct{} // closed when Serve returns; nil before Start
}

// Config holds server configuration.
type Config struct {
	Port            int // 0 picks a free port
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Port:            9090,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// New creates a new HTTP server. It does not listen until Start.
func New(config Config, logger *slog.Logger) *Server {
	s := &Server{
		logger:          logger.With("component", "http"),
		checker:         health.NewChecker(),
		shutdownTimeout: config.ShutdownTimeout,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.checker.Handler())
	mux.HandleFunc("/ready", health.ReadinessHandler(s.swept.Load))
	mux.HandleFunc("/live", health.LivenessHandler())

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	return s.addr
}

// RegisterHealthCheck registers a health check function.
func (s *Server) RegisterHealthCheck(name string, checkFunc health.CheckFunc) {
	s.checker.RegisterCheck(name, checkFunc)
}

// MarkSwept flips /ready to 200 once the sweep has produced its metrics.
func (s *Server) MarkSwept() {
	s.swept.Store(true)
}

// Start binds the port and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.addr = ln.Addr().String()
	s.done = make(chan struct{})

	s.logger.Info("Starting HTTP server", "addr", s.addr)
	go func() {
		defer close(s.done)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
	}()

	return nil
}

// Linger keeps serving for d so a scraper can collect the final metrics,
// then shuts down. A cancelled ctx ends the wait early.
func (s *Server) Linger(ctx context.Context, d time.Duration) error {
	if d > 0 {
		s.logger.Info("Serving metrics before exit", "linger", d)
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server and waits for it to stop.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	err := s.server.Shutdown(ctx)
	if s.done != nil {
		<-s.done
	}
	return err
}
