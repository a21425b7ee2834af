// Package control exposes the forwarding module's command surface
// over JSON/HTTP: add/delete/set_default_gate/lookup/populate, plus
// show, stats, metrics, and a health check.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/l2fwd/l2fwd/pkg/l2forward"
)

// Config configures the control-plane HTTP server.
type Config struct {
	Addr string
}

// Server serves the command surface and metrics endpoint.
type Server struct {
	cfg    Config
	module *l2forward.Module
	http   *http.Server
}

// NewServer builds a Server routing requests to module.
func NewServer(cfg Config, module *l2forward.Module) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	mux := http.NewServeMux()
	s := &Server{cfg: cfg, module: module}
	s.registerRoutes(mux)

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.module.Metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /commands/add", s.instrument("add", s.handleAdd))
	mux.HandleFunc("POST /commands/delete", s.instrument("delete", s.handleDelete))
	mux.HandleFunc("POST /commands/set_default_gate", s.instrument("set_default_gate", s.handleSetDefaultGate))
	mux.HandleFunc("POST /commands/lookup", s.instrument("lookup", s.handleLookup))
	mux.HandleFunc("POST /commands/populate", s.instrument("populate", s.handlePopulate))
	mux.HandleFunc("POST /commands/flush", s.instrument("flush", s.handleFlush))
	mux.HandleFunc("GET /commands/show", s.instrument("show", s.handleShow))
	mux.HandleFunc("GET /commands/stats", s.instrument("stats", s.handleStats))
}

// instrument wraps a handler with a CommandDuration observation, the
// way the module's own commands record audit entries -- the HTTP
// layer measures wall time, the module records outcome.
func (s *Server) instrument(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		s.module.Metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

// Run starts the HTTP server and blocks until ctx is canceled, then
// shuts it down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("control server listening", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("control server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("control server shutdown: %w", err)
	}
	return <-errCh
}
