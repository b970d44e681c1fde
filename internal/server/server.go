// Package server provides the preview HTTP server and the source watcher
// driving incremental rebuilds.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the generated site tree plus health and metrics endpoints.
type Server struct {
	Addr    string
	SiteDir string

	router *chi.Mux
	server *http.Server
}

// New builds the server. registry may be nil to disable /metrics.
func New(addr, siteDir string, registry *prometheus.Registry) *Server {
	s := &Server{
		Addr:    addr,
		SiteDir: siteDir,
		router:  chi.NewRouter(),
	}

	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	if registry != nil {
		s.router.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	s.router.Handle("/*", http.FileServer(http.Dir(siteDir)))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok\n"))
}

// Start begins listening and blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", "addr", s.Addr, "dir", s.SiteDir)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
