package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/gallerygen/internal/config"
	"git.home.luguber.info/inful/gallerygen/internal/metrics"
	"git.home.luguber.info/inful/gallerygen/internal/server"
)

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if CLI.Serve.Addr != "" {
		addr = CLI.Serve.Addr
	}

	var registry *prometheus.Registry
	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Server.Metrics {
		registry = prometheus.NewRegistry()
		rec = metrics.NewPrometheusRecorder(registry)
	}

	if _, err := buildOnce(ctx, cfg, false, rec); err != nil {
		// Serve anyway: the watcher gives the user a rebuild on every save,
		// which is the fastest way to fix a broken example.
		slog.Error("Initial build failed", "error", err)
	}

	srv := server.New(addr, cfg.Output.SiteRoot, registry)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })

	if cfg.Server.Watch {
		watcher := &server.Watcher{
			Dirs:    sourceDirs(cfg),
			Exclude: excludeGenerated(cfg),
			OnChange: func(ctx context.Context) {
				slog.Info("Source change detected; rebuilding galleries")
				if _, err := buildOnce(ctx, cfg, false, rec); err != nil {
					slog.Error("Rebuild failed", "error", err)
				}
			},
		}
		g.Go(func() error { return watcher.Run(gctx) })
	}
	return g.Wait()
}

func sourceDirs(cfg *config.Config) []string {
	dirs := make([]string, 0, len(cfg.Galleries))
	for _, g := range cfg.Galleries {
		dirs = append(dirs, g.SrcDir)
	}
	return dirs
}

// excludeGenerated keeps the watcher away from everything the build
// writes, so rebuilds cannot re-trigger themselves.
func excludeGenerated(cfg *config.Config) func(string) bool {
	var roots []string
	for _, g := range cfg.Galleries {
		roots = append(roots, filepath.Clean(g.DestDir))
	}
	roots = append(roots, filepath.Clean(cfg.Output.SiteRoot))
	if cfg.Resolution.BackreferencesDir != "" {
		roots = append(roots, filepath.Clean(cfg.Resolution.BackreferencesDir))
	}
	if cfg.History.Enabled {
		roots = append(roots, filepath.Dir(cfg.History.Path))
	}
	return func(path string) bool {
		clean := filepath.Clean(path)
		for _, root := range roots {
			if clean == root || strings.HasPrefix(clean, root+string(filepath.Separator)) {
				return true
			}
		}
		return strings.HasSuffix(clean, ".sha256") || strings.HasSuffix(clean, ".new")
	}
}
