package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/gallerygen/internal/assembler"
	"git.home.luguber.info/inful/gallerygen/internal/config"
	"git.home.luguber.info/inful/gallerygen/internal/executor"
	"git.home.luguber.info/inful/gallerygen/internal/history"
	"git.home.luguber.info/inful/gallerygen/internal/metrics"
)

func runBuild(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, err = buildOnce(ctx, cfg, CLI.Build.NoExec, metrics.NoopRecorder{})
	return err
}

// buildOnce runs one complete generation: interpreter session, assembly,
// and history recording. Shared between build and serve.
func buildOnce(ctx context.Context, cfg *config.Config, noExec bool, rec metrics.Recorder) (*assembler.Report, error) {
	started := time.Now()

	var exec *executor.Executor
	if !noExec {
		var closeExec func()
		var err error
		exec, closeExec, err = newExecutor(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer closeExec()
	}

	asm := assembler.New(cfg, exec, rec)
	report, buildErr := asm.Build(ctx)
	if report == nil {
		return nil, buildErr
	}

	slog.Info("Gallery build finished",
		"galleries", len(report.Galleries),
		"scripts", len(report.Results),
		"duration", report.Duration.Round(time.Millisecond))

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg, report, started); err != nil {
			slog.Warn("Could not record build history", "error", err)
		}
	}
	return report, buildErr
}

func newExecutor(ctx context.Context, cfg *config.Config) (*executor.Executor, func(), error) {
	session, err := executor.NewPythonSession(ctx, cfg.Execution.Interpreter, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("start interpreter: %w", err)
	}

	scraper, err := executor.NewScraper(cfg.Execution.Scraper)
	if err != nil {
		_ = session.Close()
		return nil, nil, err
	}

	var resetters []executor.Resetter
	for _, name := range cfg.Execution.ResetModules {
		r, err := executor.NewResetter(name)
		if err != nil {
			_ = session.Close()
			return nil, nil, err
		}
		resetters = append(resetters, r)
	}

	exec := &executor.Executor{
		Session:    session,
		Scrapers:   []executor.Scraper{scraper},
		Resetters:  resetters,
		ResetArgv:  cfg.Execution.ScriptArgs,
		ShowMemory: cfg.Execution.ShowMemory,
	}
	closer := func() {
		exec.Close()
		if err := session.Close(); err != nil {
			slog.Debug("Interpreter session close", "error", err)
		}
	}
	return exec, closer, nil
}

func recordHistory(ctx context.Context, cfg *config.Config, report *assembler.Report, started time.Time) error {
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	build, runs := report.HistoryRecords(started)
	return store.RecordBuild(ctx, build, runs)
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	if dir := filepath.Dir(cfg.History.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	return history.Open(cfg.History.Path)
}
