package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gallerygen/internal/config"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"gallerygen.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		NoExec bool `help:"Skip script execution; render code without outputs"`
	} `cmd:"" help:"Generate all configured galleries"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Write a starter configuration file"`

	Serve struct {
		Addr string `short:"a" help:"Listen address (overrides config)"`
	} `cmd:"" help:"Build, serve the site and rebuild on source changes"`

	Report struct {
		Script string `short:"s" help:"Show the trend of one script instead of the latest build"`
		Limit  int    `help:"Trend entries to show" default:"10"`
	} `cmd:"" help:"Show execution history from past builds"`

	Clean struct {
		All bool `help:"Also remove checksum sidecars, forcing full re-execution"`
	} `cmd:"" help:"Remove generated artifacts"`
}

func main() {
	kctx := kong.Parse(&CLI)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch kctx.Command() {
	case "build":
		err = runBuild(ctx)
	case "init":
		err = runInit()
	case "serve":
		err = runServe(ctx)
	case "report":
		err = runReport(ctx)
	case "clean":
		err = runClean()
	}
	if err != nil {
		slog.Error("Command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration and installs the logger it selects.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Logging)
	return cfg, nil
}

func setupLogging(lc config.LoggingConfig) {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runInit() error {
	if err := config.WriteExample(CLI.Config, CLI.Init.Force); err != nil {
		return err
	}
	slog.Info("Configuration written", "path", CLI.Config)
	return nil
}
