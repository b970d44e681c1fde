package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/gallerygen/internal/history"
)

func runReport(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if CLI.Report.Script != "" {
		return reportTrend(ctx, store, CLI.Report.Script, CLI.Report.Limit)
	}
	return reportLatest(ctx, store)
}

func reportLatest(ctx context.Context, store *history.Store) error {
	build, err := store.LatestBuild(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		fmt.Println("No builds recorded yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load latest build: %w", err)
	}

	fmt.Printf("Build %s  started %s  took %s  outcome %s\n\n",
		build.ID, build.Started.Format(time.RFC3339),
		build.Duration.Round(time.Millisecond), build.Outcome)

	runs, err := store.RunsForBuild(ctx, build.ID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCRIPT\tTIME\tMEMORY (MB)\tOUTCOME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\n",
			r.Script, r.Duration.Round(time.Millisecond), r.MemoryMB, r.Outcome)
	}
	return w.Flush()
}

func reportTrend(ctx context.Context, store *history.Store, script string, limit int) error {
	runs, err := store.ScriptTrend(ctx, script, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("No recorded runs for %s.\n", script)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BUILD\tTIME\tMEMORY (MB)\tOUTCOME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\n",
			r.BuildID, r.Duration.Round(time.Millisecond), r.MemoryMB, r.Outcome)
	}
	return w.Flush()
}
