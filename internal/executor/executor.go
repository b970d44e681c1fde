// Package executor runs the code blocks of one script at a time, in strict
// source order, inside a persistent interpreter session, capturing printed
// output, scraped images, timing and peak memory.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// state tracks one script's progress through the execution state machine:
// Pending -> Running(block i) -> {Running(i+1) | Failed | Completed}.
type state string

const (
	statePending   state = "pending"
	stateRunning   state = "running"
	stateFailed    state = "failed"
	stateCompleted state = "completed"
)

// Executor drives block execution for the scripts of one build. Not safe
// for concurrent use; galleries, scripts and blocks are all processed in
// strict deterministic order, which is a correctness requirement (later
// blocks assume earlier ones already ran).
type Executor struct {
	Session   Session
	Scrapers  []Scraper
	Resetters []Resetter
	// ResetArgv replaces the interpreter's argument vector before each
	// script runs.
	ResetArgv []string
	// ShowMemory enables peak-RSS sampling of the interpreter process.
	ShowMemory bool

	sampler *MemSampler
}

// RunScript executes all code blocks of script in order in a fresh
// namespace. A block failure stops the script; when expectedFailing is
// set the failure is recorded on the result instead of returned.
func (e *Executor) RunScript(ctx context.Context, script *gallery.Script, expectedFailing bool) (*gallery.RunResult, error) {
	res := &gallery.RunResult{
		Script:  script,
		Outputs: make(map[int]string),
	}

	if err := os.MkdirAll(script.ImageDir(), 0o750); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	if err := e.Session.BeginScript(ctx, e.ResetArgv); err != nil {
		return nil, fmt.Errorf("begin script %s: %w", script.Stem(), err)
	}

	if e.ShowMemory {
		if err := e.ensureSampler(); err != nil {
			slog.Warn("Memory sampling unavailable", "error", err)
		} else {
			e.sampler.Baseline()
		}
	}

	scrapeState := &ScrapeState{
		WorkDir:  workDirOf(script),
		ImageDir: script.ImageDir(),
		Prefix:   script.ImagePrefix(),
		Next:     1,
	}
	// Prime filesystem snapshots before the first block runs.
	for _, scraper := range e.Scrapers {
		if _, err := scraper.Scrape(ctx, e.Session, scrapeState); err != nil {
			return nil, err
		}
	}
	scrapeState.Next = 1

	st := statePending
	defer func() {
		slog.Debug("Script execution finished", "script", script.Stem(), "state", st)
	}()
	start := time.Now()
	for i, block := range script.Blocks {
		if block.Kind != gallery.BlockCode {
			continue
		}
		st = stateRunning
		needsAsync := NeedsAsync(block.Content)
		if needsAsync {
			slog.Debug("Block requires suspension-aware execution",
				"script", script.Stem(), "line", block.Line)
		}

		execRes, err := e.Session.Exec(ctx, block.Content, block.Line, needsAsync)
		if err != nil {
			return nil, fmt.Errorf("run block at %s:%d: %w", script.SrcFile, block.Line, err)
		}
		res.Outputs[i] = execRes.Stdout

		if execRes.Failed {
			st = stateFailed
			res.Failed = true
			res.FailedAsExpected = expectedFailing
			res.Traceback = execRes.Traceback
			res.ExecTime = time.Since(start)
			execErr := &gallery.ExecutionError{
				Script:    script.SrcFile,
				Line:      block.Line,
				Traceback: execRes.Traceback,
			}
			if expectedFailing {
				slog.Info("Script failed as expected", "script", script.Stem(), "line", block.Line)
				return res, nil
			}
			return res, execErr
		}

		for _, scraper := range e.Scrapers {
			images, err := scraper.Scrape(ctx, e.Session, scrapeState)
			if err != nil {
				return nil, err
			}
			res.Images = append(res.Images, images...)
			for range images {
				res.ImageBlocks = append(res.ImageBlocks, i)
			}
		}
	}
	res.ExecTime = time.Since(start)
	st = stateCompleted

	if e.ShowMemory && e.sampler != nil {
		res.MemoryMB = e.sampler.PeakDeltaMB()
	}
	if bindings, err := e.Session.Globals(ctx); err == nil {
		res.Bindings = bindings
	} else {
		slog.Debug("Could not inspect namespace bindings", "script", script.Stem(), "error", err)
	}
	return res, nil
}

// ResetBetween runs the configured resetters after a script completes so
// global interpreter state cannot leak into the next script.
func (e *Executor) ResetBetween(ctx context.Context) error {
	for _, r := range e.Resetters {
		if err := r.Reset(ctx, e.Session); err != nil {
			return fmt.Errorf("resetter %s: %w", r.Name, err)
		}
	}
	return nil
}

func (e *Executor) ensureSampler() error {
	if e.sampler != nil {
		return nil
	}
	pid := e.Session.Pid()
	if pid == 0 {
		return fmt.Errorf("session has no process")
	}
	sampler, err := NewMemSampler(pid, 0)
	if err != nil {
		return err
	}
	e.sampler = sampler
	return nil
}

// Close releases the sampler; the session is owned by the caller.
func (e *Executor) Close() {
	if e.sampler != nil {
		e.sampler.Stop()
	}
}

func workDirOf(script *gallery.Script) string {
	return script.Gallery.SrcDir
}
