// Package assembler orchestrates a gallery build: collect and sort
// scripts, decide staleness, execute what needs executing, render pages
// and bundles, and triage the outcome.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/gallerygen/internal/binder"
	"git.home.luguber.info/inful/gallerygen/internal/checksum"
	"git.home.luguber.info/inful/gallerygen/internal/config"
	"git.home.luguber.info/inful/gallerygen/internal/executor"
	"git.home.luguber.info/inful/gallerygen/internal/gallery"
	"git.home.luguber.info/inful/gallerygen/internal/metrics"
	"git.home.luguber.info/inful/gallerygen/internal/nav"
	"git.home.luguber.info/inful/gallerygen/internal/notebook"
	"git.home.luguber.info/inful/gallerygen/internal/resolver"
)

// Assembler runs one build at a time. Exec may be nil, in which case no
// script is executed and pages carry code without output.
type Assembler struct {
	Cfg     *config.Config
	Exec    *executor.Executor
	Metrics metrics.Recorder
}

// Report is the outcome of one build.
type Report struct {
	Galleries []*gallery.Gallery
	Results   []*gallery.RunResult
	Summary   *Summary
	Duration  time.Duration
}

func New(cfg *config.Config, exec *executor.Executor, rec metrics.Recorder) *Assembler {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Assembler{Cfg: cfg, Exec: exec, Metrics: rec}
}

// Build generates all configured galleries. The returned error is either a
// fatal condition that aborted generation, or the consolidated summary
// error; the Report is valid in the latter case.
func (a *Assembler) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	cfg := a.Cfg

	galleries, err := Collect(cfg)
	if err != nil {
		return nil, err
	}
	if err := a.sortAll(galleries); err != nil {
		return nil, err
	}

	total := 0
	for _, g := range galleries {
		total += 1 + len(g.Subgalleries)
	}
	a.Metrics.SetGalleryCount(total)

	bc, err := a.binderConfig()
	if err != nil {
		return nil, err
	}

	runRe, err := regexp.Compile(cfg.Execution.RunPattern)
	if err != nil {
		return nil, fmt.Errorf("compile execution.run_pattern: %w", err)
	}
	expected := expectedFailingMatcher(cfg.Execution.ExpectedFailing)

	var backrefs *Backrefs
	if cfg.Resolution.BackreferencesDir != "" {
		backrefs = NewBackrefs(cfg.Resolution.BackreferencesDir)
	}

	report := &Report{Galleries: galleries}
	thumbs := map[*gallery.Script]string{}
	for _, g := range galleries {
		for _, sub := range append([]*gallery.Gallery{g}, g.Subgalleries...) {
			if err := a.processGallery(ctx, sub, bc, runRe, expected, backrefs, report, thumbs); err != nil {
				return nil, err
			}
		}
		if err := a.finishGallery(g, report, thumbs); err != nil {
			return nil, err
		}
	}

	if backrefs != nil {
		if err := backrefs.Finalize(); err != nil {
			return nil, err
		}
	}
	if cfg.Output.NavFile != "" {
		entries, err := nav.Build(galleries, cfg.Output.SiteRoot)
		if err != nil {
			return nil, err
		}
		if err := nav.Write(cfg.Output.NavFile, entries); err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(start)
	if cfg.Output.JUnitFile != "" {
		if err := writeJUnit(cfg.Output.JUnitFile, report.Results, report.Duration); err != nil {
			return nil, err
		}
	}

	echoTimes(report.Results, cfg.Output.MinReportedTime)
	report.Summary = Summarize(report.Results, expected)
	report.Summary.Log()

	a.Metrics.ObserveBuildDuration(report.Duration)
	sumErr := report.Summary.Err(cfg.Execution.OnlyWarn)
	if sumErr != nil {
		a.Metrics.IncBuildOutcome("failed")
	} else {
		a.Metrics.IncBuildOutcome("passed")
	}
	return report, sumErr
}

func (a *Assembler) sortAll(galleries []*gallery.Gallery) error {
	within := gallery.Order(a.Cfg.Ordering.WithinGallery)
	subOrder := gallery.Order(a.Cfg.Ordering.Subgalleries)
	explicit := a.Cfg.Ordering.Explicit
	for _, g := range galleries {
		if err := gallery.SortScripts(g.Scripts, within, explicit); err != nil {
			return err
		}
		if err := gallery.SortSubgalleries(g.Subgalleries, subOrder, explicit); err != nil {
			return err
		}
		for _, sub := range g.Subgalleries {
			if err := gallery.SortScripts(sub.Scripts, within, explicit); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Assembler) binderConfig() (*binder.Config, error) {
	bc := a.Cfg.Binder
	if !bc.Enabled {
		return nil, nil
	}
	if err := bc.AutoDetect("."); err != nil {
		slog.Debug("Binder repository auto-detection failed", "error", err)
	}
	if err := bc.Validate(); err != nil {
		return nil, err
	}
	return &bc, nil
}

func (a *Assembler) processGallery(ctx context.Context, g *gallery.Gallery, bc *binder.Config,
	runRe *regexp.Regexp, expected func(string) bool, backrefs *Backrefs,
	report *Report, thumbs map[*gallery.Script]string) error {

	if err := os.MkdirAll(filepath.Join(g.DestDir, "images"), 0o750); err != nil {
		return fmt.Errorf("create gallery dest dir: %w", err)
	}
	if bc != nil {
		if err := binder.WriteBadgeAsset(filepath.Join(g.DestDir, "images")); err != nil {
			return err
		}
	}
	store, err := checksum.NewStore(g.DestDir)
	if err != nil {
		return err
	}

	for _, s := range g.Scripts {
		res, err := a.processScript(ctx, s, store, bc, runRe, expected)
		if err != nil {
			return err
		}
		report.Results = append(report.Results, res)
		if thumb := firstImage(s, res); thumb != "" {
			thumbs[s] = thumb
		}
		if backrefs != nil && !res.Stale {
			backrefs.Add(s, a.resolveNames(s, res), thumbs[s])
		}
	}
	return nil
}

func (a *Assembler) processScript(ctx context.Context, s *gallery.Script, store *checksum.Store,
	bc *binder.Config, runRe *regexp.Regexp, expected func(string) bool) (*gallery.RunResult, error) {

	stale, digest, err := store.IsStale(s.SrcFile)
	if err != nil {
		return nil, err
	}
	if !stale && !a.Cfg.Execution.RunStale {
		slog.Debug("Example unchanged, reusing previous outputs", "script", s.Stem())
		a.Metrics.IncScriptOutcome(metrics.OutcomeStale)
		return &gallery.RunResult{Script: s, Stale: true}, nil
	}

	var res *gallery.RunResult
	runnable := a.Exec != nil && runRe.MatchString(filepath.Base(s.SrcFile))
	if runnable {
		expectedFailing := expected(s.SrcFile)
		res, err = a.Exec.RunScript(ctx, s, expectedFailing)
		var execErr *gallery.ExecutionError
		switch {
		case err == nil:
		case errors.As(err, &execErr) && res != nil:
			// Unexpected failure: record it, keep building, fail the build
			// in the consolidated summary.
			slog.Error("Example failed", "script", s.Stem(), "line", execErr.Line)
		default:
			return nil, err
		}
		if resetErr := a.Exec.ResetBetween(ctx); resetErr != nil {
			return nil, resetErr
		}
	} else {
		res = &gallery.RunResult{Script: s}
	}

	if err := a.writeArtifacts(res, bc); err != nil {
		return nil, err
	}

	switch {
	case res.Failed && res.FailedAsExpected:
		a.Metrics.IncScriptOutcome(metrics.OutcomeFailedExpected)
	case res.Failed:
		a.Metrics.IncScriptOutcome(metrics.OutcomeFailed)
	default:
		a.Metrics.IncScriptOutcome(metrics.OutcomePassed)
	}
	a.Metrics.ObserveScriptDuration(s.Stem(), res.ExecTime)

	// The checksum record must only reflect fully successful generations;
	// expected failures count, unexpected ones leave the script stale.
	if !res.Failed || res.FailedAsExpected {
		if err := store.Commit(s.SrcFile, digest); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// writeArtifacts renders the page, the cleaned source copy and the
// notebook, all with promote-if-changed.
func (a *Assembler) writeArtifacts(res *gallery.RunResult, bc *binder.Config) error {
	s := res.Script
	page := renderScriptPage(res, bc, a.Cfg.Output.SiteRoot, a.Cfg.Execution.ShowMemory)
	if _, err := checksum.WriteFileIfChanged(s.PageFile(), []byte(page)); err != nil {
		return fmt.Errorf("write page for %s: %w", s.Stem(), err)
	}

	src, err := os.ReadFile(s.SrcFile)
	if err != nil {
		return fmt.Errorf("reread example %s: %w", s.SrcFile, err)
	}
	if _, err := checksum.WriteFileIfChanged(s.SourceCopyFile(), src); err != nil {
		return fmt.Errorf("write source copy for %s: %w", s.Stem(), err)
	}

	nb, err := notebook.Render(s, notebook.Options{
		FirstCell: a.Cfg.Output.FirstNotebookCell,
		LastCell:  a.Cfg.Output.LastNotebookCell,
	})
	if err != nil {
		return err
	}
	if _, err := checksum.WriteFileIfChanged(s.NotebookFile(), nb); err != nil {
		return fmt.Errorf("write notebook for %s: %w", s.Stem(), err)
	}
	return nil
}

// finishGallery writes the index, the times page and the download bundles
// once all of a root gallery's scripts (including subgalleries) ran.
func (a *Assembler) finishGallery(g *gallery.Gallery, report *Report, thumbs map[*gallery.Script]string) error {
	index := renderIndexPage(g, thumbs, a.Cfg.Output.DownloadAllExamples)
	if _, err := checksum.WriteFileIfChanged(g.IndexFile(), []byte(index)); err != nil {
		return fmt.Errorf("write index for %s: %w", g.Name(), err)
	}

	times := renderTimesPage(g, report.Results, a.Cfg.Output.TimesSortKey, a.Cfg.Execution.ShowMemory)
	if _, err := checksum.WriteFileIfChanged(g.TimesFile(), []byte(times)); err != nil {
		return fmt.Errorf("write times page for %s: %w", g.Name(), err)
	}

	if a.Cfg.Output.DownloadAllExamples {
		if err := writeBundles(g); err != nil {
			return err
		}
	}
	return nil
}

// resolveNames merges the configured hints with the namespace bindings
// reported by the interpreter, then resolves the names the script touches.
func (a *Assembler) resolveNames(s *gallery.Script, res *gallery.RunResult) map[string]string {
	hints := make(map[string]string, len(a.Cfg.Resolution.Hints)+len(res.Bindings))
	for k, v := range res.Bindings {
		hints[k] = v
	}
	for k, v := range a.Cfg.Resolution.Hints {
		hints[k] = v
	}
	r := &resolver.Resolver{Hints: hints, DocModules: a.Cfg.Resolution.DocModules}
	return r.Identify(s.Blocks)
}

// firstImage picks the thumbnail: the first scraped image, else the first
// previously generated image still on disk.
func firstImage(s *gallery.Script, res *gallery.RunResult) string {
	if len(res.Images) > 0 {
		return res.Images[0]
	}
	matches, err := filepath.Glob(filepath.Join(s.ImageDir(), s.ImagePrefix()+"_*"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

// expectedFailingMatcher matches scripts against the configured
// expected-failing entries. Entries may be given relative to the working
// directory, so a trailing-path match is accepted too.
func expectedFailingMatcher(entries []string) func(srcFile string) bool {
	cleaned := make([]string, 0, len(entries))
	for _, e := range entries {
		cleaned = append(cleaned, filepath.ToSlash(filepath.Clean(e)))
	}
	return func(srcFile string) bool {
		src := filepath.ToSlash(filepath.Clean(srcFile))
		for _, e := range cleaned {
			if src == e || strings.HasSuffix(src, "/"+e) {
				return true
			}
		}
		return false
	}
}
