package assembler

import (
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// Summary is the final triage of a build's script results.
type Summary struct {
	// FailedExpected are scripts on the expected-failing list that failed.
	FailedExpected []*gallery.RunResult
	// FailedUnexpected are failures not on the list; tracebacks retained.
	FailedUnexpected []*gallery.RunResult
	// PassedUnexpected are scripts on the list that ran clean, meaning the
	// list is out of date.
	PassedUnexpected []*gallery.RunResult
}

// Summarize classifies results; isExpected reports whether a source file
// is on the expected-failing list.
func Summarize(results []*gallery.RunResult, isExpected func(srcFile string) bool) *Summary {
	sum := &Summary{}
	for _, r := range results {
		expected := isExpected(r.Script.SrcFile)
		switch {
		case r.Failed && expected:
			sum.FailedExpected = append(sum.FailedExpected, r)
		case r.Failed:
			sum.FailedUnexpected = append(sum.FailedUnexpected, r)
		case expected && !r.Stale && r.Outputs != nil:
			// Outputs is only allocated for scripts that actually executed.
			sum.PassedUnexpected = append(sum.PassedUnexpected, r)
		}
	}
	return sum
}

// Log writes the human-readable triage: expected failures at info,
// unexpected conditions at error with tracebacks.
func (s *Summary) Log() {
	for _, r := range s.FailedExpected {
		slog.Info("Example failed as expected", "script", r.Script.Stem())
	}
	for _, r := range s.FailedUnexpected {
		slog.Error("Example failed unexpectedly",
			"script", r.Script.Stem(), "traceback", r.Traceback)
	}
	for _, r := range s.PassedUnexpected {
		slog.Error("Example passed but is listed as expected to fail; "+
			"remove it from execution.expected_failing", "script", r.Script.Stem())
	}
}

// Err returns the consolidated build error, or nil when nothing unexpected
// remains. With onlyWarn set, unexpected conditions never become an error.
func (s *Summary) Err(onlyWarn bool) error {
	if onlyWarn {
		return nil
	}
	var parts []string
	if n := len(s.FailedUnexpected); n > 0 {
		names := make([]string, 0, n)
		for _, r := range s.FailedUnexpected {
			names = append(names, r.Script.Stem())
		}
		parts = append(parts, fmt.Sprintf("%d example(s) failed unexpectedly: %s",
			n, strings.Join(names, ", ")))
	}
	if n := len(s.PassedUnexpected); n > 0 {
		names := make([]string, 0, n)
		for _, r := range s.PassedUnexpected {
			names = append(names, r.Script.Stem())
		}
		parts = append(parts, fmt.Sprintf("%d example(s) passed but were expected to fail: %s",
			n, strings.Join(names, ", ")))
	}
	if len(parts) == 0 {
		return nil
	}
	return fmt.Errorf("gallerygen: build finished with unexpected conditions: %s",
		strings.Join(parts, "; "))
}
