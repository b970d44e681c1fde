package assembler

import (
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
	"git.home.luguber.info/inful/gallerygen/internal/history"
	"git.home.luguber.info/inful/gallerygen/internal/metrics"
)

// HistoryRecords converts the report into a build record plus one run
// record per script, ready for history.Store.RecordBuild.
func (r *Report) HistoryRecords(started time.Time) (history.BuildRecord, []history.RunRecord) {
	outcome := "passed"
	if r.Summary != nil && (len(r.Summary.FailedUnexpected) > 0 || len(r.Summary.PassedUnexpected) > 0) {
		outcome = "failed"
	}
	build := history.BuildRecord{
		ID:       uuid.NewString(),
		Started:  started,
		Duration: r.Duration,
		Outcome:  outcome,
	}

	runs := make([]history.RunRecord, 0, len(r.Results))
	for _, res := range r.Results {
		runs = append(runs, history.RunRecord{
			BuildID:  build.ID,
			Script:   res.Script.Stem(),
			Duration: res.ExecTime,
			MemoryMB: res.MemoryMB,
			Outcome:  string(resultOutcome(res)),
		})
	}
	return build, runs
}

func resultOutcome(res *gallery.RunResult) metrics.Outcome {
	switch {
	case res.Stale:
		return metrics.OutcomeStale
	case res.Failed && res.FailedAsExpected:
		return metrics.OutcomeFailedExpected
	case res.Failed:
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomePassed
	}
}
