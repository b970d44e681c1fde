package metrics

import "time"

// Outcome labels for script counters.
type Outcome string

const (
	OutcomePassed         Outcome = "passed"
	OutcomeFailed         Outcome = "failed"
	OutcomeFailedExpected Outcome = "failed_expected"
	OutcomeStale          Outcome = "stale"
)

// Recorder defines observability hooks for gallery builds. Implementations
// may forward to Prometheus; the NoopRecorder makes injection optional.
type Recorder interface {
	ObserveScriptDuration(script string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncScriptOutcome(outcome Outcome)
	IncBuildOutcome(outcome string) // outcome: passed or failed
	SetGalleryCount(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are
// not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveScriptDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
func (NoopRecorder) IncScriptOutcome(Outcome)                    {}
func (NoopRecorder) IncBuildOutcome(string)                      {}
func (NoopRecorder) SetGalleryCount(int)                         {}
