package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	scriptDuration *prom.HistogramVec
	buildDuration  prom.Histogram
	scriptOutcomes *prom.CounterVec
	buildOutcomes  *prom.CounterVec
	galleryCount   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics
// (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.scriptDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "gallerygen",
			Name:      "script_duration_seconds",
			Help:      "Execution duration of individual example scripts",
			Buckets:   prom.DefBuckets,
		}, []string{"script"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "gallerygen",
			Name:      "build_duration_seconds",
			Help:      "Total gallery build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.scriptOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gallerygen",
			Name:      "script_outcomes_total",
			Help:      "Script results by outcome",
		}, []string{"outcome"})
		pr.buildOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gallerygen",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.galleryCount = prom.NewGauge(prom.GaugeOpts{
			Namespace: "gallerygen",
			Name:      "galleries",
			Help:      "Number of configured galleries in the last build",
		})
		reg.MustRegister(pr.scriptDuration, pr.buildDuration, pr.scriptOutcomes, pr.buildOutcomes, pr.galleryCount)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveScriptDuration(script string, d time.Duration) {
	if p == nil || p.scriptDuration == nil {
		return
	}
	p.scriptDuration.WithLabelValues(script).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncScriptOutcome(outcome Outcome) {
	if p == nil || p.scriptOutcomes == nil {
		return
	}
	p.scriptOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcomes == nil {
		return
	}
	p.buildOutcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetGalleryCount(n int) {
	if p == nil || p.galleryCount == nil {
		return
	}
	p.galleryCount.Set(float64(n))
}
