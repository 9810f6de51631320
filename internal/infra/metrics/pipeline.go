package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(pipelineStageSeconds, extractionFailuresTotal, transcriberCallsTotal) }

var (
	pipelineStageSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_seconds",
			Help:    "Duration of each audio pipeline stage.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"}, // validate, convert, transcribe, extract, assemble, persist
	)

	extractionFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extraction_failures_total",
			Help: "Entity extraction errors that were downgraded to an empty result.",
		},
	)

	transcriberCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcriber_calls_total",
			Help: "Speech-to-text calls per provider and outcome.",
		},
		[]string{"provider", "success"},
	)
)

func ObserveStage(stage string, d time.Duration) {
	pipelineStageSeconds.WithLabelValues(norm(stage)).Observe(d.Seconds())
}

func IncExtractionFailure() { extractionFailuresTotal.Inc() }

func IncTranscriberCall(provider string, success bool) {
	s := "false"
	if success {
		s = "true"
	}
	transcriberCallsTotal.WithLabelValues(norm(provider), s).Inc()
}
