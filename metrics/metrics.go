package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SourceCallsTotal counts settled calls per upstream source.
	// Labels: source (translator/diarizer), status (success or error kind)
	SourceCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diag_source_calls_total",
			Help: "Total number of settled upstream source calls by source and status",
		},
		[]string{"source", "status"},
	)

	// SourceRetriesTotal counts retried attempts per source.
	SourceRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diag_source_retries_total",
			Help: "Total number of retried attempts against upstream sources",
		},
		[]string{"source"},
	)

	// SourceDuration tracks wall time per settled source call, retries included.
	// Buckets: 0.5s .. 600s
	SourceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "diag_source_duration_seconds",
			Help:    "Upstream source call duration in seconds, retries included",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"source"},
	)

	// PipelineRunsTotal counts finished pipeline runs by outcome.
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diag_pipeline_runs_total",
			Help: "Total number of transcript reconciliation runs by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordSourceCall records a settled source call.
func RecordSourceCall(source, status string, seconds float64) {
	SourceCallsTotal.WithLabelValues(source, status).Inc()
	SourceDuration.WithLabelValues(source).Observe(seconds)
}

// RecordRetry records one retried attempt.
func RecordRetry(source string) {
	SourceRetriesTotal.WithLabelValues(source).Inc()
}

// RecordRun records a finished pipeline run.
func RecordRun(outcome string) {
	PipelineRunsTotal.WithLabelValues(outcome).Inc()
}
