package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CopilotRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_requests_total",
			Help: "Total number of copilot queries answered",
		},
		[]string{"intent", "confidence"},
	)

	CopilotRequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_requests_failed_total",
			Help: "Total number of copilot queries that failed",
		},
		[]string{"reason"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copilot_stage_duration_seconds",
			Help:    "Duration of each copilot pipeline stage in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"stage"},
	)

	StageDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_stage_degraded_total",
			Help: "Number of times a stage fell back to its degraded default",
		},
		[]string{"stage"},
	)

	MemoryStrategy = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_memory_total",
			Help: "Memory decisions by strategy (no-trigger, verbatim, summary, truncated)",
		},
		[]string{"strategy"},
	)

	TokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_tokens_total",
			Help: "Provider-reported tokens consumed per stage",
		},
		[]string{"stage"},
	)
)

// ObserveStage records the elapsed time since start for stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
