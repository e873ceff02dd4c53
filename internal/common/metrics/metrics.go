// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	ScoringResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_resolutions_total",
			Help: "Pattern resolutions by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	ScoringRangeOverlapEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoring_range_overlap_events_total",
			Help: "Range resolutions where more than one range matched the score",
		},
	)

	ScoringAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_assignments_total",
			Help: "Persisted user test results by generation method",
		},
		[]string{"generation_method"},
	)

	ScoringUsageIncrementFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoring_usage_increment_failures_total",
			Help: "Pattern usage counter updates dropped after exhausting retries",
		},
	)

	ScoringPatternCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_pattern_cache_total",
			Help: "Pattern cache lookups by result",
		},
		[]string{"result"},
	)
)
