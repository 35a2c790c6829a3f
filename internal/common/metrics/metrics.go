// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction stage outcomes.
const (
	StageAccepted = "accepted"
	StageShort    = "short"
	StageEmpty    = "empty"
	StageError    = "error"
	StageSkipped  = "skipped"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"route"},
	)

	MatchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_match_requests_total",
			Help: "Total number of resume match requests by outcome",
		},
		[]string{"outcome"},
	)

	ExtractionStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_stage_total",
			Help: "Extraction stage attempts by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	CatalogJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_jobs",
			Help: "Number of jobs in the loaded catalog",
		},
	)

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
)
