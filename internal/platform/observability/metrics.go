package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoutJobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_jobs_processed_total",
		Help: "The total number of scout jobs processed by terminal status",
	}, []string{"status"})

	ScoutJobDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scout_job_duration_seconds",
		Help:    "Duration in seconds of one scout job end to end",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	RerankerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_reranker_requests_total",
		Help: "Reranker outcomes by rank source (model or fallback)",
	}, []string{"source"})

	SuggestionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_suggestions_created_total",
		Help: "The total number of draft suggestions persisted",
	})

	QuotaDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_quota_denied_total",
		Help: "Jobs rejected by the quota pre-check",
	})

	QueueBacklog = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scout_queue_jobs",
		Help: "Number of scout jobs in the queue by status",
	}, []string{"status"})

	CandidatesScored = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scout_candidates_scored",
		Help:    "Number of corpus candidates scored per job",
		Buckets: []float64{0, 5, 10, 20, 50, 100, 200},
	})
)
