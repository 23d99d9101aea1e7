package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(
		APIRequests,
		APIRequestDuration,
		ReconcileChecks,
		ReconcileOutcomes,
		UpgradeCompletions,
		AttributionEvents,
		JobsProcessed,
		JobQueueDepth,
	)
}

var (
	// Backend calls by endpoint and result.
	// result: ok|business_error|transport_error
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_api_requests_total",
			Help: "Calls to the backend REST API by endpoint and result.",
		},
		[]string{"endpoint", "result"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidora_api_request_duration_seconds",
			Help:    "Latency of backend REST API calls in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	// Individual status checks during payment-return reconciliation.
	// result: pending|terminal|error
	ReconcileChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_reconcile_checks_total",
			Help: "Latest-payment checks made while reconciling a payment return.",
		},
		[]string{"result"},
	)

	// Final state of each reconciliation run.
	ReconcileOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_reconcile_outcomes_total",
			Help: "Final reconciliation states by state and trigger.",
		},
		[]string{"state", "trigger"},
	)

	// result: ok|error
	UpgradeCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_upgrade_completions_total",
			Help: "Subscription upgrade/renewal completion calls after a successful payment.",
		},
		[]string{"result"},
	)

	// sink: kafka|api, result: ok|error
	AttributionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_attribution_events_total",
			Help: "Marketing attribution events delivered by sink and result.",
		},
		[]string{"sink", "result"},
	)

	JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_jobs_processed_total",
			Help: "Background jobs processed by type and status.",
		},
		[]string{"type", "status"},
	)

	JobQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vidora_job_queue_depth",
			Help: "Jobs waiting or in processing in the redis job queue.",
		},
		[]string{"list"},
	)
)
