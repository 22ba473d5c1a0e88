package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Configuration metrics
	ConfigObjectsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "otool_config_objects_total",
			Help: "Number of configuration objects by collection",
		},
		[]string{"collection"},
	)

	// Expansion metrics
	ExpansionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "otool_expansion_duration_seconds",
			Help:    "Time taken to expand projects into job matrices in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	ExpansionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "otool_expansion_failures_total",
			Help: "Total number of project expansions that failed",
		},
	)

	DeclaredJobs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "otool_declared_jobs",
			Help: "Number of jobs a project declares",
		},
		[]string{"project"},
	)

	// Reconciliation metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "otool_reconciliation_duration_seconds",
			Help:    "Time taken to reconcile declared and actual jobs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	OrphanJobs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "otool_orphan_jobs",
			Help: "Orphan jobs found by the last reconciliation, by side",
		},
		[]string{"side"},
	)

	// Lifecycle metrics
	LedgerRemovals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otool_ledger_removals_total",
			Help: "Total number of coordinates removed from processed ledgers by job kind",
		},
		[]string{"kind"},
	)

	ExpectationWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "otool_expectation_writes_total",
			Help: "Total number of arches expectation records written",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otool_api_requests_total",
			Help: "Total number of API requests by path and status",
		},
		[]string{"path", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "otool_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(ConfigObjectsTotal)
	prometheus.MustRegister(ExpansionDuration)
	prometheus.MustRegister(ExpansionFailures)
	prometheus.MustRegister(DeclaredJobs)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(OrphanJobs)
	prometheus.MustRegister(LedgerRemovals)
	prometheus.MustRegister(ExpectationWrites)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
