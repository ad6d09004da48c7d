package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing and search Prometheus metrics.
var (
	DocumentsIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacker",
			Name:      "documents_indexed_total",
			Help:      "Total number of documents written via the bulk API",
		},
		[]string{"index"},
	)

	BulkRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacker",
			Name:      "bulk_retries_total",
			Help:      "Total number of retried bulk chunks",
		},
		[]string{"index"},
	)

	BulkFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacker",
			Name:      "bulk_failures_total",
			Help:      "Total number of bulk chunks that failed after retry",
		},
		[]string{"index"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stacker",
			Name:      "search_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"index"},
	)

	UpdateByQueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacker",
			Name:      "update_by_query_total",
			Help:      "Total number of update-by-query calls",
		},
		[]string{"index"},
	)

	TasksProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacker",
			Name:      "tasks_processed_total",
			Help:      "Total number of background tasks processed",
		},
		[]string{"kind", "status"},
	)

	CountsCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacker",
			Name:      "counts_cache_total",
			Help:      "Counts cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registered bool

// Register registers all Prometheus metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(DocumentsIndexedTotal)
	prometheus.MustRegister(BulkRetriesTotal)
	prometheus.MustRegister(BulkFailuresTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(UpdateByQueryTotal)
	prometheus.MustRegister(TasksProcessedTotal)
	prometheus.MustRegister(CountsCacheTotal)
	registered = true
}
