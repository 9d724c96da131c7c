// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analysis metrics
	AnalysesStarted   prometheus.Counter
	AnalysesCompleted prometheus.Counter
	AnalysesFailed    prometheus.Counter
	CreditsConsumed   prometheus.Counter
	BuyersFound       prometheus.Histogram
	AnalysisDuration  prometheus.Histogram

	// Pipeline metrics
	TransactionsNormalized prometheus.Counter
	NormalizationDrops     prometheus.Counter
	FallbackActivations    prometheus.Counter

	// Transport metrics
	RPCCallLatency *prometheus.HistogramVec

	// Job metrics
	ActiveJobs       prometheus.Gauge
	QueuedJobs       prometheus.Gauge
	BalanceRefreshes prometheus.Counter

	// Notification metrics
	WSClients prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "early_bidders"
	}

	return &Metrics{
		AnalysesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "started_total",
			Help:      "Total number of analyses started",
		}),
		AnalysesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "completed_total",
			Help:      "Total number of analyses completed successfully",
		}),
		AnalysesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "failed_total",
			Help:      "Total number of analyses that ended with a no-data outcome",
		}),
		CreditsConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "credits_consumed_total",
			Help:      "Total metered API credits consumed by analyses",
		}),
		BuyersFound: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "buyers_found",
			Help:      "Unique early buyers found per analysis",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),

		TransactionsNormalized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "transactions_normalized_total",
			Help:      "Total number of raw transactions successfully normalized",
		}),
		NormalizationDrops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "normalization_drops_total",
			Help:      "Total number of raw transactions dropped as unusable",
		}),
		FallbackActivations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "fallback_activations_total",
			Help:      "Times the signature-scan fallback replaced the ascending fetch",
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "rpc_call_duration_seconds",
			Help:      "Remote call latency by method",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"method"}),

		ActiveJobs: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "active",
			Help:      "Number of analysis jobs currently running",
		}),
		QueuedJobs: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "queued",
			Help:      "Number of analysis jobs waiting for a worker",
		}),
		BalanceRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "balance_refreshes_total",
			Help:      "Total number of wallet balance lookups performed",
		}),

		WSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "ws_clients",
			Help:      "Number of connected websocket clients",
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTransactionNormalized increments the normalized transactions counter.
func RecordTransactionNormalized() {
	DefaultMetrics.TransactionsNormalized.Inc()
}

// RecordNormalizationDrop increments the dropped transactions counter.
func RecordNormalizationDrop() {
	DefaultMetrics.NormalizationDrops.Inc()
}

// RecordFallbackActivation increments the fallback activations counter.
func RecordFallbackActivation() {
	DefaultMetrics.FallbackActivations.Inc()
}

// RecordRPCLatency records remote call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}
