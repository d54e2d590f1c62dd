package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Contract gateway
	ChainCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chamba",
		Subsystem: "gateway",
		Name:      "calls_total",
		Help:      "Total contract calls by method and error kind",
	}, []string{"method", "kind"})

	ChainCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chamba",
		Subsystem: "gateway",
		Name:      "call_duration_seconds",
		Help:      "Contract call duration including confirmation waits",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
	}, []string{"method"})

	RPCRateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chamba",
		Subsystem: "gateway",
		Name:      "rate_limit_waits_total",
		Help:      "Total RPC calls delayed by the client-side rate limiter",
	})

	TxConfirmTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chamba",
		Subsystem: "gateway",
		Name:      "confirm_timeouts_total",
		Help:      "Transactions sent whose confirmation wait timed out",
	}, []string{"method"})

	// Asset retrieval
	RetrievalAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chamba",
		Subsystem: "retrieval",
		Name:      "attempts_total",
		Help:      "Display attempts by error kind (ok on success)",
	}, []string{"kind"})

	RetrievalOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chamba",
		Subsystem: "retrieval",
		Name:      "outcomes_total",
		Help:      "Terminal retrieval states",
	}, []string{"state"})

	RetrievalFlowsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chamba",
		Subsystem: "retrieval",
		Name:      "flows_active",
		Help:      "Retrieval flows currently registered",
	})

	// Uploads
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chamba",
		Subsystem: "upload",
		Name:      "total",
		Help:      "Uploads by storage backend and result",
	}, []string{"backend", "result"})

	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chamba",
		Subsystem: "upload",
		Name:      "bytes",
		Help:      "Size of accepted uploads",
		Buckets:   prometheus.ExponentialBuckets(16<<10, 2, 10),
	})

	// Record stores
	RecordStoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chamba",
		Subsystem: "records",
		Name:      "operations_total",
		Help:      "Record store operations by backend, op and status",
	}, []string{"backend", "op", "status"})
)

// Status returns "ok" or "error" for a result label.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
