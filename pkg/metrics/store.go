package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records read/write activity against the JSON collections.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewStoreMetrics registers the collection metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jsonstore_operations_total",
		Help: "Collection operations by result.",
	}, []string{"collection", "op", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jsonstore_operation_duration_seconds",
		Help:    "Duration of collection operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "op"})
	reg.MustRegister(operations, duration)
	return &StoreMetrics{operations: operations, duration: duration}
}

// Observe records one operation outcome.
func (s *StoreMetrics) Observe(collection, op string, duration time.Duration, err error) {
	if s == nil || s.operations == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.operations.WithLabelValues(normalizeLabel(collection), op, result).Inc()
	s.duration.WithLabelValues(normalizeLabel(collection), op).Observe(duration.Seconds())
}
