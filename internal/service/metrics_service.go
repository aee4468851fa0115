package service

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/teacher-archive/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation of archive operations.
type MetricsService struct {
	registry          *prometheus.Registry
	operationDuration *prometheus.HistogramVec
	operationTotal    *prometheus.CounterVec
	cleanupFailures   prometheus.Counter

	operationCount         uint64
	operationFailureCount  uint64
	operationDurationTotal uint64
	cleanupFailureCount    uint64
}

// NewMetricsService registers the archive collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	operationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "archive_operation_duration_seconds",
		Help:    "Duration of aggregate archive operations in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	operationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archive_operations_total",
		Help: "Total number of aggregate archive operations",
	}, []string{"operation", "outcome"})

	cleanupFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "archive_artifact_cleanup_failures_total",
		Help: "Artifacts that could not be removed after their rows were deleted",
	})

	registry.MustRegister(operationDuration, operationTotal, cleanupFailures)

	return &MetricsService{
		registry:          registry,
		operationDuration: operationDuration,
		operationTotal:    operationTotal,
		cleanupFailures:   cleanupFailures,
	}
}

// Registry exposes the collectors for scraping or inspection.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOperation records the outcome and duration of one aggregate operation.
func (m *MetricsService) ObserveOperation(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "committed"
	if err != nil {
		outcome = "aborted"
		atomic.AddUint64(&m.operationFailureCount, 1)
	}
	m.operationDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
	m.operationTotal.WithLabelValues(operation, outcome).Inc()
	atomic.AddUint64(&m.operationCount, 1)
	atomic.AddUint64(&m.operationDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCleanupFailure counts an artifact left on disk after a committed delete.
func (m *MetricsService) RecordCleanupFailure() {
	if m == nil {
		return
	}
	m.cleanupFailures.Inc()
	atomic.AddUint64(&m.cleanupFailureCount, 1)
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() models.ArchiveMetrics {
	if m == nil {
		return models.ArchiveMetrics{}
	}
	count := atomic.LoadUint64(&m.operationCount)
	total := atomic.LoadUint64(&m.operationDurationTotal)

	var avgMs float64
	if count > 0 {
		avgMs = float64(total) / float64(count) / float64(time.Millisecond)
	}

	return models.ArchiveMetrics{
		OperationsTotal:          count,
		OperationFailures:        atomic.LoadUint64(&m.operationFailureCount),
		ArtifactCleanupFailures:  atomic.LoadUint64(&m.cleanupFailureCount),
		AverageOperationDuration: avgMs,
		GeneratedAt:              time.Now().UTC(),
	}
}
