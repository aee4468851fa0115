package service

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCountsOutcomes(t *testing.T) {
	m := NewMetricsService()

	m.ObserveOperation("record_award", nil, 10*time.Millisecond)
	m.ObserveOperation("record_award", errors.New("rolled back"), 30*time.Millisecond)
	m.ObserveOperation("delete_teacher", nil, 20*time.Millisecond)
	m.RecordCleanupFailure()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.operationTotal.WithLabelValues("record_award", "committed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operationTotal.WithLabelValues("record_award", "aborted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cleanupFailures))

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.OperationsTotal)
	assert.Equal(t, uint64(1), snap.OperationFailures)
	assert.Equal(t, uint64(1), snap.ArtifactCleanupFailures)
	assert.InDelta(t, 20.0, snap.AverageOperationDuration, 0.001)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"archive_operation_duration_seconds",
		"archive_operations_total",
		"archive_artifact_cleanup_failures_total",
	}, names)
}

func TestMetricsServiceNilIsNoop(t *testing.T) {
	var m *MetricsService

	m.ObserveOperation("delete_teacher", nil, time.Second)
	m.RecordCleanupFailure()
	assert.Nil(t, m.Registry())
	assert.Zero(t, m.Snapshot().OperationsTotal)
}
