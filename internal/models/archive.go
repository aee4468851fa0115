package models

import (
	"time"

	"github.com/noah-isme/teacher-archive/pkg/storage"
)

// DeleteTeacherResult summarises a committed teacher deletion.
type DeleteTeacherResult struct {
	TeacherID   string           `json:"teacher_id"`
	DeletedRows map[string]int64 `json:"deleted_rows"`
	// RemovedArtifacts were deleted from disk after commit.
	RemovedArtifacts []storage.ArtifactRef `json:"removed_artifacts"`
	// OrphanedArtifacts could not be removed; no row references them any more.
	OrphanedArtifacts []storage.ArtifactRef `json:"orphaned_artifacts,omitempty"`
}

// ArchiveMetrics is a point-in-time view of store operation counters.
type ArchiveMetrics struct {
	OperationsTotal          uint64    `json:"operations_total"`
	OperationFailures        uint64    `json:"operation_failures"`
	ArtifactCleanupFailures  uint64    `json:"artifact_cleanup_failures"`
	AverageOperationDuration float64   `json:"average_operation_duration_ms"`
	GeneratedAt              time.Time `json:"generated_at"`
}
