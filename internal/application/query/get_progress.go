// Package query contains read operations (CQRS - Queries). Derived values
// are recomputed from raw records on every read; nothing here caches.
package query

import (
	"context"
	"log/slog"

	"github.com/gradehub/gradehub-core/internal/domain/progress"
	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressQuery identifies the student to compute progress for.
type GetProgressQuery struct {
	StudentID record.StudentID
}

// GetProgressHandler loads a student's raw records and computes a progress
// snapshot.
type GetProgressHandler struct {
	store  record.Store
	scale  record.GradeScale
	logger *slog.Logger
}

// NewGetProgressHandler creates the handler.
func NewGetProgressHandler(store record.Store, scale record.GradeScale, logger *slog.Logger) *GetProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetProgressHandler{store: store, scale: scale, logger: logger}
}

// Handle computes the snapshot. An unknown student yields a zero-valued
// snapshot, not an error; corrupt course or grade data reads as empty.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (progress.Snapshot, error) {
	if !q.StudentID.IsValid() {
		return progress.Snapshot{}, record.ErrInvalidStudentID
	}

	courses := record.GetOrDefault(ctx, h.store, record.CoursesKey(q.StudentID), []record.CourseEnrollment{}, h.logger)
	entries := record.GetOrDefault(ctx, h.store, record.KeyGradeEntries, []record.GradeEntry{}, h.logger)

	return progress.Compute(q.StudentID, courses, entries, h.scale), nil
}
