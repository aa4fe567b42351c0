package query

import (
	"context"
	"log/slog"

	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SYSTEM STATS QUERY (aggregate reporter)
// ══════════════════════════════════════════════════════════════════════════════

// SystemStats is the fold of every student's snapshot.
type SystemStats struct {
	TotalStudents  int     `json:"total_students"`
	TotalCredits   int     `json:"total_credits"`
	TotalCompleted int     `json:"total_completed"`
	TotalEnrolled  int     `json:"total_enrolled"`
	AverageGPA     float64 `json:"average_gpa"`
}

// GetSystemStatsHandler folds per-student progress into system-wide
// statistics.
type GetSystemStatsHandler struct {
	store    record.Store
	progress *GetProgressHandler
	logger   *slog.Logger
}

// NewGetSystemStatsHandler creates the handler.
func NewGetSystemStatsHandler(store record.Store, progressHandler *GetProgressHandler, logger *slog.Logger) *GetSystemStatsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetSystemStatsHandler{store: store, progress: progressHandler, logger: logger}
}

// Handle iterates every directory entry with the student role and folds the
// snapshots. AverageGPA is the mean over students whose GPA is above zero:
// students with no graded courses are excluded from the average rather than
// counted as zeros, so new students do not drag it down.
func (h *GetSystemStatsHandler) Handle(ctx context.Context) (SystemStats, error) {
	directory := record.GetOrDefault(ctx, h.store, record.KeyDirectory, []record.StudentRecord{}, h.logger)

	var stats SystemStats
	var gpaSum float64
	var gpaCount int

	for _, entry := range directory {
		if !entry.Role.ParticipatesInAggregation() {
			continue
		}
		stats.TotalStudents++

		snap, err := h.progress.Handle(ctx, GetProgressQuery{StudentID: entry.ID})
		if err != nil {
			return SystemStats{}, err
		}

		stats.TotalCredits += snap.CreditsEarned
		stats.TotalCompleted += snap.CompletedCount
		stats.TotalEnrolled += snap.EnrolledCount

		if snap.GPA > 0 {
			gpaSum += snap.GPA
			gpaCount++
		}
	}

	if gpaCount > 0 {
		stats.AverageGPA = gpaSum / float64(gpaCount)
	}
	return stats, nil
}
