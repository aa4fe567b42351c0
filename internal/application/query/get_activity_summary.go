package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/gradehub/gradehub-core/internal/domain/activity"
	"github.com/gradehub/gradehub-core/internal/domain/record"
	"github.com/gradehub/gradehub-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACTIVITY SUMMARY QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetActivitySummaryQuery identifies the student to summarize.
type GetActivitySummaryQuery struct {
	StudentID record.StudentID
}

// ActivityEntryView is one recent entry with its relative-time label.
type ActivityEntryView struct {
	activity.Entry
	When string `json:"when"`
}

// ActivitySummaryView is the advisor-facing activity summary.
type ActivitySummaryView struct {
	StudentID      record.StudentID    `json:"student_id"`
	TotalCount     int                 `json:"total_count"`
	CountsByAction map[string]int      `json:"counts_by_action"`
	Recent         []ActivityEntryView `json:"recent"`
}

// GetActivitySummaryHandler summarizes a student's retained activity.
type GetActivitySummaryHandler struct {
	store  record.Store
	logger *slog.Logger

	// now is swapped in tests to pin relative-time labels.
	now func() time.Time
}

// NewGetActivitySummaryHandler creates the handler.
func NewGetActivitySummaryHandler(store record.Store, logger *slog.Logger) *GetActivitySummaryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetActivitySummaryHandler{store: store, logger: logger, now: time.Now}
}

// Handle folds the global log into the student's summary.
func (h *GetActivitySummaryHandler) Handle(ctx context.Context, q GetActivitySummaryQuery) (ActivitySummaryView, error) {
	if !q.StudentID.IsValid() {
		return ActivitySummaryView{}, activity.ErrInvalidStudentID
	}

	log := record.GetOrDefault(ctx, h.store, record.KeyActivityLog, activity.Log{}, h.logger)
	summary := log.SummaryFor(q.StudentID)

	now := h.now()
	view := ActivitySummaryView{
		StudentID:      summary.StudentID,
		TotalCount:     summary.TotalCount,
		CountsByAction: summary.CountsByAction,
		Recent:         make([]ActivityEntryView, 0, len(summary.Recent)),
	}
	for _, e := range summary.Recent {
		view.Recent = append(view.Recent, ActivityEntryView{
			Entry: e,
			When:  timeutil.FormatRelative(e.Timestamp, now),
		})
	}
	return view, nil
}
