package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradehub/gradehub-core/internal/domain/activity"
	"github.com/gradehub/gradehub-core/internal/domain/record"
	"github.com/gradehub/gradehub-core/internal/infrastructure/persistence/memory"
)

func TestGetActivitySummaryHandler_SummarizesStudent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	var log activity.Log
	mk := func(id string, student record.StudentID, action string, at time.Time) {
		e, err := activity.NewEntry(id, student, action, "", nil, at)
		require.NoError(t, err)
		log.Append(e)
	}
	mk("e1", "stu-1", activity.ActionLogin, now.Add(-3*time.Hour))
	mk("e2", "stu-1", activity.ActionCourseEnrolled, now.Add(-30*time.Second))
	mk("e3", "stu-2", activity.ActionLogin, now.Add(-time.Hour))
	require.NoError(t, record.SetJSON(ctx, store, record.KeyActivityLog, log))

	h := NewGetActivitySummaryHandler(store, nil)
	h.now = func() time.Time { return now }

	view, err := h.Handle(ctx, GetActivitySummaryQuery{StudentID: "stu-1"})
	require.NoError(t, err)

	assert.Equal(t, 2, view.TotalCount)
	assert.Equal(t, map[string]int{activity.ActionLogin: 1, activity.ActionCourseEnrolled: 1}, view.CountsByAction)
	require.Len(t, view.Recent, 2)
	assert.Equal(t, "e2", view.Recent[0].ID, "newest first")
	assert.Equal(t, "just now", view.Recent[0].When)
	assert.Equal(t, "3h ago", view.Recent[1].When)
}

func TestGetActivitySummaryHandler_NoActivity(t *testing.T) {
	h := NewGetActivitySummaryHandler(memory.NewStore(), nil)

	view, err := h.Handle(context.Background(), GetActivitySummaryQuery{StudentID: "stu-1"})
	require.NoError(t, err)

	assert.Zero(t, view.TotalCount)
	assert.Empty(t, view.Recent)
}

func TestGetActivitySummaryHandler_Validation(t *testing.T) {
	h := NewGetActivitySummaryHandler(memory.NewStore(), nil)

	_, err := h.Handle(context.Background(), GetActivitySummaryQuery{})
	assert.ErrorIs(t, err, activity.ErrInvalidStudentID)
}
