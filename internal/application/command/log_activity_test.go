package command

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

func TestLogActivityHandler_Appends(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	h := NewLogActivityHandler(store, nil)

	res, err := h.Handle(ctx, LogActivityCommand{
		StudentID:   "stu-1",
		Action:      activity.ActionLogin,
		Description: "Signed in",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.EntryID)
	assert.Equal(t, 1, res.TotalCount)
	assert.Zero(t, res.Evicted)

	log, err := record.GetJSON[activity.Log](ctx, store, record.KeyActivityLog)
	require.NoError(t, err)
	require.Len(t, log.Entries, 1)
	assert.Equal(t, activity.ActionLogin, log.Entries[0].Action)
}

func TestLogActivityHandler_AssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	h := NewLogActivityHandler(memory.NewStore(), nil)

	a, err := h.Handle(ctx, LogActivityCommand{StudentID: "stu-1", Action: activity.ActionLogin})
	require.NoError(t, err)
	b, err := h.Handle(ctx, LogActivityCommand{StudentID: "stu-1", Action: activity.ActionLogin})
	require.NoError(t, err)

	assert.NotEqual(t, a.EntryID, b.EntryID)
}

func TestLogActivityHandler_EvictsAtCap(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	h := NewLogActivityHandler(store, nil)

	// Pre-seed a full log so one more append evicts the oldest entry.
	var log activity.Log
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < activity.MaxEntries; i++ {
		e, err := activity.NewEntry("seed", "stu-1", activity.ActionLogin, "", nil, base)
		require.NoError(t, err)
		log.Entries = append(log.Entries, e)
	}
	require.NoError(t, record.SetJSON(ctx, store, record.KeyActivityLog, log))

	res, err := h.Handle(ctx, LogActivityCommand{StudentID: "stu-1", Action: activity.ActionLogin})
	require.NoError(t, err)
	assert.Equal(t, activity.MaxEntries, res.TotalCount)
	assert.Equal(t, 1, res.Evicted)
}

func TestLogActivityHandler_Validation(t *testing.T) {
	h := NewLogActivityHandler(memory.NewStore(), nil)

	_, err := h.Handle(context.Background(), LogActivityCommand{Action: activity.ActionLogin})
	assert.ErrorIs(t, err, activity.ErrInvalidStudentID)

	_, err = h.Handle(context.Background(), LogActivityCommand{StudentID: "stu-1"})
	assert.ErrorIs(t, err, activity.ErrInvalidAction)
}
