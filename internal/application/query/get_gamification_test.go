package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradehub/gradehub-core/internal/domain/gamification"
	"github.com/gradehub/gradehub-core/internal/domain/record"
	"github.com/gradehub/gradehub-core/internal/infrastructure/persistence/memory"
)

func TestGetGamificationHandler_ReturnsStoredState(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	state := gamification.NewState("stu-1")
	state.AddXP(300)
	state.CurrentStreak = 3
	state.BestStreak = 5
	unlockedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	state.Achievements["first_course"] = &gamification.AchievementProgress{
		ID: "first_course", Progress: 1, Unlocked: true, UnlockedAt: unlockedAt,
	}
	states := map[record.StudentID]*gamification.State{"stu-1": state}
	require.NoError(t, record.SetJSON(ctx, store, record.KeyGamificationStates, states))

	h := NewGetGamificationHandler(store, nil)
	view, err := h.Handle(ctx, GetGamificationQuery{StudentID: "stu-1"})
	require.NoError(t, err)

	assert.Equal(t, 300, view.TotalXP)
	assert.Equal(t, 3, view.Level.Number)
	assert.Equal(t, 3, view.CurrentStreak)
	assert.Equal(t, 5, view.BestStreak)

	require.Len(t, view.Achievements, len(gamification.Templates()), "every template appears, locked or not")
	var first *AchievementView
	for i := range view.Achievements {
		if view.Achievements[i].ID == "first_course" {
			first = &view.Achievements[i]
		}
	}
	require.NotNil(t, first)
	assert.True(t, first.Unlocked)
	assert.Equal(t, unlockedAt.Format(time.RFC3339), first.UnlockedAt)
}

func TestGetGamificationHandler_UnknownStudentGetsZeroState(t *testing.T) {
	store := memory.NewStore()
	h := NewGetGamificationHandler(store, nil)

	view, err := h.Handle(context.Background(), GetGamificationQuery{StudentID: "stu-ghost"})
	require.NoError(t, err)

	assert.Zero(t, view.TotalXP)
	assert.Equal(t, 1, view.Level.Number)
	assert.Len(t, view.Achievements, len(gamification.Templates()))

	// A read never writes the state back.
	_, err = store.Get(context.Background(), record.KeyGamificationStates)
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestGetGamificationHandler_AchievementsSortedByID(t *testing.T) {
	h := NewGetGamificationHandler(memory.NewStore(), nil)

	view, err := h.Handle(context.Background(), GetGamificationQuery{StudentID: "stu-1"})
	require.NoError(t, err)

	for i := 1; i < len(view.Achievements); i++ {
		assert.Less(t, view.Achievements[i-1].ID, view.Achievements[i].ID)
	}
}

func TestGetGamificationHandler_Validation(t *testing.T) {
	h := NewGetGamificationHandler(memory.NewStore(), nil)

	_, err := h.Handle(context.Background(), GetGamificationQuery{})
	assert.ErrorIs(t, err, record.ErrInvalidStudentID)
}
