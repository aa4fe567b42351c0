package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradehub/gradehub-core/internal/domain/progress"
)

func TestRecomputeAchievements_FirstCourseUnlock(t *testing.T) {
	s := NewState("stu-1")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	unlocked := s.RecomputeAchievements(ProgressInputs{
		Snapshot: progress.Snapshot{EnrolledCount: 1},
		HonorGPA: 4.0,
	}, now)

	require.Len(t, unlocked, 1)
	assert.Equal(t, "first_course", unlocked[0].ID)

	ap := s.Achievements["first_course"]
	require.NotNil(t, ap)
	assert.True(t, ap.Unlocked)
	assert.Equal(t, now, ap.UnlockedAt)
	assert.Equal(t, 50, s.TotalXP, "unlock credits the template's point bonus")
}

func TestRecomputeAchievements_UnlockFiresOnce(t *testing.T) {
	s := NewState("stu-1")
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	in := ProgressInputs{Snapshot: progress.Snapshot{EnrolledCount: 1}, HonorGPA: 4.0}

	unlocked := s.RecomputeAchievements(in, first)
	require.Len(t, unlocked, 1)
	xpAfterFirst := s.TotalXP

	unlocked = s.RecomputeAchievements(in, later)
	assert.Empty(t, unlocked)
	assert.Equal(t, xpAfterFirst, s.TotalXP, "no double XP bonus")
	assert.Equal(t, first, s.Achievements["first_course"].UnlockedAt, "timestamp is set exactly once")
}

func TestRecomputeAchievements_ProgressIsMonotonic(t *testing.T) {
	s := NewState("stu-1")
	now := time.Now()

	s.RecomputeAchievements(ProgressInputs{
		Snapshot: progress.Snapshot{EnrolledCount: 3},
	}, now)
	assert.Equal(t, 3, s.Achievements["course_load_5"].Progress)

	// A recompute from a smaller snapshot never decrements stored progress.
	s.RecomputeAchievements(ProgressInputs{
		Snapshot: progress.Snapshot{EnrolledCount: 1},
	}, now)
	assert.Equal(t, 3, s.Achievements["course_load_5"].Progress)
}

func TestRecomputeAchievements_HonorRoll(t *testing.T) {
	s := NewState("stu-1")
	now := time.Now()

	s.RecomputeAchievements(ProgressInputs{
		Snapshot: progress.Snapshot{GPA: 3.9, CompletedCount: 1},
		HonorGPA: 4.0,
	}, now)
	assert.False(t, s.Achievements["honor_roll"].Unlocked)

	unlocked := s.RecomputeAchievements(ProgressInputs{
		Snapshot: progress.Snapshot{GPA: 4.2, CompletedCount: 1},
		HonorGPA: 4.0,
	}, now)

	ids := make([]string, 0, len(unlocked))
	for _, u := range unlocked {
		ids = append(ids, u.ID)
	}
	assert.Contains(t, ids, "honor_roll")
}

func TestRecomputeAchievements_StreakAndActivity(t *testing.T) {
	s := NewState("stu-1")
	now := time.Now()

	unlocked := s.RecomputeAchievements(ProgressInputs{
		BestStreak:    8,
		ActivityCount: 50,
	}, now)

	ids := make([]string, 0, len(unlocked))
	for _, u := range unlocked {
		ids = append(ids, u.ID)
	}
	assert.Contains(t, ids, "streak_7")
	assert.Contains(t, ids, "busy_bee_50")
	assert.NotContains(t, ids, "streak_30")
	assert.Equal(t, 8, s.Achievements["streak_30"].Progress)
}

func TestRecomputeAchievements_NilMapRecovers(t *testing.T) {
	// A state deserialized from an older payload may have a nil map.
	s := &State{StudentID: "stu-1"}

	unlocked := s.RecomputeAchievements(ProgressInputs{
		Snapshot: progress.Snapshot{EnrolledCount: 1},
	}, time.Now())

	require.Len(t, unlocked, 1)
	assert.NotNil(t, s.Achievements)
}

func TestTemplates_ReturnsCopy(t *testing.T) {
	a := Templates()
	a[0].Points = 9999

	b := Templates()
	assert.NotEqual(t, 9999, b[0].Points)
}
