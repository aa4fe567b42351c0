package gamification

import (
	"time"

	"github.com/gradehub/gradehub-core/internal/domain/progress"
)

// AchievementCategory groups templates for presentation.
type AchievementCategory string

const (
	CategoryCourses AchievementCategory = "courses"
	CategoryGrades  AchievementCategory = "grades"
	CategoryCredits AchievementCategory = "credits"
	CategoryStreak  AchievementCategory = "streak"
	CategoryActive  AchievementCategory = "activity"
)

// AchievementTemplate is the static definition of an achievement. It is
// instantiated per student as an AchievementProgress that tracks mutable
// progress toward MaxProgress.
type AchievementTemplate struct {
	ID          string              `json:"id"`
	Category    AchievementCategory `json:"category"`
	Title       string              `json:"title"`
	Description string              `json:"description"`

	// Points is the XP bonus credited when the achievement unlocks.
	Points int `json:"points"`

	// MaxProgress is the threshold at which the achievement unlocks.
	MaxProgress int `json:"max_progress"`
}

// templates is the fixed achievement catalog.
var templates = []AchievementTemplate{
	{ID: "first_course", Category: CategoryCourses, Title: "First Steps",
		Description: "Enroll in your first course", Points: 50, MaxProgress: 1},
	{ID: "course_load_5", Category: CategoryCourses, Title: "Full Schedule",
		Description: "Enroll in five courses", Points: 100, MaxProgress: 5},
	{ID: "first_grade", Category: CategoryGrades, Title: "On the Board",
		Description: "Complete your first graded course", Points: 50, MaxProgress: 1},
	{ID: "honor_roll", Category: CategoryGrades, Title: "Honor Roll",
		Description: "Hold a GPA of 4.0 or above", Points: 200, MaxProgress: 1},
	{ID: "credits_30", Category: CategoryCredits, Title: "Thirty Credits",
		Description: "Earn thirty credits", Points: 150, MaxProgress: 30},
	{ID: "streak_7", Category: CategoryStreak, Title: "Week Streak",
		Description: "Stay active seven days in a row", Points: 100, MaxProgress: 7},
	{ID: "streak_30", Category: CategoryStreak, Title: "Month Streak",
		Description: "Stay active thirty days in a row", Points: 300, MaxProgress: 30},
	{ID: "busy_bee_50", Category: CategoryActive, Title: "Busy Bee",
		Description: "Log fifty activities", Points: 100, MaxProgress: 50},
}

// Templates returns a copy of the achievement catalog.
func Templates() []AchievementTemplate {
	out := make([]AchievementTemplate, len(templates))
	copy(out, templates)
	return out
}

// AchievementProgress is the per-student instantiation of a template.
// UnlockedAt is set exactly once, on the transition from
// progress < MaxProgress to progress >= MaxProgress.
type AchievementProgress struct {
	ID         string    `json:"id"`
	Progress   int       `json:"progress"`
	Unlocked   bool      `json:"unlocked"`
	UnlockedAt time.Time `json:"unlocked_at,omitempty"`
}

// ProgressInputs carries everything achievement progress is recomputed
// from: the current progress snapshot plus activity-derived counters.
type ProgressInputs struct {
	Snapshot      progress.Snapshot
	ActivityCount int
	BestStreak    int

	// HonorGPA is the GPA threshold for the honor_roll achievement,
	// expressed on the canonical scale.
	HonorGPA float64
}

// progressFrom maps inputs to the current raw progress for this template.
func (t AchievementTemplate) progressFrom(in ProgressInputs) int {
	switch t.ID {
	case "first_course", "course_load_5":
		return in.Snapshot.CompletedCount + in.Snapshot.EnrolledCount
	case "first_grade":
		return in.Snapshot.CompletedCount
	case "honor_roll":
		if in.Snapshot.GPA >= in.HonorGPA && in.HonorGPA > 0 {
			return 1
		}
		return 0
	case "credits_30":
		return in.Snapshot.CreditsEarned
	case "streak_7", "streak_30":
		return in.BestStreak
	case "busy_bee_50":
		return in.ActivityCount
	default:
		return 0
	}
}

// RecomputeAchievements re-derives every achievement's progress from the
// inputs and fires unlock transitions. Progress is never decremented: a
// recompute that yields a lower value leaves the stored progress in place.
// The unlock transition is idempotent - recomputing an already-unlocked
// achievement neither re-fires it nor changes its stored timestamp.
//
// Newly unlocked templates are returned and their point values credited to
// TotalXP.
func (s *State) RecomputeAchievements(in ProgressInputs, now time.Time) []AchievementTemplate {
	if s.Achievements == nil {
		s.Achievements = make(map[string]*AchievementProgress)
	}

	var unlocked []AchievementTemplate
	for _, t := range templates {
		ap, ok := s.Achievements[t.ID]
		if !ok {
			ap = &AchievementProgress{ID: t.ID}
			s.Achievements[t.ID] = ap
		}

		if p := t.progressFrom(in); p > ap.Progress {
			ap.Progress = p
		}

		if !ap.Unlocked && ap.Progress >= t.MaxProgress {
			ap.Unlocked = true
			ap.UnlockedAt = now.UTC()
			s.AddXP(t.Points)
			unlocked = append(unlocked, t)
		}
	}

	if len(unlocked) > 0 {
		s.UpdatedAt = time.Now().UTC()
	}
	return unlocked
}
