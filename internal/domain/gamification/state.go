package gamification

import (
	"time"

	"github.com/gradehub/gradehub-core/internal/domain/record"
	"github.com/gradehub/gradehub-core/pkg/timeutil"
)

// XP awards per activity action. Unknown actions earn the base award.
const (
	XPBase            = 5
	XPCourseEnrolled  = 10
	XPGradeRecorded   = 25
	XPCourseCompleted = 50
)

// XPForAction returns the XP awarded for one qualifying activity action.
func XPForAction(action string) int {
	switch action {
	case "course_enrolled":
		return XPCourseEnrolled
	case "grade_recorded":
		return XPGradeRecorded
	case "course_completed":
		return XPCourseCompleted
	default:
		return XPBase
	}
}

// State is the gamification state of one student. It is created lazily on
// first access and never deleted. TotalXP is monotonically non-decreasing
// under normal operation.
type State struct {
	StudentID record.StudentID `json:"student_id"`

	TotalXP int `json:"total_xp"`

	// CurrentStreak counts consecutive calendar days with qualifying
	// activity. BestStreak is the historical maximum.
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`

	// LastActiveDate is the start of the last day with qualifying
	// activity, in UTC.
	LastActiveDate time.Time `json:"last_active_date"`

	// Achievements holds per-student instantiations of the achievement
	// templates, keyed by template ID.
	Achievements map[string]*AchievementProgress `json:"achievements"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates the initial state for a student.
func NewState(studentID record.StudentID) *State {
	now := time.Now().UTC()
	return &State{
		StudentID:    studentID,
		Achievements: make(map[string]*AchievementProgress),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AddXP credits XP. Negative deltas are ignored so the total never
// decreases. Returns the new total.
func (s *State) AddXP(delta int) int {
	if delta > 0 {
		s.TotalXP += delta
		s.UpdatedAt = time.Now().UTC()
	}
	return s.TotalXP
}

// Level returns the level row for the current XP total.
func (s *State) Level() Level {
	return LevelForXP(s.TotalXP)
}

// LevelProgress returns the clamped progress toward the next level.
func (s *State) LevelProgress() float64 {
	return ProgressToNext(s.TotalXP)
}

// RecordDailyActivity updates the streak for one qualifying activity.
// The streak increments once per distinct calendar day: further activity on
// the same day is a no-op, activity on the next day extends the streak, and
// the first activity after a gap of more than one day resets it to 1, not 0.
func (s *State) RecordDailyActivity(at time.Time) {
	day := timeutil.StartOfDay(at)

	if s.LastActiveDate.IsZero() {
		s.CurrentStreak = 1
		s.BestStreak = 1
		s.LastActiveDate = day
		s.UpdatedAt = time.Now().UTC()
		return
	}

	switch timeutil.DaysBetween(s.LastActiveDate, day) {
	case 0:
		return
	case 1:
		s.CurrentStreak++
		if s.CurrentStreak > s.BestStreak {
			s.BestStreak = s.CurrentStreak
		}
	default:
		s.CurrentStreak = 1
	}

	s.LastActiveDate = day
	s.UpdatedAt = time.Now().UTC()
}
