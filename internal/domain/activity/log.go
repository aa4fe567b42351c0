// Package activity contains the append-only activity log: every
// student-initiated action, consumed by the gamification engine and by
// advisor-facing views. The log is global with bounded retention.
package activity

import (
	"errors"
	"sort"
	"time"

	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// Domain errors for the activity package.
var (
	ErrInvalidStudentID = errors.New("activity: invalid student ID")
	ErrInvalidAction    = errors.New("activity: action cannot be empty")
)

// MaxEntries is the global retention cap across all students. Once the log
// exceeds it, the oldest entries are evicted first.
const MaxEntries = 1000

// RecentLimit is how many entries an activity summary returns.
const RecentLimit = 20

// Well-known action tags. The log accepts arbitrary tags; these are the
// ones the core itself emits.
const (
	ActionLogin           = "login"
	ActionCourseEnrolled  = "course_enrolled"
	ActionGradeRecorded   = "grade_recorded"
	ActionCourseCompleted = "course_completed"
	ActionProfileUpdated  = "profile_updated"
)

// Entry is one append-only activity record.
type Entry struct {
	ID          string            `json:"id"`
	StudentID   record.StudentID  `json:"student_id"`
	Action      string            `json:"action"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewEntry validates and builds an entry. The caller supplies the ID so the
// domain layer stays free of ID-generation dependencies.
func NewEntry(id string, studentID record.StudentID, action, description string, metadata map[string]string, at time.Time) (Entry, error) {
	if !studentID.IsValid() {
		return Entry{}, ErrInvalidStudentID
	}
	if action == "" {
		return Entry{}, ErrInvalidAction
	}

	return Entry{
		ID:          id,
		StudentID:   studentID,
		Action:      action,
		Description: description,
		Metadata:    metadata,
		Timestamp:   at.UTC(),
	}, nil
}

// Log is the persisted global activity list, oldest first. Insertion order
// is authoritative for tie-breaking because timestamps share millisecond
// resolution under load.
type Log struct {
	Entries []Entry `json:"entries"`
}

// Append adds an entry and enforces the retention cap, evicting oldest
// first.
func (l *Log) Append(e Entry) {
	l.Entries = append(l.Entries, e)
	if excess := len(l.Entries) - MaxEntries; excess > 0 {
		l.Entries = append([]Entry(nil), l.Entries[excess:]...)
	}
}

// CountFor returns the number of retained entries for a student.
func (l *Log) CountFor(studentID record.StudentID) int {
	n := 0
	for _, e := range l.Entries {
		if e.StudentID == studentID {
			n++
		}
	}
	return n
}

// Summary is the derived per-student activity view.
type Summary struct {
	StudentID      record.StudentID `json:"student_id"`
	TotalCount     int              `json:"total_count"`
	CountsByAction map[string]int   `json:"counts_by_action"`

	// Recent holds the most recent entries, newest first.
	Recent []Entry `json:"recent"`
}

// SummaryFor folds the log into a per-student summary: counts by action tag
// plus the RecentLimit most recent entries sorted by timestamp descending,
// ties broken by insertion order (later insertions first).
func (l *Log) SummaryFor(studentID record.StudentID) Summary {
	s := Summary{
		StudentID:      studentID,
		CountsByAction: make(map[string]int),
	}

	var mine []Entry
	for _, e := range l.Entries {
		if e.StudentID != studentID {
			continue
		}
		s.TotalCount++
		s.CountsByAction[e.Action]++
		mine = append(mine, e)
	}

	// Reverse insertion order, then a stable sort by timestamp keeps
	// later insertions ahead of earlier ones within the same instant.
	for i, j := 0, len(mine)-1; i < j; i, j = i+1, j-1 {
		mine[i], mine[j] = mine[j], mine[i]
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].Timestamp.After(mine[j].Timestamp)
	})

	if len(mine) > RecentLimit {
		mine = mine[:RecentLimit]
	}
	s.Recent = mine

	return s
}
