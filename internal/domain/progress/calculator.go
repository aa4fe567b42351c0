// Package progress derives per-student progress snapshots from raw course
// and grade records. Snapshots are never stored: they are recomputed from
// the record store on every read, so there is no cached derived state to
// invalidate.
package progress

import (
	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// Snapshot is the derived view of one student's academic progress.
type Snapshot struct {
	StudentID record.StudentID `json:"student_id"`

	// CreditsEarned is the sum of credit weights of completed courses.
	// "Earned" here means "graded", not "passed": a failing grade still
	// contributes its credit weight under current semantics.
	CreditsEarned int `json:"credits_earned"`

	// CompletedCount is the number of courses with a resolvable
	// effective grade.
	CompletedCount int `json:"completed_count"`

	// EnrolledCount is the number of courses still without one.
	EnrolledCount int `json:"enrolled_count"`

	// GPA is credit-weighted over completed courses, 0 when no course
	// has a grade with a point mapping.
	GPA float64 `json:"gpa"`
}

// Compute reconciles a student's enrollments with the legacy grade entry
// list and folds them into a snapshot. It is a pure function: identical
// inputs always yield identical snapshots.
//
// Reconciliation follows the precedence rule: the embedded grade wins, a
// matching grade entry fills in only when the embedded grade is empty, and
// each enrollment resolves to at most one effective grade. A course can
// therefore never be counted as completed twice, no matter how many
// duplicate grade entries exist for it.
func Compute(studentID record.StudentID, enrollments []record.CourseEnrollment, entries []record.GradeEntry, scale record.GradeScale) Snapshot {
	snap := Snapshot{StudentID: studentID}

	var weightedPoints float64
	var gradedCredits int

	for _, e := range enrollments {
		grade := record.EffectiveGrade(e, entries)
		if grade.IsEmpty() {
			snap.EnrolledCount++
			continue
		}

		snap.CompletedCount++
		snap.CreditsEarned += e.CreditWeight()

		if pts, ok := scale.Points(grade); ok {
			weightedPoints += pts * float64(e.CreditWeight())
			gradedCredits += e.CreditWeight()
		}
	}

	if gradedCredits > 0 {
		snap.GPA = weightedPoints / float64(gradedCredits)
	}

	return snap
}
