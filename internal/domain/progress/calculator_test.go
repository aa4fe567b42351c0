package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gradehub/gradehub-core/internal/domain/record"
)

func enrollment(course record.CourseID, credits int, grade record.Grade) record.CourseEnrollment {
	return record.CourseEnrollment{
		StudentID: "stu-1",
		CourseID:  course,
		Credits:   credits,
		Grade:     grade,
		Completed: !grade.IsEmpty(),
	}
}

func TestCompute_CreditWeightedGPA(t *testing.T) {
	// A (5 pts) over 3 credits and B (4 pts) over 4 credits:
	// (5*3 + 4*4) / 7 = 31/7 ≈ 4.43 on the five-point scale.
	enrollments := []record.CourseEnrollment{
		enrollment("CS-101", 3, "A"),
		enrollment("MATH-201", 4, "B"),
	}

	snap := Compute("stu-1", enrollments, nil, record.ScaleFivePoint)

	assert.Equal(t, 2, snap.CompletedCount)
	assert.Equal(t, 0, snap.EnrolledCount)
	assert.Equal(t, 7, snap.CreditsEarned)
	assert.InDelta(t, 31.0/7.0, snap.GPA, 1e-9)
}

func TestCompute_EnrolledVersusCompleted(t *testing.T) {
	enrollments := []record.CourseEnrollment{
		enrollment("CS-101", 3, "A"),
		enrollment("MATH-201", 4, record.GradeNone),
	}

	snap := Compute("stu-1", enrollments, nil, record.ScaleFivePoint)

	assert.Equal(t, 1, snap.CompletedCount)
	assert.Equal(t, 1, snap.EnrolledCount)
	assert.Equal(t, 3, snap.CreditsEarned)
	assert.InDelta(t, 5.0, snap.GPA, 1e-9)
}

func TestCompute_LegacyEntryFillsInMissingGrade(t *testing.T) {
	enrollments := []record.CourseEnrollment{
		enrollment("CS-101", 3, record.GradeNone),
	}
	entries := []record.GradeEntry{
		{StudentID: "stu-1", CourseID: "CS-101", Grade: "B"},
	}

	snap := Compute("stu-1", enrollments, entries, record.ScaleFivePoint)

	assert.Equal(t, 1, snap.CompletedCount)
	assert.Equal(t, 0, snap.EnrolledCount)
	assert.InDelta(t, 4.0, snap.GPA, 1e-9)
}

func TestCompute_DuplicateEntriesNeverDoubleCount(t *testing.T) {
	enrollments := []record.CourseEnrollment{
		enrollment("CS-101", 3, record.GradeNone),
	}
	entries := []record.GradeEntry{
		{StudentID: "stu-1", CourseID: "CS-101", Grade: "A"},
		{StudentID: "stu-1", CourseID: "CS-101", Grade: "C"},
		{StudentID: "stu-1", CourseID: "CS-101", Grade: "F"},
	}

	snap := Compute("stu-1", enrollments, entries, record.ScaleFivePoint)

	assert.Equal(t, 1, snap.CompletedCount)
	assert.Equal(t, 3, snap.CreditsEarned)
	assert.InDelta(t, 5.0, snap.GPA, 1e-9, "first matching entry wins")
}

func TestCompute_EmbeddedGradeBeatsEntry(t *testing.T) {
	enrollments := []record.CourseEnrollment{
		enrollment("CS-101", 3, "A"),
	}
	entries := []record.GradeEntry{
		{StudentID: "stu-1", CourseID: "CS-101", Grade: "F"},
	}

	snap := Compute("stu-1", enrollments, entries, record.ScaleFivePoint)

	assert.Equal(t, 1, snap.CompletedCount)
	assert.InDelta(t, 5.0, snap.GPA, 1e-9)
}

func TestCompute_FailingGradeStillEarnsCredits(t *testing.T) {
	enrollments := []record.CourseEnrollment{
		enrollment("CS-101", 3, "F"),
	}

	snap := Compute("stu-1", enrollments, nil, record.ScaleFivePoint)

	assert.Equal(t, 1, snap.CompletedCount)
	assert.Equal(t, 3, snap.CreditsEarned)
	assert.Equal(t, 0.0, snap.GPA)
}

func TestCompute_MalformedCreditsCountAsZero(t *testing.T) {
	enrollments := []record.CourseEnrollment{
		enrollment("CS-101", -5, "A"),
		enrollment("MATH-201", 4, "B"),
	}

	snap := Compute("stu-1", enrollments, nil, record.ScaleFivePoint)

	assert.Equal(t, 2, snap.CompletedCount)
	assert.Equal(t, 4, snap.CreditsEarned)
	// The zero-weight course contributes nothing to either side of the ratio.
	assert.InDelta(t, 4.0, snap.GPA, 1e-9)
}

func TestCompute_UnmappedGradeCompletesButSkipsGPA(t *testing.T) {
	enrollments := []record.CourseEnrollment{
		enrollment("CS-101", 3, "PASS"),
	}

	snap := Compute("stu-1", enrollments, nil, record.ScaleFivePoint)

	assert.Equal(t, 1, snap.CompletedCount)
	assert.Equal(t, 3, snap.CreditsEarned)
	assert.Equal(t, 0.0, snap.GPA)
}

func TestCompute_Idempotent(t *testing.T) {
	enrollments := []record.CourseEnrollment{
		enrollment("CS-101", 3, "A"),
		enrollment("MATH-201", 4, record.GradeNone),
	}
	entries := []record.GradeEntry{
		{StudentID: "stu-1", CourseID: "MATH-201", Grade: "C"},
	}

	first := Compute("stu-1", enrollments, entries, record.ScaleFivePoint)
	second := Compute("stu-1", enrollments, entries, record.ScaleFivePoint)

	assert.Equal(t, first, second)
}

func TestCompute_NoCourses(t *testing.T) {
	snap := Compute("stu-1", nil, nil, record.ScaleFivePoint)

	assert.Zero(t, snap.CompletedCount)
	assert.Zero(t, snap.EnrolledCount)
	assert.Zero(t, snap.CreditsEarned)
	assert.Zero(t, snap.GPA)
}
