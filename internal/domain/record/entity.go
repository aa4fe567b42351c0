// Package record contains the domain model for academic records: the
// student directory, per-student course enrollments, and the legacy grade
// entry list kept for backward compatibility. It also defines the key
// layout and typed access helpers for the record store.
package record

import (
	"errors"
	"strings"
	"time"
)

// Domain errors for the record package.
var (
	ErrInvalidStudentID = errors.New("record: invalid student ID")
	ErrInvalidCourseID  = errors.New("record: invalid course ID")
	ErrInvalidRole      = errors.New("record: invalid role")
	ErrInvalidCredits   = errors.New("record: credits must be positive")
	ErrAlreadyEnrolled  = errors.New("record: student already enrolled in course")
)

// StudentID represents a unique identifier for a student.
type StudentID string

// IsValid checks if the student ID is valid.
func (s StudentID) IsValid() bool {
	return s != ""
}

// String returns the string representation of StudentID.
func (s StudentID) String() string {
	return string(s)
}

// CourseID represents a unique identifier for a course (e.g. "CS-101").
type CourseID string

// IsValid checks if the course ID is valid.
func (c CourseID) IsValid() bool {
	return c != ""
}

// String returns the string representation of CourseID.
func (c CourseID) String() string {
	return string(c)
}

// Role identifies which interface a directory entry belongs to.
type Role string

const (
	// RoleStudent - a student account; the only role that participates
	// in progress aggregation.
	RoleStudent Role = "student"
	// RoleAdvisor - an academic advisor account.
	RoleAdvisor Role = "advisor"
	// RoleAdmin - an administrator account.
	RoleAdmin Role = "admin"
)

// IsValid checks that the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleAdvisor, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParticipatesInAggregation returns true if records with this role are
// counted by the aggregate reporter.
func (r Role) ParticipatesInAggregation() bool {
	return r == RoleStudent
}

// Grade is a letter grade. The empty string means "no grade recorded".
type Grade string

// GradeNone is the absent grade.
const GradeNone Grade = ""

// IsEmpty returns true if no grade has been recorded.
func (g Grade) IsEmpty() bool {
	return strings.TrimSpace(string(g)) == ""
}

// String returns the string representation of the grade.
func (g Grade) String() string {
	return string(g)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT RECORD
// ══════════════════════════════════════════════════════════════════════════════

// StudentRecord is one entry in the global student directory. The identifier
// is immutable; profile fields are mutable. Records are never deleted by this
// layer - deletion is an external concern.
type StudentRecord struct {
	ID          StudentID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewStudentRecord creates a directory entry at account provisioning time.
func NewStudentRecord(id StudentID, displayName, email string, role Role) (*StudentRecord, error) {
	if !id.IsValid() {
		return nil, ErrInvalidStudentID
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()
	return &StudentRecord{
		ID:          id,
		DisplayName: displayName,
		Email:       email,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateProfile mutates the profile fields. The identifier never changes.
func (r *StudentRecord) UpdateProfile(displayName, email string) {
	if displayName != "" {
		r.DisplayName = displayName
	}
	if email != "" {
		r.Email = email
	}
	r.UpdatedAt = time.Now().UTC()
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE ENROLLMENT
// ══════════════════════════════════════════════════════════════════════════════

// CourseEnrollment binds one course to one student. Enrollments are never
// physically removed, only updated (soft state transitions only).
type CourseEnrollment struct {
	CourseID  CourseID  `json:"course_id"`
	StudentID StudentID `json:"student_id"`
	Title     string    `json:"title"`
	Credits   int       `json:"credits"`
	Grade     Grade     `json:"grade"`
	Completed bool      `json:"completed"`

	EnrolledAt time.Time `json:"enrolled_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCourseEnrollment creates an enrollment when a student adds a course.
func NewCourseEnrollment(studentID StudentID, courseID CourseID, title string, credits int) (*CourseEnrollment, error) {
	if !studentID.IsValid() {
		return nil, ErrInvalidStudentID
	}
	if !courseID.IsValid() {
		return nil, ErrInvalidCourseID
	}
	if credits <= 0 {
		return nil, ErrInvalidCredits
	}

	now := time.Now().UTC()
	return &CourseEnrollment{
		CourseID:   courseID,
		StudentID:  studentID,
		Title:      title,
		Credits:    credits,
		Grade:      GradeNone,
		Completed:  false,
		EnrolledAt: now,
		UpdatedAt:  now,
	}, nil
}

// RecordGrade sets the embedded grade and marks the course completed.
func (e *CourseEnrollment) RecordGrade(g Grade) {
	e.Grade = g
	e.Completed = !g.IsEmpty()
	e.UpdatedAt = time.Now().UTC()
}

// CreditWeight returns the credit weight used for derived metrics.
// Malformed (non-positive) credit values count as zero, never as an error.
func (e CourseEnrollment) CreditWeight() int {
	if e.Credits < 0 {
		return 0
	}
	return e.Credits
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE ENTRY (legacy secondary location)
// ══════════════════════════════════════════════════════════════════════════════

// GradeEntry is the legacy secondary grade location: a standalone
// (student, course) -> grade mapping that predates the embedded grade field.
// The embedded grade takes precedence during reconciliation; a grade entry
// can complete a course, but never a course that the embedded grade already
// completed.
type GradeEntry struct {
	StudentID  StudentID `json:"student_id"`
	CourseID   CourseID  `json:"course_id"`
	Grade      Grade     `json:"grade"`
	RecordedAt time.Time `json:"recorded_at"`
}

// EffectiveGrade resolves the grade used for completion and GPA purposes:
// the embedded grade if non-empty, otherwise the first matching non-empty
// grade entry, otherwise GradeNone. Matching is per enrollment and the first
// entry wins, so duplicate entries for the same course can never make a
// course count twice.
func EffectiveGrade(e CourseEnrollment, entries []GradeEntry) Grade {
	if !e.Grade.IsEmpty() {
		return e.Grade
	}
	for _, entry := range entries {
		if entry.StudentID == e.StudentID && entry.CourseID == e.CourseID && !entry.Grade.IsEmpty() {
			return entry.Grade
		}
	}
	return GradeNone
}
