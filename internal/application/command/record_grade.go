package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gradehub/gradehub-core/internal/domain/activity"
	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// Command errors for grade recording.
var (
	// ErrNotEnrolled is returned when grading a course the student never added.
	ErrNotEnrolled = errors.New("command: student is not enrolled in course")

	// ErrEmptyGrade is returned when recording an empty grade.
	ErrEmptyGrade = errors.New("command: grade cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD GRADE COMMAND
// Records a grade for an enrolled course. The embedded grade field is the
// primary location; the legacy grade entry list remains writable so data
// recorded by older tooling keeps flowing through the same reconciliation.
// ══════════════════════════════════════════════════════════════════════════════

// RecordGradeCommand contains the data to record a grade.
type RecordGradeCommand struct {
	StudentID record.StudentID
	CourseID  record.CourseID
	Grade     record.Grade

	// Legacy writes the grade to the legacy grade entry list instead of
	// the enrollment's embedded field.
	Legacy bool
}

// Validate validates the command.
func (c RecordGradeCommand) Validate() error {
	if !c.StudentID.IsValid() {
		return record.ErrInvalidStudentID
	}
	if !c.CourseID.IsValid() {
		return record.ErrInvalidCourseID
	}
	if c.Grade.IsEmpty() {
		return ErrEmptyGrade
	}
	return nil
}

// RecordGradeResult contains the result of recording a grade.
type RecordGradeResult struct {
	StudentID record.StudentID
	CourseID  record.CourseID
	Grade     record.Grade
	Legacy    bool
}

// RecordGradeHandler handles grade recording.
type RecordGradeHandler struct {
	store    record.Store
	activity *LogActivityHandler
	engine   *RecordActivityHandler
	logger   *slog.Logger
}

// NewRecordGradeHandler creates the handler. The activity and engine
// handlers are optional follow-ups.
func NewRecordGradeHandler(store record.Store, activityHandler *LogActivityHandler, engine *RecordActivityHandler, logger *slog.Logger) *RecordGradeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordGradeHandler{
		store:    store,
		activity: activityHandler,
		engine:   engine,
		logger:   logger,
	}
}

// Handle records the grade in the requested location. Either location makes
// the course complete under reconciliation; the embedded field wins when
// both carry a grade.
func (h *RecordGradeHandler) Handle(ctx context.Context, cmd RecordGradeCommand) (RecordGradeResult, error) {
	if err := cmd.Validate(); err != nil {
		return RecordGradeResult{}, err
	}

	var err error
	if cmd.Legacy {
		err = h.recordLegacy(ctx, cmd)
	} else {
		err = h.recordEmbedded(ctx, cmd)
	}
	if err != nil {
		return RecordGradeResult{}, err
	}

	h.followUp(ctx, cmd)

	return RecordGradeResult{
		StudentID: cmd.StudentID,
		CourseID:  cmd.CourseID,
		Grade:     cmd.Grade,
		Legacy:    cmd.Legacy,
	}, nil
}

func (h *RecordGradeHandler) recordEmbedded(ctx context.Context, cmd RecordGradeCommand) error {
	key := record.CoursesKey(cmd.StudentID)
	courses := record.GetOrDefault(ctx, h.store, key, []record.CourseEnrollment{}, h.logger)

	for i := range courses {
		if courses[i].CourseID == cmd.CourseID {
			courses[i].RecordGrade(cmd.Grade)
			return record.SetJSON(ctx, h.store, key, courses)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotEnrolled, cmd.CourseID)
}

func (h *RecordGradeHandler) recordLegacy(ctx context.Context, cmd RecordGradeCommand) error {
	entries := record.GetOrDefault(ctx, h.store, record.KeyGradeEntries, []record.GradeEntry{}, h.logger)

	// One entry per (student, course): an existing entry is updated in
	// place so the legacy list never accumulates duplicates that the
	// precedence rule would have to paper over.
	updated := false
	for i := range entries {
		if entries[i].StudentID == cmd.StudentID && entries[i].CourseID == cmd.CourseID {
			entries[i].Grade = cmd.Grade
			updated = true
			break
		}
	}
	if !updated {
		entries = append(entries, record.GradeEntry{
			StudentID:  cmd.StudentID,
			CourseID:   cmd.CourseID,
			Grade:      cmd.Grade,
			RecordedAt: nowUTC(),
		})
	}

	return record.SetJSON(ctx, h.store, record.KeyGradeEntries, entries)
}

func (h *RecordGradeHandler) followUp(ctx context.Context, cmd RecordGradeCommand) {
	if h.activity != nil {
		_, err := h.activity.Handle(ctx, LogActivityCommand{
			StudentID:   cmd.StudentID,
			Action:      activity.ActionGradeRecorded,
			Description: fmt.Sprintf("Grade %s recorded for %s", cmd.Grade, cmd.CourseID),
			Metadata: map[string]string{
				"course_id": cmd.CourseID.String(),
				"grade":     cmd.Grade.String(),
			},
		})
		if err != nil {
			h.logger.Error("grade activity log failed", "student_id", cmd.StudentID, "error", err)
		}
	}
	if h.engine != nil {
		_, err := h.engine.Handle(ctx, RecordActivityCommand{
			StudentID: cmd.StudentID,
			Action:    activity.ActionGradeRecorded,
		})
		if err != nil {
			h.logger.Error("grade gamification update failed", "student_id", cmd.StudentID, "error", err)
		}
	}
}
