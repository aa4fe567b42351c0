package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gradehub/gradehub-core/internal/domain/activity"
	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL COURSE COMMAND
// Adds a course to a student's course list. Enrollments are append-only;
// an existing enrollment for the same course is rejected, never replaced.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollCourseCommand contains the data to enroll a student in a course.
type EnrollCourseCommand struct {
	StudentID record.StudentID
	CourseID  record.CourseID
	Title     string
	Credits   int
}

// Validate validates the command.
func (c EnrollCourseCommand) Validate() error {
	if !c.StudentID.IsValid() {
		return record.ErrInvalidStudentID
	}
	if !c.CourseID.IsValid() {
		return record.ErrInvalidCourseID
	}
	if c.Credits <= 0 {
		return record.ErrInvalidCredits
	}
	return nil
}

// EnrollCourseResult contains the result of an enrollment.
type EnrollCourseResult struct {
	StudentID   record.StudentID
	CourseID    record.CourseID
	CourseCount int
}

// EnrollCourseHandler handles course enrollment.
type EnrollCourseHandler struct {
	store    record.Store
	activity *LogActivityHandler
	engine   *RecordActivityHandler
	logger   *slog.Logger
}

// NewEnrollCourseHandler creates the handler. The activity and engine
// handlers are optional follow-ups: a nil handler skips that step.
func NewEnrollCourseHandler(store record.Store, activityHandler *LogActivityHandler, engine *RecordActivityHandler, logger *slog.Logger) *EnrollCourseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrollCourseHandler{
		store:    store,
		activity: activityHandler,
		engine:   engine,
		logger:   logger,
	}
}

// Handle persists the enrollment, then logs the action and feeds the
// gamification engine. The follow-ups are best effort: the enrollment is
// already durably stored, so their failure is logged, not surfaced.
func (h *EnrollCourseHandler) Handle(ctx context.Context, cmd EnrollCourseCommand) (EnrollCourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return EnrollCourseResult{}, err
	}

	key := record.CoursesKey(cmd.StudentID)
	courses := record.GetOrDefault(ctx, h.store, key, []record.CourseEnrollment{}, h.logger)

	for _, c := range courses {
		if c.CourseID == cmd.CourseID {
			return EnrollCourseResult{}, fmt.Errorf("%w: %s", record.ErrAlreadyEnrolled, cmd.CourseID)
		}
	}

	enrollment, err := record.NewCourseEnrollment(cmd.StudentID, cmd.CourseID, cmd.Title, cmd.Credits)
	if err != nil {
		return EnrollCourseResult{}, err
	}
	courses = append(courses, *enrollment)

	if err := record.SetJSON(ctx, h.store, key, courses); err != nil {
		return EnrollCourseResult{}, err
	}

	h.followUp(ctx, cmd)

	return EnrollCourseResult{
		StudentID:   cmd.StudentID,
		CourseID:    cmd.CourseID,
		CourseCount: len(courses),
	}, nil
}

func (h *EnrollCourseHandler) followUp(ctx context.Context, cmd EnrollCourseCommand) {
	if h.activity != nil {
		_, err := h.activity.Handle(ctx, LogActivityCommand{
			StudentID:   cmd.StudentID,
			Action:      activity.ActionCourseEnrolled,
			Description: fmt.Sprintf("Enrolled in %s", cmd.CourseID),
			Metadata:    map[string]string{"course_id": cmd.CourseID.String()},
		})
		if err != nil {
			h.logger.Error("enrollment activity log failed", "student_id", cmd.StudentID, "error", err)
		}
	}
	if h.engine != nil {
		_, err := h.engine.Handle(ctx, RecordActivityCommand{
			StudentID: cmd.StudentID,
			Action:    activity.ActionCourseEnrolled,
		})
		if err != nil {
			h.logger.Error("enrollment gamification update failed", "student_id", cmd.StudentID, "error", err)
		}
	}
}
