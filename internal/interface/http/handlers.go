package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gradehub/gradehub-core/internal/application/command"
	"github.com/gradehub/gradehub-core/internal/application/query"
	"github.com/gradehub/gradehub-core/internal/domain/activity"
	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// Handlers bundles the command and query handlers behind the REST surface.
type Handlers struct {
	RegisterStudentCmd *command.RegisterStudentHandler
	EnrollCourseCmd    *command.EnrollCourseHandler
	RecordGradeCmd     *command.RecordGradeHandler
	LogActivityCmd     *command.LogActivityHandler

	ProgressQry        *query.GetProgressHandler
	SystemStatsQry     *query.GetSystemStatsHandler
	ActivitySummaryQry *query.GetActivitySummaryHandler
	GamificationQry    *query.GetGamificationHandler

	Logger *slog.Logger
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// RegisterStudent adds or updates a directory entry.
func (h *Handlers) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Role        string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.RegisterStudentCmd.Handle(r.Context(), command.RegisterStudentCommand{
		StudentID:   record.StudentID(req.ID),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        record.Role(req.Role),
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// EnrollCourse adds a course to the student's list.
func (h *Handlers) EnrollCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID string `json:"course_id"`
		Title    string `json:"title"`
		Credits  int    `json:"credits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.EnrollCourseCmd.Handle(r.Context(), command.EnrollCourseCommand{
		StudentID: record.StudentID(r.PathValue("id")),
		CourseID:  record.CourseID(req.CourseID),
		Title:     req.Title,
		Credits:   req.Credits,
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// RecordGrade records a grade for an enrolled course.
func (h *Handlers) RecordGrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID string `json:"course_id"`
		Grade    string `json:"grade"`
		Legacy   bool   `json:"legacy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.RecordGradeCmd.Handle(r.Context(), command.RecordGradeCommand{
		StudentID: record.StudentID(r.PathValue("id")),
		CourseID:  record.CourseID(req.CourseID),
		Grade:     record.Grade(req.Grade),
		Legacy:    req.Legacy,
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// LogActivity appends an entry to the activity log.
func (h *Handlers) LogActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action      string            `json:"action"`
		Description string            `json:"description"`
		Metadata    map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.LogActivityCmd.Handle(r.Context(), command.LogActivityCommand{
		StudentID:   record.StudentID(r.PathValue("id")),
		Action:      req.Action,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetProgress returns the student's recomputed progress snapshot.
func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ProgressQry.Handle(r.Context(), query.GetProgressQuery{
		StudentID: record.StudentID(r.PathValue("id")),
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetActivitySummary returns the student's activity summary.
func (h *Handlers) GetActivitySummary(w http.ResponseWriter, r *http.Request) {
	view, err := h.ActivitySummaryQry.Handle(r.Context(), query.GetActivitySummaryQuery{
		StudentID: record.StudentID(r.PathValue("id")),
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetGamification returns the student's gamification state.
func (h *Handlers) GetGamification(w http.ResponseWriter, r *http.Request) {
	view, err := h.GamificationQry.Handle(r.Context(), query.GetGamificationQuery{
		StudentID: record.StudentID(r.PathValue("id")),
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetSystemStats returns system-wide statistics.
func (h *Handlers) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.SystemStatsQry.Handle(r.Context())
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeCommandError maps domain errors onto HTTP statuses. Validation
// failures are the caller's fault; anything else is a storage-side failure
// the caller may retry.
func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, record.ErrAlreadyEnrolled):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, command.ErrNotEnrolled):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, record.ErrInvalidStudentID),
		errors.Is(err, record.ErrInvalidCourseID),
		errors.Is(err, record.ErrInvalidCredits),
		errors.Is(err, record.ErrInvalidRole),
		errors.Is(err, activity.ErrInvalidStudentID),
		errors.Is(err, activity.ErrInvalidAction),
		errors.Is(err, command.ErrEmptyGrade):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
