package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/gradehub/gradehub-core/internal/domain/activity"
	"github.com/gradehub/gradehub-core/internal/domain/gamification"
	"github.com/gradehub/gradehub-core/internal/domain/progress"
	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// HonorRollGPA is the threshold for the honor_roll achievement on the
// canonical five-point scale.
const HonorRollGPA = 4.0

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ACTIVITY COMMAND (gamification engine)
// Runs the gamification state machine for one qualifying action: award XP,
// advance the streak, recompute achievement progress, and persist the
// state map through the record store contract so the update participates
// in the notify-on-write guarantee.
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivityCommand contains the data for one qualifying action.
type RecordActivityCommand struct {
	StudentID record.StudentID
	Action    string

	// Timestamp defaults to now if zero.
	Timestamp time.Time
}

// Validate validates the command.
func (c RecordActivityCommand) Validate() error {
	if !c.StudentID.IsValid() {
		return record.ErrInvalidStudentID
	}
	if c.Action == "" {
		return activity.ErrInvalidAction
	}
	return nil
}

// RecordActivityResult contains the outcome of one engine run.
type RecordActivityResult struct {
	StudentID     record.StudentID
	TotalXP       int
	Level         gamification.Level
	LevelProgress float64
	CurrentStreak int
	BestStreak    int

	// Unlocked lists achievements that transitioned to unlocked during
	// this run.
	Unlocked []gamification.AchievementTemplate
}

// RecordActivityHandler runs the gamification engine.
type RecordActivityHandler struct {
	store  record.Store
	scale  record.GradeScale
	logger *slog.Logger
}

// NewRecordActivityHandler creates the handler.
func NewRecordActivityHandler(store record.Store, scale record.GradeScale, logger *slog.Logger) *RecordActivityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordActivityHandler{store: store, scale: scale, logger: logger}
}

// Handle updates the student's gamification state. The state is created
// lazily on first access and every change is written back through the
// record store.
func (h *RecordActivityHandler) Handle(ctx context.Context, cmd RecordActivityCommand) (RecordActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return RecordActivityResult{}, err
	}

	at := cmd.Timestamp
	if at.IsZero() {
		at = nowUTC()
	}

	states := record.GetOrDefault(ctx, h.store, record.KeyGamificationStates,
		map[record.StudentID]*gamification.State{}, h.logger)

	state, ok := states[cmd.StudentID]
	if !ok {
		state = gamification.NewState(cmd.StudentID)
		states[cmd.StudentID] = state
	}

	state.AddXP(gamification.XPForAction(cmd.Action))
	state.RecordDailyActivity(at)

	unlocked := state.RecomputeAchievements(h.progressInputs(ctx, cmd.StudentID, state), at)
	for _, t := range unlocked {
		h.logger.Info("achievement unlocked",
			"student_id", cmd.StudentID,
			"achievement", t.ID,
			"points", t.Points,
		)
	}

	if err := record.SetJSON(ctx, h.store, record.KeyGamificationStates, states); err != nil {
		return RecordActivityResult{}, err
	}

	return RecordActivityResult{
		StudentID:     cmd.StudentID,
		TotalXP:       state.TotalXP,
		Level:         state.Level(),
		LevelProgress: state.LevelProgress(),
		CurrentStreak: state.CurrentStreak,
		BestStreak:    state.BestStreak,
		Unlocked:      unlocked,
	}, nil
}

// progressInputs gathers everything achievement progress derives from. All
// reads go through the store accessors and fail soft to empty.
func (h *RecordActivityHandler) progressInputs(ctx context.Context, studentID record.StudentID, state *gamification.State) gamification.ProgressInputs {
	courses := record.GetOrDefault(ctx, h.store, record.CoursesKey(studentID), []record.CourseEnrollment{}, h.logger)
	entries := record.GetOrDefault(ctx, h.store, record.KeyGradeEntries, []record.GradeEntry{}, h.logger)
	log := record.GetOrDefault(ctx, h.store, record.KeyActivityLog, activity.Log{}, h.logger)

	return gamification.ProgressInputs{
		Snapshot:      progress.Compute(studentID, courses, entries, h.scale),
		ActivityCount: log.CountFor(studentID),
		BestStreak:    state.BestStreak,
		HonorGPA:      HonorRollGPA,
	}
}
