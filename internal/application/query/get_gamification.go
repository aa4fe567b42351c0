package query

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/gradehub/gradehub-core/internal/domain/gamification"
	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GAMIFICATION QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetGamificationQuery identifies the student.
type GetGamificationQuery struct {
	StudentID record.StudentID
}

// AchievementView joins a template with the student's progress against it.
type AchievementView struct {
	gamification.AchievementTemplate
	Progress   int    `json:"progress"`
	Unlocked   bool   `json:"unlocked"`
	UnlockedAt string `json:"unlocked_at,omitempty"`
}

// GamificationView is the dashboard-facing gamification state.
type GamificationView struct {
	StudentID     record.StudentID   `json:"student_id"`
	TotalXP       int                `json:"total_xp"`
	Level         gamification.Level `json:"level"`
	LevelProgress float64            `json:"level_progress"`
	CurrentStreak int                `json:"current_streak"`
	BestStreak    int                `json:"best_streak"`
	Achievements  []AchievementView  `json:"achievements"`
}

// GetGamificationHandler reads a student's gamification state.
type GetGamificationHandler struct {
	store  record.Store
	logger *slog.Logger
}

// NewGetGamificationHandler creates the handler.
func NewGetGamificationHandler(store record.Store, logger *slog.Logger) *GetGamificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetGamificationHandler{store: store, logger: logger}
}

// Handle returns the stored state, or a fresh zero state for a student the
// engine has never run for. Reading never persists anything: state creation
// happens lazily on the first update, not the first view.
func (h *GetGamificationHandler) Handle(ctx context.Context, q GetGamificationQuery) (GamificationView, error) {
	if !q.StudentID.IsValid() {
		return GamificationView{}, record.ErrInvalidStudentID
	}

	states := record.GetOrDefault(ctx, h.store, record.KeyGamificationStates,
		map[record.StudentID]*gamification.State{}, h.logger)

	state, ok := states[q.StudentID]
	if !ok {
		state = gamification.NewState(q.StudentID)
	}

	view := GamificationView{
		StudentID:     q.StudentID,
		TotalXP:       state.TotalXP,
		Level:         state.Level(),
		LevelProgress: state.LevelProgress(),
		CurrentStreak: state.CurrentStreak,
		BestStreak:    state.BestStreak,
	}

	for _, t := range gamification.Templates() {
		av := AchievementView{AchievementTemplate: t}
		if ap, ok := state.Achievements[t.ID]; ok {
			av.Progress = ap.Progress
			av.Unlocked = ap.Unlocked
			if ap.Unlocked {
				av.UnlockedAt = ap.UnlockedAt.Format(time.RFC3339)
			}
		}
		view.Achievements = append(view.Achievements, av)
	}
	sort.Slice(view.Achievements, func(i, j int) bool {
		return view.Achievements[i].ID < view.Achievements[j].ID
	})

	return view, nil
}
