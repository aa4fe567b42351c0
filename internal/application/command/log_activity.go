package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gradehub/gradehub-core/internal/domain/activity"
	"github.com/gradehub/gradehub-core/internal/domain/record"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// ══════════════════════════════════════════════════════════════════════════════
// LOG ACTIVITY COMMAND
// Appends one entry to the global activity log, enforcing the retention
// cap with oldest-first eviction.
// ══════════════════════════════════════════════════════════════════════════════

// LogActivityCommand contains the data for one activity entry.
type LogActivityCommand struct {
	StudentID   record.StudentID
	Action      string
	Description string
	Metadata    map[string]string

	// Timestamp defaults to now if zero.
	Timestamp time.Time
}

// Validate validates the command.
func (c LogActivityCommand) Validate() error {
	if !c.StudentID.IsValid() {
		return activity.ErrInvalidStudentID
	}
	if c.Action == "" {
		return activity.ErrInvalidAction
	}
	return nil
}

// LogActivityResult contains the result of logging an activity.
type LogActivityResult struct {
	EntryID    string
	TotalCount int
	Evicted    int
}

// LogActivityHandler handles activity logging.
type LogActivityHandler struct {
	store  record.Store
	logger *slog.Logger
}

// NewLogActivityHandler creates the handler.
func NewLogActivityHandler(store record.Store, logger *slog.Logger) *LogActivityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogActivityHandler{store: store, logger: logger}
}

// Handle appends the entry and persists the log.
func (h *LogActivityHandler) Handle(ctx context.Context, cmd LogActivityCommand) (LogActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return LogActivityResult{}, err
	}

	at := cmd.Timestamp
	if at.IsZero() {
		at = nowUTC()
	}

	entry, err := activity.NewEntry(uuid.NewString(), cmd.StudentID, cmd.Action, cmd.Description, cmd.Metadata, at)
	if err != nil {
		return LogActivityResult{}, err
	}

	log := record.GetOrDefault(ctx, h.store, record.KeyActivityLog, activity.Log{}, h.logger)
	before := len(log.Entries)
	log.Append(entry)

	if err := record.SetJSON(ctx, h.store, record.KeyActivityLog, log); err != nil {
		return LogActivityResult{}, err
	}

	evicted := before + 1 - len(log.Entries)
	return LogActivityResult{
		EntryID:    entry.ID,
		TotalCount: len(log.Entries),
		Evicted:    evicted,
	}, nil
}
