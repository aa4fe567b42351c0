// Package command contains write operations (CQRS - Commands). Every
// handler persists through the record store contract, so each committed
// write publishes exactly one change notification.
package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gradehub/gradehub-core/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Adds or updates an entry in the global student directory. Provisioning
// itself happens outside the core; this records the result of it.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the data for a directory entry.
type RegisterStudentCommand struct {
	StudentID   record.StudentID
	DisplayName string
	Email       string
	Role        record.Role
}

// Validate validates the command.
func (c RegisterStudentCommand) Validate() error {
	if !c.StudentID.IsValid() {
		return record.ErrInvalidStudentID
	}
	if !c.Role.IsValid() {
		return record.ErrInvalidRole
	}
	return nil
}

// RegisterStudentResult contains the result of registering a student.
type RegisterStudentResult struct {
	StudentID record.StudentID
	Created   bool
}

// RegisterStudentHandler handles directory registration.
type RegisterStudentHandler struct {
	store  record.Store
	logger *slog.Logger
}

// NewRegisterStudentHandler creates the handler.
func NewRegisterStudentHandler(store record.Store, logger *slog.Logger) *RegisterStudentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterStudentHandler{store: store, logger: logger}
}

// Handle adds the record to the directory, or updates the mutable profile
// fields of an existing one. The identifier is immutable and entries are
// never removed here.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (RegisterStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return RegisterStudentResult{}, err
	}

	directory := record.GetOrDefault(ctx, h.store, record.KeyDirectory, []record.StudentRecord{}, h.logger)

	for i := range directory {
		if directory[i].ID == cmd.StudentID {
			if directory[i].Role != cmd.Role {
				return RegisterStudentResult{}, errors.New("command: role of an existing directory entry cannot change")
			}
			directory[i].UpdateProfile(cmd.DisplayName, cmd.Email)
			if err := record.SetJSON(ctx, h.store, record.KeyDirectory, directory); err != nil {
				return RegisterStudentResult{}, err
			}
			return RegisterStudentResult{StudentID: cmd.StudentID, Created: false}, nil
		}
	}

	entry, err := record.NewStudentRecord(cmd.StudentID, cmd.DisplayName, cmd.Email, cmd.Role)
	if err != nil {
		return RegisterStudentResult{}, err
	}
	directory = append(directory, *entry)

	if err := record.SetJSON(ctx, h.store, record.KeyDirectory, directory); err != nil {
		return RegisterStudentResult{}, err
	}

	h.logger.Info("student registered", "student_id", cmd.StudentID, "role", cmd.Role)
	return RegisterStudentResult{StudentID: cmd.StudentID, Created: true}, nil
}
