package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
)

// SubtaskStore defines the interface for subtask persistence.
type SubtaskStore interface {
	// Create saves a new subtask.
	Create(ctx context.Context, subtask *domain.Subtask) error

	// GetByID retrieves a subtask with the assignee's username joined.
	// Returns ErrSubtaskNotFound if the subtask does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtask, error)

	// ListByTask returns the task's subtasks ordered by priority then
	// due date.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Subtask, error)

	// Update persists the subtask's mutable fields in a single statement.
	// Returns ErrSubtaskNotFound if the subtask does not exist.
	Update(ctx context.Context, subtask *domain.Subtask) error

	// Delete removes a subtask.
	// Returns ErrSubtaskNotFound if the subtask does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new SubtaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) SubtaskStore
}
