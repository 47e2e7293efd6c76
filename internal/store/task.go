package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
)

// TaskStore defines the interface for task and observer persistence.
type TaskStore interface {
	// Create saves a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with creator/assignee usernames joined.
	// Observers are not populated; use ListObservers.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByProject returns the project's tasks ordered by priority
	// (critical first) then due date (soonest first).
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error)

	// ListByAssignee returns tasks assigned to the user, same ordering
	// as ListByProject.
	ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*domain.Task, error)

	// Update persists the task's mutable fields (title, description,
	// assignee, status, priority, due date, overdue flag) in a single
	// statement. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// AddObserver inserts an observer row.
	// Returns ErrObserverExists if the user is already observing the task.
	AddObserver(ctx context.Context, observer *domain.TaskObserver) error

	// RemoveObserver deletes an observer row.
	// Returns ErrObserverNotFound if no such observer exists.
	RemoveObserver(ctx context.Context, taskID, userID uuid.UUID) error

	// ListObservers returns the task's observers with usernames joined.
	ListObservers(ctx context.Context, taskID uuid.UUID) ([]domain.TaskObserver, error)

	// ListOverdueCandidates returns tasks that are not yet flagged overdue,
	// are in a non-terminal status, and whose due date is strictly before
	// now. Used by the overdue sweep.
	ListOverdueCandidates(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// MarkOverdue sets the task's overdue flag.
	// Returns ErrTaskNotFound if the task does not exist.
	MarkOverdue(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TaskStore
}
