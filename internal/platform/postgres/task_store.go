package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/platform/logger"
	"github.com/phrazzld/tracker-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	return &PostgresTaskStore{db: db}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, project_id, title, description, assignee_id, created_by, priority, status, due_date, is_overdue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.AssigneeID,
		task.CreatedBy,
		task.Priority,
		task.Status,
		task.DueDate,
		task.IsOverdue,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			"task_id", task.ID,
			"project_id", task.ProjectID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// taskColumns selects the task row plus creator/assignee username
// projections. priorityOrder sorts critical before low.
const (
	taskColumns = `t.id, t.project_id, t.title, t.description, t.assignee_id, t.created_by, t.priority, t.status, t.due_date, t.is_overdue, t.created_at, t.updated_at,
		u.username, COALESCE(a.username, '')`

	taskJoins = `
		FROM tasks t
		JOIN users u ON t.created_by = u.id
		LEFT JOIN users a ON t.assignee_id = a.id`

	priorityOrder = `CASE t.priority
		WHEN 'critical' THEN 0
		WHEN 'high' THEN 1
		WHEN 'medium' THEN 2
		ELSE 3
	END`
)

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins + ` WHERE t.id = $1`

	task, err := scanTaskRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListByProject implements store.TaskStore.ListByProject
func (s *PostgresTaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins + `
		WHERE t.project_id = $1
		ORDER BY ` + priorityOrder + ` ASC, t.due_date ASC NULLS LAST`

	return s.queryTasks(ctx, query, projectID)
}

// ListByAssignee implements store.TaskStore.ListByAssignee
func (s *PostgresTaskStore) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins + `
		WHERE t.assignee_id = $1
		ORDER BY ` + priorityOrder + ` ASC, t.due_date ASC NULLS LAST`

	return s.queryTasks(ctx, query, assigneeID)
}

// Update implements store.TaskStore.Update
// The creator and project are immutable and deliberately absent from the
// statement.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, assignee_id = $3, status = $4, priority = $5, due_date = $6, is_overdue = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.AssigneeID,
		task.Status,
		task.Priority,
		task.DueDate,
		task.IsOverdue,
		time.Now().UTC(),
		task.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// AddObserver implements store.TaskStore.AddObserver
func (s *PostgresTaskStore) AddObserver(ctx context.Context, observer *domain.TaskObserver) error {
	query := `
		INSERT INTO task_observers (id, task_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		observer.ID,
		observer.TaskID,
		observer.UserID,
		observer.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrObserverExists
		}
		return MapError(err)
	}

	return nil
}

// RemoveObserver implements store.TaskStore.RemoveObserver
func (s *PostgresTaskStore) RemoveObserver(ctx context.Context, taskID, userID uuid.UUID) error {
	query := `DELETE FROM task_observers WHERE task_id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrObserverNotFound)
}

// ListObservers implements store.TaskStore.ListObservers
func (s *PostgresTaskStore) ListObservers(ctx context.Context, taskID uuid.UUID) ([]domain.TaskObserver, error) {
	query := `
		SELECT o.id, o.task_id, o.user_id, o.created_at, u.username, u.email
		FROM task_observers o
		JOIN users u ON o.user_id = u.id
		WHERE o.task_id = $1
		ORDER BY o.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	// Empty slice, not nil: single-task reads embed this directly.
	observers := []domain.TaskObserver{}
	for rows.Next() {
		var o domain.TaskObserver
		if err := rows.Scan(&o.ID, &o.TaskID, &o.UserID, &o.CreatedAt, &o.Username, &o.Email); err != nil {
			return nil, fmt.Errorf("failed to scan observer row: %w", err)
		}
		observers = append(observers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating observer rows: %w", err)
	}

	return observers, nil
}

// ListOverdueCandidates implements store.TaskStore.ListOverdueCandidates
func (s *PostgresTaskStore) ListOverdueCandidates(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins + `
		WHERE t.is_overdue = FALSE
		  AND t.status NOT IN ('completed', 'cancelled')
		  AND t.due_date IS NOT NULL
		  AND t.due_date < $1
		ORDER BY t.due_date ASC`

	return s.queryTasks(ctx, query, now)
}

// MarkOverdue implements store.TaskStore.MarkOverdue
func (s *PostgresTaskStore) MarkOverdue(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tasks SET is_overdue = TRUE, updated_at = $1 WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrTaskNotFound)
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

func scanTaskRow(row scanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.AssigneeID,
		&t.CreatedBy,
		&t.Priority,
		&t.Status,
		&t.DueDate,
		&t.IsOverdue,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CreatorUsername,
		&t.AssigneeUsername,
	)
	if err != nil {
		return nil, MapError(err)
	}
	return &t, nil
}
