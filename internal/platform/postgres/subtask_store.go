package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// PostgresSubtaskStore implements the store.SubtaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSubtaskStore struct {
	db store.DBTX
}

// NewPostgresSubtaskStore creates a new PostgreSQL implementation of the
// SubtaskStore interface.
func NewPostgresSubtaskStore(db store.DBTX) *PostgresSubtaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	return &PostgresSubtaskStore{db: db}
}

// Ensure PostgresSubtaskStore implements store.SubtaskStore interface
var _ store.SubtaskStore = (*PostgresSubtaskStore)(nil)

// WithTx implements store.SubtaskStore.WithTx
func (s *PostgresSubtaskStore) WithTx(tx *sql.Tx) store.SubtaskStore {
	return &PostgresSubtaskStore{db: tx}
}

// Create implements store.SubtaskStore.Create
func (s *PostgresSubtaskStore) Create(ctx context.Context, subtask *domain.Subtask) error {
	if err := subtask.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO subtasks (id, task_id, title, description, assignee_id, priority, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		subtask.ID,
		subtask.TaskID,
		subtask.Title,
		subtask.Description,
		subtask.AssigneeID,
		subtask.Priority,
		subtask.Status,
		subtask.DueDate,
		subtask.CreatedAt,
		subtask.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

const subtaskColumns = `s.id, s.task_id, s.title, s.description, s.assignee_id, s.priority, s.status, s.due_date, s.created_at, s.updated_at,
		COALESCE(a.username, '')`

// GetByID implements store.SubtaskStore.GetByID
func (s *PostgresSubtaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtask, error) {
	query := `
		SELECT ` + subtaskColumns + `
		FROM subtasks s
		LEFT JOIN users a ON s.assignee_id = a.id
		WHERE s.id = $1
	`

	subtask, err := scanSubtaskRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrSubtaskNotFound
		}
		return nil, err
	}
	return subtask, nil
}

// ListByTask implements store.SubtaskStore.ListByTask
func (s *PostgresSubtaskStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Subtask, error) {
	query := `
		SELECT ` + subtaskColumns + `
		FROM subtasks s
		LEFT JOIN users a ON s.assignee_id = a.id
		WHERE s.task_id = $1
		ORDER BY CASE s.priority
			WHEN 'critical' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			ELSE 3
		END ASC, s.due_date ASC NULLS LAST
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var subtasks []*domain.Subtask
	for rows.Next() {
		subtask, err := scanSubtaskRow(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, subtask)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subtask rows: %w", err)
	}

	return subtasks, nil
}

// Update implements store.SubtaskStore.Update
func (s *PostgresSubtaskStore) Update(ctx context.Context, subtask *domain.Subtask) error {
	if err := subtask.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE subtasks
		SET title = $1, description = $2, assignee_id = $3, status = $4, priority = $5, due_date = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(ctx, query,
		subtask.Title,
		subtask.Description,
		subtask.AssigneeID,
		subtask.Status,
		subtask.Priority,
		subtask.DueDate,
		time.Now().UTC(),
		subtask.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrSubtaskNotFound)
}

// Delete implements store.SubtaskStore.Delete
func (s *PostgresSubtaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrSubtaskNotFound)
}

func scanSubtaskRow(row scanner) (*domain.Subtask, error) {
	var st domain.Subtask
	err := row.Scan(
		&st.ID,
		&st.TaskID,
		&st.Title,
		&st.Description,
		&st.AssigneeID,
		&st.Priority,
		&st.Status,
		&st.DueDate,
		&st.CreatedAt,
		&st.UpdatedAt,
		&st.AssigneeUsername,
	)
	if err != nil {
		return nil, MapError(err)
	}
	return &st, nil
}
