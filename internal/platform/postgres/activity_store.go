package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// PostgresActivityLogStore implements the store.ActivityLogStore interface
// using a PostgreSQL database as the storage backend. The table is
// append-only; this type exposes no update or delete.
type PostgresActivityLogStore struct {
	db store.DBTX
}

// NewPostgresActivityLogStore creates a new PostgreSQL implementation of
// the ActivityLogStore interface.
func NewPostgresActivityLogStore(db store.DBTX) *PostgresActivityLogStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	return &PostgresActivityLogStore{db: db}
}

// Ensure PostgresActivityLogStore implements store.ActivityLogStore interface
var _ store.ActivityLogStore = (*PostgresActivityLogStore)(nil)

// WithTx implements store.ActivityLogStore.WithTx
func (s *PostgresActivityLogStore) WithTx(tx *sql.Tx) store.ActivityLogStore {
	return &PostgresActivityLogStore{db: tx}
}

// Append implements store.ActivityLogStore.Append
func (s *PostgresActivityLogStore) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	query := `
		INSERT INTO task_activity_logs (id, task_id, user_id, action, field_name, old_value, new_value, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TaskID,
		entry.UserID,
		entry.Action,
		entry.FieldName,
		entry.OldValue,
		entry.NewValue,
		entry.Description,
		entry.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// ListByTask implements store.ActivityLogStore.ListByTask
func (s *PostgresActivityLogStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.ActivityLogEntry, error) {
	query := `
		SELECT l.id, l.task_id, l.user_id, l.action, l.field_name, l.old_value, l.new_value, l.description, l.created_at,
			COALESCE(u.username, 'system')
		FROM task_activity_logs l
		LEFT JOIN users u ON l.user_id = u.id
		WHERE l.task_id = $1
		ORDER BY l.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.ActivityLogEntry
	for rows.Next() {
		var e domain.ActivityLogEntry
		if err := rows.Scan(
			&e.ID,
			&e.TaskID,
			&e.UserID,
			&e.Action,
			&e.FieldName,
			&e.OldValue,
			&e.NewValue,
			&e.Description,
			&e.CreatedAt,
			&e.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity log rows: %w", err)
	}

	return entries, nil
}
