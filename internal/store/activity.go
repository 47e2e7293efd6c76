package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
)

// ActivityLogStore defines the interface for the append-only task activity
// log. Entries are immutable: there is deliberately no update or delete.
type ActivityLogStore interface {
	// Append inserts one activity-log entry.
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error

	// ListByTask returns the task's activity log, newest first, with the
	// acting user's username joined.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.ActivityLogEntry, error)

	// WithTx returns a new ActivityLogStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) ActivityLogStore
}
