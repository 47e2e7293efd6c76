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

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db store.DBTX
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of
// the NotificationStore interface.
func NewPostgresNotificationStore(db store.DBTX) *PostgresNotificationStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	return &PostgresNotificationStore{db: db}
}

// Ensure PostgresNotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// WithTx implements store.NotificationStore.WithTx
func (s *PostgresNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &PostgresNotificationStore{db: tx}
}

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, task_id, sender_id, type, title, message, is_read, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		notification.ID,
		notification.RecipientID,
		notification.TaskID,
		notification.SenderID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.IsRead,
		notification.ReadAt,
		notification.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

const notificationColumns = `n.id, n.recipient_id, n.task_id, n.sender_id, n.type, n.title, n.message, n.is_read, n.read_at, n.created_at,
		COALESCE(s.username, ''), COALESCE(t.title, '')`

const notificationJoins = `
		FROM notifications n
		LEFT JOIN users s ON n.sender_id = s.id
		LEFT JOIN tasks t ON n.task_id = t.id`

// ListByRecipient implements store.NotificationStore.ListByRecipient
func (s *PostgresNotificationStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + notificationJoins + `
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.db.QueryContext(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var notifications []*domain.Notification
	for rows.Next() {
		notification, err := scanNotificationRow(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return notifications, nil
}

// CountUnread implements store.NotificationStore.CountUnread
func (s *PostgresNotificationStore) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`

	var count int
	if err := s.db.QueryRowContext(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// GetByID implements store.NotificationStore.GetByID
func (s *PostgresNotificationStore) GetByID(ctx context.Context, id, recipientID uuid.UUID) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + notificationJoins + `
		WHERE n.id = $1 AND n.recipient_id = $2`

	notification, err := scanNotificationRow(s.db.QueryRowContext(ctx, query, id, recipientID))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrNotificationNotFound
		}
		return nil, err
	}
	return notification, nil
}

// MarkRead implements store.NotificationStore.MarkRead
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $1
		WHERE id = $2 AND recipient_id = $3
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id, recipientID)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrNotificationNotFound)
}

// MarkAllRead implements store.NotificationStore.MarkAllRead
func (s *PostgresNotificationStore) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $1
		WHERE recipient_id = $2 AND is_read = FALSE
	`

	// Zero rows affected just means nothing was unread.
	_, err := s.db.ExecContext(ctx, query, time.Now().UTC(), recipientID)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// Delete implements store.NotificationStore.Delete
func (s *PostgresNotificationStore) Delete(ctx context.Context, id, recipientID uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrNotificationNotFound)
}

func scanNotificationRow(row scanner) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.TaskID,
		&n.SenderID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
		&n.SenderUsername,
		&n.TaskTitle,
	)
	if err != nil {
		return nil, MapError(err)
	}
	return &n, nil
}
