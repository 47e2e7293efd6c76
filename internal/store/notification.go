package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
// All reads and mutations are scoped to a recipient: a user can only see
// and act on their own notifications.
type NotificationStore interface {
	// Create inserts a notification row.
	Create(ctx context.Context, notification *domain.Notification) error

	// ListByRecipient returns the recipient's notifications, newest first,
	// with sender username and task title joined. limit and offset page
	// the result.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*domain.Notification, error)

	// CountUnread returns the recipient's unread notification count.
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)

	// GetByID retrieves one of the recipient's notifications.
	// Returns ErrNotificationNotFound if it does not exist or belongs to
	// someone else.
	GetByID(ctx context.Context, id, recipientID uuid.UUID) (*domain.Notification, error)

	// MarkRead marks one of the recipient's notifications as read.
	// Returns ErrNotificationNotFound if it does not exist or belongs to
	// someone else.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error

	// MarkAllRead marks all of the recipient's unread notifications as read.
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) error

	// Delete removes one of the recipient's notifications.
	// Returns ErrNotificationNotFound if it does not exist or belongs to
	// someone else.
	Delete(ctx context.Context, id, recipientID uuid.UUID) error

	// WithTx returns a new NotificationStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}
