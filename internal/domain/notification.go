package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NotificationType tags the task event a notification was produced for.
type NotificationType string

const (
	NotificationTaskAssigned   NotificationType = "task_assigned"
	NotificationStatusChanged  NotificationType = "status_changed"
	NotificationDueDateChanged NotificationType = "due_date_changed"
	NotificationObserverAdded  NotificationType = "observer_added"
)

var (
	ErrEmptyNotificationID = errors.New("notification ID cannot be empty")
	ErrEmptyRecipient      = errors.New("notification recipient cannot be empty")
)

// Notification is a recipient-addressed message about a task event.
// It references a task but is independent of the task's lifecycle:
// notifications are deleted only by explicit recipient action.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	TaskID      uuid.UUID        `json:"task_id"`
	SenderID    uuid.UUID        `json:"sender_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"is_read"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`

	SenderUsername string `json:"sender_username,omitempty"`
	TaskTitle      string `json:"task_title,omitempty"`
}

// NewNotification creates an unread notification addressed to recipientID.
func NewNotification(recipientID, taskID, senderID uuid.UUID, typ NotificationType, title, message string) (*Notification, error) {
	if recipientID == uuid.Nil {
		return nil, ErrEmptyRecipient
	}

	return &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		TaskID:      taskID,
		SenderID:    senderID,
		Type:        typ,
		Title:       title,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
