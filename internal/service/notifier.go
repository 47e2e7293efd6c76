package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// Notifier dispatches task-event notifications. Every method follows the
// same shape: re-read the task (a vanished task is a silent no-op),
// resolve the recipient (a nil recipient is a no-op), format a message and
// insert one notification row. Methods return errors for the caller to
// log; callers must not let these errors fail the primary operation.
type Notifier interface {
	// TaskAssigned notifies assigneeID that actorID assigned them taskID.
	TaskAssigned(ctx context.Context, taskID, assigneeID, actorID uuid.UUID) error

	// StatusChanged notifies recipientID (the task's assignee as of the
	// change) of a status transition made by actorID.
	StatusChanged(ctx context.Context, taskID uuid.UUID, recipientID *uuid.UUID, actorID uuid.UUID, oldStatus, newStatus domain.TaskStatus) error

	// DueDateChanged notifies recipientID (the task's assignee as of the
	// change) of a due-date move made by actorID.
	DueDateChanged(ctx context.Context, taskID uuid.UUID, recipientID *uuid.UUID, actorID uuid.UUID, oldDue, newDue *time.Time) error

	// ObserverAdded notifies observerID that actorID added them as an
	// observer of taskID.
	ObserverAdded(ctx context.Context, taskID, observerID, actorID uuid.UUID) error
}

// taskNotifier implements Notifier against the notification store.
type taskNotifier struct {
	taskStore         store.TaskStore
	notificationStore store.NotificationStore
	logger            *slog.Logger
}

// NewNotifier creates a Notifier backed by the given stores.
func NewNotifier(taskStore store.TaskStore, notificationStore store.NotificationStore, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &taskNotifier{
		taskStore:         taskStore,
		notificationStore: notificationStore,
		logger:            logger.With(slog.String("component", "notifier")),
	}
}

// TaskAssigned implements Notifier.TaskAssigned.
func (n *taskNotifier) TaskAssigned(ctx context.Context, taskID, assigneeID, actorID uuid.UUID) error {
	task, ok, err := n.loadTask(ctx, taskID)
	if err != nil || !ok {
		return err
	}

	return n.create(ctx, assigneeID, taskID, actorID,
		domain.NotificationTaskAssigned,
		"Task Assigned",
		fmt.Sprintf("You have been assigned to task: %s", task.Title))
}

// StatusChanged implements Notifier.StatusChanged.
func (n *taskNotifier) StatusChanged(ctx context.Context, taskID uuid.UUID, recipientID *uuid.UUID, actorID uuid.UUID, oldStatus, newStatus domain.TaskStatus) error {
	if recipientID == nil {
		return nil
	}

	task, ok, err := n.loadTask(ctx, taskID)
	if err != nil || !ok {
		return err
	}

	return n.create(ctx, *recipientID, taskID, actorID,
		domain.NotificationStatusChanged,
		"Task Status Updated",
		fmt.Sprintf("Task %q status changed from %s to %s", task.Title, oldStatus, newStatus))
}

// DueDateChanged implements Notifier.DueDateChanged.
func (n *taskNotifier) DueDateChanged(ctx context.Context, taskID uuid.UUID, recipientID *uuid.UUID, actorID uuid.UUID, oldDue, newDue *time.Time) error {
	if recipientID == nil {
		return nil
	}

	task, ok, err := n.loadTask(ctx, taskID)
	if err != nil || !ok {
		return err
	}

	return n.create(ctx, *recipientID, taskID, actorID,
		domain.NotificationDueDateChanged,
		"Task Due Date Updated",
		fmt.Sprintf("Task %q due date changed from %s to %s",
			task.Title, formatDueDate(oldDue), formatDueDate(newDue)))
}

// ObserverAdded implements Notifier.ObserverAdded.
func (n *taskNotifier) ObserverAdded(ctx context.Context, taskID, observerID, actorID uuid.UUID) error {
	task, ok, err := n.loadTask(ctx, taskID)
	if err != nil || !ok {
		return err
	}

	return n.create(ctx, observerID, taskID, actorID,
		domain.NotificationObserverAdded,
		"Added as Observer",
		fmt.Sprintf("You have been added as observer to task: %s", task.Title))
}

// loadTask re-reads the task. ok is false when the task no longer exists,
// which callers treat as a silent no-op.
func (n *taskNotifier) loadTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, bool, error) {
	task, err := n.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			n.logger.Debug("skipping notification for missing task",
				slog.String("task_id", taskID.String()))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load task for notification: %w", err)
	}
	return task, true, nil
}

func (n *taskNotifier) create(ctx context.Context, recipientID, taskID, senderID uuid.UUID, typ domain.NotificationType, title, message string) error {
	notification, err := domain.NewNotification(recipientID, taskID, senderID, typ, title, message)
	if err != nil {
		return fmt.Errorf("failed to build notification: %w", err)
	}

	if err := n.notificationStore.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	return nil
}

func formatDueDate(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.UTC().Format("2006-01-02")
}
