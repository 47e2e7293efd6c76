package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// ActivityRecorder appends to and reads the task activity log.
type ActivityRecorder interface {
	// Record appends one entry. fieldName/oldValue/newValue and description
	// may be empty for actions without a field-level diff.
	Record(ctx context.Context, taskID, actorID uuid.UUID, action domain.ActivityAction, fieldName, oldValue, newValue, description string) error

	// ListByTask returns the task's entries, newest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.ActivityLogEntry, error)
}

type activityRecorder struct {
	store store.ActivityLogStore
}

// NewActivityRecorder creates an ActivityRecorder over the given store.
func NewActivityRecorder(s store.ActivityLogStore) ActivityRecorder {
	return &activityRecorder{store: s}
}

func (r *activityRecorder) Record(ctx context.Context, taskID, actorID uuid.UUID, action domain.ActivityAction, fieldName, oldValue, newValue, description string) error {
	entry := domain.NewActivityLogEntry(taskID, actorID, action, fieldName, oldValue, newValue, description)
	if err := r.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append activity log entry: %w", err)
	}
	return nil
}

func (r *activityRecorder) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.ActivityLogEntry, error) {
	entries, err := r.store.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log entries: %w", err)
	}
	return entries, nil
}
