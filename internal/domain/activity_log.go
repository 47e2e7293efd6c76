package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityAction tags the kind of change recorded in a task's activity log.
type ActivityAction string

const (
	ActivityCreated         ActivityAction = "created"
	ActivityAssigned        ActivityAction = "assigned"
	ActivityStatusChanged   ActivityAction = "status_changed"
	ActivityDueDateChanged  ActivityAction = "due_date_changed"
	ActivityObserverAdded   ActivityAction = "observer_added"
	ActivityObserverRemoved ActivityAction = "observer_removed"
	ActivityMarkedOverdue   ActivityAction = "marked_overdue"
)

// ActivityLogEntry is one immutable record of a task field change.
// Entries are append-only: the store exposes no update or delete for them.
type ActivityLogEntry struct {
	ID          uuid.UUID      `json:"id"`
	TaskID      uuid.UUID      `json:"task_id"`
	UserID      uuid.UUID      `json:"user_id"`
	Action      ActivityAction `json:"action"`
	FieldName   string         `json:"field_name,omitempty"`
	OldValue    string         `json:"old_value,omitempty"`
	NewValue    string         `json:"new_value,omitempty"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`

	Username string `json:"username,omitempty"`
}

// NewActivityLogEntry creates a log entry for action on taskID by actorID.
// fieldName/oldValue/newValue and description may be empty for actions
// that don't record a field-level diff.
func NewActivityLogEntry(taskID, actorID uuid.UUID, action ActivityAction, fieldName, oldValue, newValue, description string) *ActivityLogEntry {
	return &ActivityLogEntry{
		ID:          uuid.New(),
		TaskID:      taskID,
		UserID:      actorID,
		Action:      action,
		FieldName:   fieldName,
		OldValue:    oldValue,
		NewValue:    newValue,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
