package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SubtaskStatus is the workflow state of a subtask. Subtasks have a
// narrower state set than tasks: they cannot be cancelled and carry no
// overdue tracking.
type SubtaskStatus string

const (
	SubtaskStatusOpen       SubtaskStatus = "open"
	SubtaskStatusInProgress SubtaskStatus = "in_progress"
	SubtaskStatusCompleted  SubtaskStatus = "completed"
)

// Valid reports whether the status is one of the known subtask states.
func (s SubtaskStatus) Valid() bool {
	switch s {
	case SubtaskStatusOpen, SubtaskStatusInProgress, SubtaskStatusCompleted:
		return true
	}
	return false
}

var (
	ErrEmptySubtaskID    = errors.New("subtask ID cannot be empty")
	ErrEmptySubtaskTitle = errors.New("subtask title cannot be empty")
)

// Subtask is a child work item of a single task. It mirrors the task's
// priority/assignee/due-date shape but produces no notifications.
type Subtask struct {
	ID          uuid.UUID     `json:"id"`
	TaskID      uuid.UUID     `json:"task_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	AssigneeID  *uuid.UUID    `json:"assignee_id,omitempty"`
	Priority    TaskPriority  `json:"priority"`
	Status      SubtaskStatus `json:"status"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	AssigneeUsername string `json:"assignee_username,omitempty"`
}

// NewSubtask creates a new open Subtask under taskID.
// Priority defaults to medium when empty.
func NewSubtask(taskID uuid.UUID, title, description string, assigneeID *uuid.UUID, priority TaskPriority, dueDate *time.Time) (*Subtask, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	subtask := &Subtask{
		ID:          uuid.New(),
		TaskID:      taskID,
		Title:       title,
		Description: description,
		AssigneeID:  assigneeID,
		Priority:    priority,
		Status:      SubtaskStatusOpen,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := subtask.Validate(); err != nil {
		return nil, err
	}

	return subtask, nil
}

// Validate checks if the Subtask has valid data.
func (s *Subtask) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySubtaskID
	}
	if s.TaskID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if s.Title == "" {
		return ErrEmptySubtaskTitle
	}
	if !s.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !s.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
