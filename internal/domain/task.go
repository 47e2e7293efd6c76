package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskPriority orders tasks within a project listing.
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// Valid reports whether the priority is one of the known levels.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the known task states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status ends the task's lifecycle.
// Terminal tasks are skipped by the overdue sweep.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

var (
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle = errors.New("task title cannot be empty")
	ErrEmptyCreator   = errors.New("task creator cannot be empty")
)

// Task is a unit of work within a project. The creator is immutable;
// the assignee, priority, status and due date change over its lifetime.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssigneeID  *uuid.UUID   `json:"assignee_id,omitempty"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	IsOverdue   bool         `json:"is_overdue"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Read-side projections joined from the users table.
	CreatorUsername  string `json:"creator_username,omitempty"`
	AssigneeUsername string `json:"assignee_username,omitempty"`

	// Observers is populated on single-task reads only.
	Observers []TaskObserver `json:"observers,omitempty"`
}

// NewTask creates a new open Task in projectID created by creatorID.
// Priority defaults to medium when empty.
func NewTask(projectID uuid.UUID, title, description string, assigneeID *uuid.UUID, creatorID uuid.UUID, priority TaskPriority, dueDate *time.Time) (*Task, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		AssigneeID:  assigneeID,
		CreatedBy:   creatorID,
		Priority:    priority,
		Status:      TaskStatusOpen,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.ProjectID == uuid.Nil {
		return ErrEmptyProjectID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if t.CreatedBy == uuid.Nil {
		return ErrEmptyCreator
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// TaskObserver is a user watching a task for awareness, not ownership.
// The (task, user) pair is unique.
type TaskObserver struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// NewTaskObserver creates an observer row for userID on taskID.
func NewTaskObserver(taskID, userID uuid.UUID) *TaskObserver {
	return &TaskObserver{
		ID:        uuid.New(),
		TaskID:    taskID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}
