package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Defaults(t *testing.T) {
	projectID := uuid.New()
	creatorID := uuid.New()

	task, err := NewTask(projectID, "Ship the release", "", nil, creatorID, "", nil)
	require.NoError(t, err)

	assert.Equal(t, projectID, task.ProjectID)
	assert.Equal(t, creatorID, task.CreatedBy)
	assert.Equal(t, TaskPriorityMedium, task.Priority)
	assert.Equal(t, TaskStatusOpen, task.Status)
	assert.False(t, task.IsOverdue)
	assert.Nil(t, task.AssigneeID)
}

func TestNewTask_WithAssigneeAndDueDate(t *testing.T) {
	assigneeID := uuid.New()
	due := time.Now().UTC().Add(48 * time.Hour)

	task, err := NewTask(uuid.New(), "Write docs", "API reference", &assigneeID, uuid.New(), TaskPriorityHigh, &due)
	require.NoError(t, err)

	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, assigneeID, *task.AssigneeID)
	assert.Equal(t, TaskPriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, due, *task.DueDate)
}

func TestNewTask_Invalid(t *testing.T) {
	_, err := NewTask(uuid.New(), "", "", nil, uuid.New(), TaskPriorityLow, nil)
	assert.ErrorIs(t, err, ErrEmptyTaskTitle)

	_, err = NewTask(uuid.Nil, "Title", "", nil, uuid.New(), TaskPriorityLow, nil)
	assert.ErrorIs(t, err, ErrEmptyProjectID)

	_, err = NewTask(uuid.New(), "Title", "", nil, uuid.Nil, TaskPriorityLow, nil)
	assert.ErrorIs(t, err, ErrEmptyCreator)

	_, err = NewTask(uuid.New(), "Title", "", nil, uuid.New(), TaskPriority("urgent"), nil)
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestTaskStatusTerminal(t *testing.T) {
	assert.True(t, TaskStatusCompleted.Terminal())
	assert.True(t, TaskStatusCancelled.Terminal())
	assert.False(t, TaskStatusOpen.Terminal())
	assert.False(t, TaskStatusInProgress.Terminal())
}

func TestTaskStatusValid(t *testing.T) {
	assert.True(t, TaskStatusInProgress.Valid())
	assert.False(t, TaskStatus("paused").Valid())
}

func TestNewTaskObserver(t *testing.T) {
	taskID := uuid.New()
	userID := uuid.New()

	observer := NewTaskObserver(taskID, userID)

	assert.Equal(t, taskID, observer.TaskID)
	assert.Equal(t, userID, observer.UserID)
	assert.NotZero(t, observer.ID)
	assert.False(t, observer.CreatedAt.IsZero())
}
