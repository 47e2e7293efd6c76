package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestTaskService(taskStore *MockTaskStore, notifier *MockNotifier, activity *MockActivityRecorder) *taskService {
	return &taskService{
		taskStore: taskStore,
		notifier:  notifier,
		activity:  activity,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeFunc:  func() time.Time { return testNow },
		runTx: func(ctx context.Context, db *sql.DB, fn store.TxFn) error {
			return fn(ctx, nil)
		},
	}
}

func newStoredTask() *domain.Task {
	return &domain.Task{
		ID:          uuid.New(),
		ProjectID:   uuid.New(),
		Title:       "Ship the release",
		Description: "Cut and publish the next release",
		CreatedBy:   uuid.New(),
		Priority:    domain.TaskPriorityMedium,
		Status:      domain.TaskStatusOpen,
		CreatedAt:   testNow.Add(-24 * time.Hour),
		UpdatedAt:   testNow.Add(-24 * time.Hour),
	}
}

func TestUpdateTask_AssigneeChangeNotifiesAndLogs(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	task := newStoredTask()
	actorID := uuid.New()
	assigneeID := uuid.New()

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	taskStore.On("Update", mock.Anything, task).Return(nil)
	taskStore.On("ListObservers", mock.Anything, task.ID).Return([]domain.TaskObserver{}, nil)
	notifier.On("TaskAssigned", mock.Anything, task.ID, assigneeID, actorID).Return(nil)
	activity.On("Record", mock.Anything, task.ID, actorID, domain.ActivityAssigned,
		"assignee_id", "none", assigneeID.String(), "").Return(nil)

	updated, err := svc.UpdateTask(context.Background(), task.ID, actorID, TaskUpdate{
		AssigneeID: Some(assigneeID),
	})

	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, assigneeID, *updated.AssigneeID)
	assert.Equal(t, testNow, updated.UpdatedAt)
	notifier.AssertExpectations(t)
	activity.AssertExpectations(t)
}

func TestUpdateTask_ReturnsFreshProjection(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	task := newStoredTask()
	prevAssignee := uuid.New()
	task.AssigneeID = &prevAssignee
	task.AssigneeUsername = "old-owner"
	actorID := uuid.New()
	newAssignee := uuid.New()

	reread := newStoredTask()
	reread.ID = task.ID
	reread.AssigneeID = &newAssignee
	reread.AssigneeUsername = "new-owner"
	observers := []domain.TaskObserver{
		{ID: uuid.New(), TaskID: task.ID, UserID: uuid.New(), Username: "watcher"},
	}

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil).Once()
	taskStore.On("Update", mock.Anything, task).Return(nil)
	notifier.On("TaskAssigned", mock.Anything, task.ID, newAssignee, actorID).Return(nil)
	activity.On("Record", mock.Anything, task.ID, actorID, domain.ActivityAssigned,
		"assignee_id", prevAssignee.String(), newAssignee.String(), "").Return(nil)
	taskStore.On("GetByID", mock.Anything, task.ID).Return(reread, nil).Once()
	taskStore.On("ListObservers", mock.Anything, task.ID).Return(observers, nil)

	updated, err := svc.UpdateTask(context.Background(), task.ID, actorID, TaskUpdate{
		AssigneeID: Some(newAssignee),
	})

	require.NoError(t, err)
	assert.Equal(t, observers, updated.Observers)
	assert.Equal(t, "new-owner", updated.AssigneeUsername)
}

func TestUpdateTask_NoChangesProducesNoSideEffects(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	task := newStoredTask()
	actorID := uuid.New()
	sameStatus := task.Status

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	taskStore.On("Update", mock.Anything, task).Return(nil)
	taskStore.On("ListObservers", mock.Anything, task.ID).Return([]domain.TaskObserver{}, nil)

	_, err := svc.UpdateTask(context.Background(), task.ID, actorID, TaskUpdate{
		Status: &sameStatus,
	})

	require.NoError(t, err)
	notifier.AssertNotCalled(t, "StatusChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	activity.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTask_StatusChangeWithoutAssignee(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	task := newStoredTask()
	actorID := uuid.New()
	newStatus := domain.TaskStatusInProgress

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	taskStore.On("Update", mock.Anything, task).Return(nil)
	taskStore.On("ListObservers", mock.Anything, task.ID).Return([]domain.TaskObserver{}, nil)
	notifier.On("StatusChanged", mock.Anything, task.ID, (*uuid.UUID)(nil), actorID,
		domain.TaskStatusOpen, domain.TaskStatusInProgress).Return(nil)
	activity.On("Record", mock.Anything, task.ID, actorID, domain.ActivityStatusChanged,
		"status", "open", "in_progress", "").Return(nil)

	updated, err := svc.UpdateTask(context.Background(), task.ID, actorID, TaskUpdate{
		Status: &newStatus,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, updated.Status)
	notifier.AssertExpectations(t)
	activity.AssertExpectations(t)
}

func TestUpdateTask_ExplicitNullClearsAssigneeAndDueDate(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	task := newStoredTask()
	prevAssignee := uuid.New()
	prevDue := testNow.Add(-48 * time.Hour)
	task.AssigneeID = &prevAssignee
	task.DueDate = &prevDue
	task.IsOverdue = true
	actorID := uuid.New()

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	taskStore.On("Update", mock.Anything, task).Return(nil)
	taskStore.On("ListObservers", mock.Anything, task.ID).Return([]domain.TaskObserver{}, nil)
	activity.On("Record", mock.Anything, task.ID, actorID, domain.ActivityAssigned,
		"assignee_id", prevAssignee.String(), "none", "").Return(nil)
	notifier.On("DueDateChanged", mock.Anything, task.ID, &prevAssignee, actorID,
		&prevDue, (*time.Time)(nil)).Return(nil)
	activity.On("Record", mock.Anything, task.ID, actorID, domain.ActivityDueDateChanged,
		"due_date", prevDue.Format("2006-01-02"), "none", "").Return(nil)

	updated, err := svc.UpdateTask(context.Background(), task.ID, actorID, TaskUpdate{
		AssigneeID: Null[uuid.UUID](),
		DueDate:    Null[time.Time](),
	})

	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)
	assert.Nil(t, updated.DueDate)
	assert.False(t, updated.IsOverdue, "clearing the due date should clear the overdue flag")
	notifier.AssertNotCalled(t, "TaskAssigned", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	notifier.AssertExpectations(t)
	activity.AssertExpectations(t)
}

func TestUpdateTask_DueDateExtensionClearsOverdue(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	task := newStoredTask()
	prevDue := testNow.Add(-24 * time.Hour)
	task.DueDate = &prevDue
	task.IsOverdue = true
	actorID := uuid.New()
	newDue := testNow.Add(72 * time.Hour)

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	taskStore.On("Update", mock.Anything, task).Return(nil)
	taskStore.On("ListObservers", mock.Anything, task.ID).Return([]domain.TaskObserver{}, nil)
	notifier.On("DueDateChanged", mock.Anything, task.ID, (*uuid.UUID)(nil), actorID,
		&prevDue, &newDue).Return(nil)
	activity.On("Record", mock.Anything, task.ID, actorID, domain.ActivityDueDateChanged,
		"due_date", prevDue.Format("2006-01-02"), newDue.Format("2006-01-02"), "").Return(nil)

	updated, err := svc.UpdateTask(context.Background(), task.ID, actorID, TaskUpdate{
		DueDate: Some(newDue),
	})

	require.NoError(t, err)
	assert.False(t, updated.IsOverdue)
	require.NotNil(t, updated.DueDate)
	assert.True(t, newDue.Equal(*updated.DueDate))
}

func TestUpdateTask_SideEffectOrder(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	task := newStoredTask()
	prevAssignee := uuid.New()
	task.AssigneeID = &prevAssignee
	actorID := uuid.New()
	newAssignee := uuid.New()
	newStatus := domain.TaskStatusCompleted
	newDue := testNow.Add(24 * time.Hour)

	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { calls = append(calls, name) }
	}

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	taskStore.On("Update", mock.Anything, task).Return(nil)
	taskStore.On("ListObservers", mock.Anything, task.ID).Return([]domain.TaskObserver{}, nil)
	notifier.On("TaskAssigned", mock.Anything, task.ID, newAssignee, actorID).
		Run(record("notify_assigned")).Return(nil)
	activity.On("Record", mock.Anything, task.ID, actorID, domain.ActivityAssigned,
		"assignee_id", prevAssignee.String(), newAssignee.String(), "").
		Run(record("log_assigned")).Return(nil)
	// Status and due-date notifications go to the assignee as of before
	// this update, not the one just assigned.
	notifier.On("StatusChanged", mock.Anything, task.ID, &prevAssignee, actorID,
		domain.TaskStatusOpen, domain.TaskStatusCompleted).
		Run(record("notify_status")).Return(nil)
	activity.On("Record", mock.Anything, task.ID, actorID, domain.ActivityStatusChanged,
		"status", "open", "completed", "").
		Run(record("log_status")).Return(nil)
	notifier.On("DueDateChanged", mock.Anything, task.ID, &prevAssignee, actorID,
		(*time.Time)(nil), &newDue).
		Run(record("notify_due")).Return(nil)
	activity.On("Record", mock.Anything, task.ID, actorID, domain.ActivityDueDateChanged,
		"due_date", "none", newDue.Format("2006-01-02"), "").
		Run(record("log_due")).Return(nil)

	_, err := svc.UpdateTask(context.Background(), task.ID, actorID, TaskUpdate{
		AssigneeID: Some(newAssignee),
		Status:     &newStatus,
		DueDate:    Some(newDue),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"notify_assigned", "log_assigned",
		"notify_status", "log_status",
		"notify_due", "log_due",
	}, calls)
}

func TestUpdateTask_SideEffectFailuresDoNotFailUpdate(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	task := newStoredTask()
	actorID := uuid.New()
	assigneeID := uuid.New()

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	taskStore.On("Update", mock.Anything, task).Return(nil)
	taskStore.On("ListObservers", mock.Anything, task.ID).Return([]domain.TaskObserver{}, nil)
	notifier.On("TaskAssigned", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("notification store down"))
	activity.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("log store down"))

	updated, err := svc.UpdateTask(context.Background(), task.ID, actorID, TaskUpdate{
		AssigneeID: Some(assigneeID),
	})

	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, assigneeID, *updated.AssigneeID)
}

func TestUpdateTask_NotFound(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	taskID := uuid.New()
	taskStore.On("GetByID", mock.Anything, taskID).Return(nil, store.ErrTaskNotFound)

	_, err := svc.UpdateTask(context.Background(), taskID, uuid.New(), TaskUpdate{})

	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestUpdateTask_InvalidStatusRejectedBeforeLoad(t *testing.T) {
	taskStore := new(MockTaskStore)
	svc := newTestTaskService(taskStore, new(MockNotifier), new(MockActivityRecorder))

	badStatus := domain.TaskStatus("paused")
	_, err := svc.UpdateTask(context.Background(), uuid.New(), uuid.New(), TaskUpdate{
		Status: &badStatus,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	taskStore.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCreateTask_WithAssignee(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	projectID := uuid.New()
	actorID := uuid.New()
	assigneeID := uuid.New()

	var created *domain.Task
	taskStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Task) }).
		Return(nil)
	activity.On("Record", mock.Anything, mock.Anything, actorID, domain.ActivityCreated,
		"", "", "", "Task created").Return(nil)
	notifier.On("TaskAssigned", mock.Anything, mock.Anything, assigneeID, actorID).Return(nil)
	activity.On("Record", mock.Anything, mock.Anything, actorID, domain.ActivityAssigned,
		"assignee_id", "none", assigneeID.String(), "").Return(nil)
	stored := newStoredTask()
	taskStore.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(stored, nil)
	taskStore.On("ListObservers", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return([]domain.TaskObserver{}, nil)

	task, err := svc.CreateTask(context.Background(), projectID, actorID, CreateTaskInput{
		Title:      "Write onboarding docs",
		AssigneeID: &assigneeID,
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, projectID, created.ProjectID)
	assert.Equal(t, actorID, created.CreatedBy)
	assert.Equal(t, domain.TaskStatusOpen, created.Status)
	assert.Equal(t, domain.TaskPriorityMedium, created.Priority)
	// The response is the re-read row, not the in-memory one.
	assert.Same(t, stored, task)
	notifier.AssertExpectations(t)
	activity.AssertExpectations(t)
}

func TestCreateTask_WithoutAssigneeSkipsNotification(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	taskStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)
	activity.On("Record", mock.Anything, mock.Anything, mock.Anything, domain.ActivityCreated,
		"", "", "", "Task created").Return(nil)
	taskStore.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(newStoredTask(), nil)
	taskStore.On("ListObservers", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return([]domain.TaskObserver{}, nil)

	_, err := svc.CreateTask(context.Background(), uuid.New(), uuid.New(), CreateTaskInput{
		Title: "Untriaged bug",
	})

	require.NoError(t, err)
	notifier.AssertNotCalled(t, "TaskAssigned", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddObserver_DuplicatePassesThrough(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	taskStore.On("AddObserver", mock.Anything, mock.AnythingOfType("*domain.TaskObserver")).
		Return(store.ErrObserverExists)

	err := svc.AddObserver(context.Background(), uuid.New(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, store.ErrObserverExists)
	notifier.AssertNotCalled(t, "ObserverAdded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddObserver_NotifiesAndLogs(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	taskID := uuid.New()
	observerID := uuid.New()
	actorID := uuid.New()

	taskStore.On("AddObserver", mock.Anything, mock.AnythingOfType("*domain.TaskObserver")).Return(nil)
	notifier.On("ObserverAdded", mock.Anything, taskID, observerID, actorID).Return(nil)
	activity.On("Record", mock.Anything, taskID, actorID, domain.ActivityObserverAdded,
		"", "", "", mock.AnythingOfType("string")).Return(nil)

	err := svc.AddObserver(context.Background(), taskID, observerID, actorID)

	require.NoError(t, err)
	notifier.AssertExpectations(t)
	activity.AssertExpectations(t)
}

func TestRemoveObserver_LogsWithoutNotification(t *testing.T) {
	taskStore := new(MockTaskStore)
	notifier := new(MockNotifier)
	activity := new(MockActivityRecorder)
	svc := newTestTaskService(taskStore, notifier, activity)

	taskID := uuid.New()
	observerID := uuid.New()
	actorID := uuid.New()

	taskStore.On("RemoveObserver", mock.Anything, taskID, observerID).Return(nil)
	activity.On("Record", mock.Anything, taskID, actorID, domain.ActivityObserverRemoved,
		"", "", "", mock.AnythingOfType("string")).Return(nil)

	err := svc.RemoveObserver(context.Background(), taskID, observerID, actorID)

	require.NoError(t, err)
	notifier.AssertNotCalled(t, "ObserverAdded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	activity.AssertExpectations(t)
}

func TestGetTask_PopulatesObservers(t *testing.T) {
	taskStore := new(MockTaskStore)
	svc := newTestTaskService(taskStore, new(MockNotifier), new(MockActivityRecorder))

	task := newStoredTask()
	observers := []domain.TaskObserver{
		{ID: uuid.New(), TaskID: task.ID, UserID: uuid.New(), Username: "watcher"},
	}

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	taskStore.On("ListObservers", mock.Anything, task.ID).Return(observers, nil)

	got, err := svc.GetTask(context.Background(), task.ID)

	require.NoError(t, err)
	assert.Equal(t, observers, got.Observers)
}
