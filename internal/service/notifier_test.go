package service

import (
	"context"
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

func newTestNotifier(taskStore *MockTaskStore, notificationStore *MockNotificationStore) Notifier {
	return NewNotifier(taskStore, notificationStore, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNotifier_TaskAssigned(t *testing.T) {
	taskStore := new(MockTaskStore)
	notificationStore := new(MockNotificationStore)
	n := newTestNotifier(taskStore, notificationStore)

	task := newStoredTask()
	assigneeID := uuid.New()
	actorID := uuid.New()

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	var created *domain.Notification
	notificationStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Notification)
		}).Return(nil)

	err := n.TaskAssigned(context.Background(), task.ID, assigneeID, actorID)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, assigneeID, created.RecipientID)
	assert.Equal(t, task.ID, created.TaskID)
	assert.Equal(t, actorID, created.SenderID)
	assert.Equal(t, domain.NotificationTaskAssigned, created.Type)
	assert.Equal(t, "Task Assigned", created.Title)
	assert.Equal(t, "You have been assigned to task: Ship the release", created.Message)
	assert.False(t, created.IsRead)
}

func TestNotifier_StatusChangedMessageFormat(t *testing.T) {
	taskStore := new(MockTaskStore)
	notificationStore := new(MockNotificationStore)
	n := newTestNotifier(taskStore, notificationStore)

	task := newStoredTask()
	recipientID := uuid.New()

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	var created *domain.Notification
	notificationStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Notification)
		}).Return(nil)

	err := n.StatusChanged(context.Background(), task.ID, &recipientID, uuid.New(),
		domain.TaskStatusOpen, domain.TaskStatusCompleted)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Task Status Updated", created.Title)
	assert.Equal(t, `Task "Ship the release" status changed from open to completed`, created.Message)
}

func TestNotifier_StatusChangedNilRecipientIsNoOp(t *testing.T) {
	taskStore := new(MockTaskStore)
	notificationStore := new(MockNotificationStore)
	n := newTestNotifier(taskStore, notificationStore)

	err := n.StatusChanged(context.Background(), uuid.New(), nil, uuid.New(),
		domain.TaskStatusOpen, domain.TaskStatusCompleted)

	require.NoError(t, err)
	taskStore.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	notificationStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotifier_DueDateChangedMessageFormat(t *testing.T) {
	taskStore := new(MockTaskStore)
	notificationStore := new(MockNotificationStore)
	n := newTestNotifier(taskStore, notificationStore)

	task := newStoredTask()
	recipientID := uuid.New()
	oldDue := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	newDue := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	var created *domain.Notification
	notificationStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Notification)
		}).Return(nil)

	err := n.DueDateChanged(context.Background(), task.ID, &recipientID, uuid.New(), &oldDue, &newDue)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, `Task "Ship the release" due date changed from 2025-06-10 to 2025-07-01`, created.Message)
}

func TestNotifier_DueDateClearedFormatsNone(t *testing.T) {
	taskStore := new(MockTaskStore)
	notificationStore := new(MockNotificationStore)
	n := newTestNotifier(taskStore, notificationStore)

	task := newStoredTask()
	recipientID := uuid.New()
	oldDue := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	var created *domain.Notification
	notificationStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Notification)
		}).Return(nil)

	err := n.DueDateChanged(context.Background(), task.ID, &recipientID, uuid.New(), &oldDue, nil)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, `Task "Ship the release" due date changed from 2025-06-10 to none`, created.Message)
}

func TestNotifier_MissingTaskIsSilentNoOp(t *testing.T) {
	taskStore := new(MockTaskStore)
	notificationStore := new(MockNotificationStore)
	n := newTestNotifier(taskStore, notificationStore)

	taskID := uuid.New()
	taskStore.On("GetByID", mock.Anything, taskID).Return(nil, store.ErrTaskNotFound)

	err := n.TaskAssigned(context.Background(), taskID, uuid.New(), uuid.New())

	require.NoError(t, err)
	notificationStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotifier_StoreErrorIsReturned(t *testing.T) {
	taskStore := new(MockTaskStore)
	notificationStore := new(MockNotificationStore)
	n := newTestNotifier(taskStore, notificationStore)

	task := newStoredTask()
	storeErr := errors.New("insert failed")

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	notificationStore.On("Create", mock.Anything, mock.Anything).Return(storeErr)

	err := n.ObserverAdded(context.Background(), task.ID, uuid.New(), uuid.New())

	assert.ErrorIs(t, err, storeErr)
}

func TestNotifier_ObserverAddedMessageFormat(t *testing.T) {
	taskStore := new(MockTaskStore)
	notificationStore := new(MockNotificationStore)
	n := newTestNotifier(taskStore, notificationStore)

	task := newStoredTask()

	taskStore.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	var created *domain.Notification
	notificationStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Notification)
		}).Return(nil)

	err := n.ObserverAdded(context.Background(), task.ID, uuid.New(), uuid.New())

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Added as Observer", created.Title)
	assert.Equal(t, "You have been added as observer to task: Ship the release", created.Message)
}
