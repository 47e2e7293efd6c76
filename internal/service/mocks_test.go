package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockTaskStore mocks the store.TaskStore interface
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, assigneeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) AddObserver(ctx context.Context, observer *domain.TaskObserver) error {
	args := m.Called(ctx, observer)
	return args.Error(0)
}

func (m *MockTaskStore) RemoveObserver(ctx context.Context, taskID, userID uuid.UUID) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}

func (m *MockTaskStore) ListObservers(ctx context.Context, taskID uuid.UUID) ([]domain.TaskObserver, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaskObserver), args.Error(1)
}

func (m *MockTaskStore) ListOverdueCandidates(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) MarkOverdue(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// MockNotificationStore mocks the store.NotificationStore interface
type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	args := m.Called(ctx, recipientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationStore) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	args := m.Called(ctx, recipientID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationStore) GetByID(ctx context.Context, id, recipientID uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *MockNotificationStore) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	args := m.Called(ctx, recipientID)
	return args.Error(0)
}

func (m *MockNotificationStore) Delete(ctx context.Context, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *MockNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return m
}

// MockNotifier mocks the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) TaskAssigned(ctx context.Context, taskID, assigneeID, actorID uuid.UUID) error {
	args := m.Called(ctx, taskID, assigneeID, actorID)
	return args.Error(0)
}

func (m *MockNotifier) StatusChanged(ctx context.Context, taskID uuid.UUID, recipientID *uuid.UUID, actorID uuid.UUID, oldStatus, newStatus domain.TaskStatus) error {
	args := m.Called(ctx, taskID, recipientID, actorID, oldStatus, newStatus)
	return args.Error(0)
}

func (m *MockNotifier) DueDateChanged(ctx context.Context, taskID uuid.UUID, recipientID *uuid.UUID, actorID uuid.UUID, oldDue, newDue *time.Time) error {
	args := m.Called(ctx, taskID, recipientID, actorID, oldDue, newDue)
	return args.Error(0)
}

func (m *MockNotifier) ObserverAdded(ctx context.Context, taskID, observerID, actorID uuid.UUID) error {
	args := m.Called(ctx, taskID, observerID, actorID)
	return args.Error(0)
}

// MockActivityRecorder mocks the ActivityRecorder interface
type MockActivityRecorder struct {
	mock.Mock
}

func (m *MockActivityRecorder) Record(ctx context.Context, taskID, actorID uuid.UUID, action domain.ActivityAction, fieldName, oldValue, newValue, description string) error {
	args := m.Called(ctx, taskID, actorID, action, fieldName, oldValue, newValue, description)
	return args.Error(0)
}

func (m *MockActivityRecorder) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.ActivityLogEntry, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ActivityLogEntry), args.Error(1)
}
