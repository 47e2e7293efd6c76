package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/api/shared"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotificationStore struct {
	mock.Mock
}

func (m *mockNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *mockNotificationStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	args := m.Called(ctx, recipientID, limit, offset)
	if v, ok := args.Get(0).([]*domain.Notification); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationStore) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	args := m.Called(ctx, recipientID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotificationStore) GetByID(ctx context.Context, id, recipientID uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id, recipientID)
	if v, ok := args.Get(0).(*domain.Notification); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *mockNotificationStore) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	args := m.Called(ctx, recipientID)
	return args.Error(0)
}

func (m *mockNotificationStore) Delete(ctx context.Context, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *mockNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return m
}

var _ store.NotificationStore = (*mockNotificationStore)(nil)

func authedRequest(method, target string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestNotificationList_DefaultPaging(t *testing.T) {
	userID := uuid.New()
	notificationStore := new(mockNotificationStore)
	notificationStore.On("ListByRecipient", mock.Anything, userID, defaultNotificationLimit, 0).
		Return([]*domain.Notification{}, nil)

	h := NewNotificationHandler(notificationStore)
	rr := httptest.NewRecorder()

	h.List(rr, authedRequest(http.MethodGet, "/api/notifications", userID))

	assert.Equal(t, http.StatusOK, rr.Code)
	notificationStore.AssertExpectations(t)
}

func TestNotificationList_ClampsOutOfRangeLimit(t *testing.T) {
	userID := uuid.New()
	notificationStore := new(mockNotificationStore)
	notificationStore.On("ListByRecipient", mock.Anything, userID, defaultNotificationLimit, 0).
		Return([]*domain.Notification{}, nil)

	h := NewNotificationHandler(notificationStore)
	rr := httptest.NewRecorder()

	h.List(rr, authedRequest(http.MethodGet, "/api/notifications?limit=500&offset=-3", userID))

	assert.Equal(t, http.StatusOK, rr.Code)
	notificationStore.AssertExpectations(t)
}

func TestNotificationList_Unauthenticated(t *testing.T) {
	h := NewNotificationHandler(new(mockNotificationStore))
	rr := httptest.NewRecorder()

	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestNotificationUnreadCount(t *testing.T) {
	userID := uuid.New()
	notificationStore := new(mockNotificationStore)
	notificationStore.On("CountUnread", mock.Anything, userID).Return(7, nil)

	h := NewNotificationHandler(notificationStore)
	rr := httptest.NewRecorder()

	h.UnreadCount(rr, authedRequest(http.MethodGet, "/api/notifications/unread/count", userID))

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Count)
}

func TestNotificationMarkRead_NotFound(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()

	notificationStore := new(mockNotificationStore)
	notificationStore.On("MarkRead", mock.Anything, notificationID, userID).
		Return(store.ErrNotificationNotFound)

	h := NewNotificationHandler(notificationStore)
	rr := httptest.NewRecorder()
	req := withURLParam(
		authedRequest(http.MethodPut, "/api/notifications/"+notificationID.String()+"/read", userID),
		"notificationId", notificationID.String())

	h.MarkRead(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Notification not found")
}

func TestNotificationMarkRead_BadID(t *testing.T) {
	userID := uuid.New()

	h := NewNotificationHandler(new(mockNotificationStore))
	rr := httptest.NewRecorder()
	req := withURLParam(
		authedRequest(http.MethodPut, "/api/notifications/not-a-uuid/read", userID),
		"notificationId", "not-a-uuid")

	h.MarkRead(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNotificationMarkAllRead(t *testing.T) {
	userID := uuid.New()
	notificationStore := new(mockNotificationStore)
	notificationStore.On("MarkAllRead", mock.Anything, userID).Return(nil)

	h := NewNotificationHandler(notificationStore)
	rr := httptest.NewRecorder()

	h.MarkAllRead(rr, authedRequest(http.MethodPut, "/api/notifications/read-all", userID))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "All notifications marked as read")
}

func TestNotificationDelete(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()

	notificationStore := new(mockNotificationStore)
	notificationStore.On("Delete", mock.Anything, notificationID, userID).Return(nil)

	h := NewNotificationHandler(notificationStore)
	rr := httptest.NewRecorder()
	req := withURLParam(
		authedRequest(http.MethodDelete, "/api/notifications/"+notificationID.String(), userID),
		"notificationId", notificationID.String())

	h.Delete(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	notificationStore.AssertExpectations(t)
}
