package api

import (
	"net/http"
	"strconv"

	"github.com/phrazzld/tracker-api/internal/api/shared"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// Default and maximum page sizes for notification listings.
const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationHandler handles notification API requests. Every operation
// is scoped to the authenticated recipient.
type NotificationHandler struct {
	notificationStore store.NotificationStore
}

// NewNotificationHandler creates a new NotificationHandler with the given
// dependencies.
func NewNotificationHandler(notificationStore store.NotificationStore) *NotificationHandler {
	return &NotificationHandler{notificationStore: notificationStore}
}

// List handles GET /api/notifications?limit=&offset=.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", defaultNotificationLimit)
	if limit < 1 || limit > maxNotificationLimit {
		limit = defaultNotificationLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	notifications, err := h.notificationStore.ListByRecipient(r.Context(), userID, limit, offset)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Notifications []*domain.Notification `json:"notifications"`
	}{Notifications: notifications})
}

// UnreadCount handles GET /api/notifications/unread/count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	count, err := h.notificationStore.CountUnread(r.Context(), userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Count int `json:"count"`
	}{Count: count})
}

// Get handles GET /api/notifications/{notificationId}.
func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	notificationID, ok := requirePathUUID(w, r, "notificationId")
	if !ok {
		return
	}

	notification, err := h.notificationStore.GetByID(r.Context(), notificationID, userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Notification *domain.Notification `json:"notification"`
	}{Notification: notification})
}

// MarkRead handles PUT /api/notifications/{notificationId}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	notificationID, ok := requirePathUUID(w, r, "notificationId")
	if !ok {
		return
	}

	if err := h.notificationStore.MarkRead(r.Context(), notificationID, userID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "Notification marked as read"})
}

// MarkAllRead handles PUT /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.notificationStore.MarkAllRead(r.Context(), userID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "All notifications marked as read"})
}

// Delete handles DELETE /api/notifications/{notificationId}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	notificationID, ok := requirePathUUID(w, r, "notificationId")
	if !ok {
		return
	}

	if err := h.notificationStore.Delete(r.Context(), notificationID, userID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "Notification deleted successfully"})
}

// queryInt parses an integer query parameter, returning def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
