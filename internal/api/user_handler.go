package api

import (
	"net/http"

	"github.com/phrazzld/tracker-api/internal/api/shared"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// UserHandler handles user management API requests.
type UserHandler struct {
	userStore store.UserStore
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(userStore store.UserStore) *UserHandler {
	return &UserHandler{userStore: userStore}
}

// List handles GET /api/users (admin only).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List(r.Context())
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Users []*domain.User `json:"users"`
	}{Users: users})
}

// Get handles GET /api/users/{userId}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUUID(w, r, "userId")
	if !ok {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		User *domain.User `json:"user"`
	}{User: user})
}

// UpdateProfile handles PUT /api/users/{userId}.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUUID(w, r, "userId")
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}

	if err := h.userStore.UpdateProfile(r.Context(), user.ID, user.FirstName, user.LastName, user.Email); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string       `json:"message"`
		User    *domain.User `json:"user"`
	}{
		Message: "User updated successfully",
		User:    user,
	})
}

// UpdateRole handles PUT /api/users/{userId}/role (admin only).
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUUID(w, r, "userId")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if !req.Role.Valid() {
		RespondWithMappedError(w, r, domain.ErrInvalidRole)
		return
	}

	if err := h.userStore.UpdateRole(r.Context(), userID, req.Role); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "User role updated successfully"})
}

// Deactivate handles PUT /api/users/{userId}/deactivate (admin only).
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "User deactivated successfully")
}

// Reactivate handles PUT /api/users/{userId}/reactivate (admin only).
func (h *UserHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "User reactivated successfully")
}

func (h *UserHandler) setActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	userID, ok := requirePathUUID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.userStore.SetActive(r.Context(), userID, active); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: message})
}
