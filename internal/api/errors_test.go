package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/service/auth"
	"github.com/phrazzld/tracker-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"expired refresh token", auth.ErrExpiredRefreshToken, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusForbidden},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"observer exists", store.ErrObserverExists, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"invalid status", domain.ErrInvalidStatus, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("get task: %w", store.ErrTaskNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"user not found", store.ErrUserNotFound, "User not found"},
		{"project not found", store.ErrProjectNotFound, "Project not found"},
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"generic not found", store.ErrNotFound, "Resource not found"},
		{"email exists", store.ErrEmailExists, "Email or username already exists"},
		{"observer exists", store.ErrObserverExists, "User is already observing this task"},
		{"member exists", store.ErrMemberExists, "User is already a member of this project"},
		{"unauthorized", domain.ErrUnauthorized, "Insufficient permissions"},
		{"invalid token", auth.ErrInvalidToken, "Invalid token"},
		{"invalid refresh", auth.ErrInvalidRefreshToken, "Invalid refresh token"},
		{"validation", domain.ErrValidation, "Invalid request data"},
		{"invalid status", domain.ErrInvalidStatus, "Invalid status"},
		{"unknown hides detail", errors.New("pq: relation does not exist"), "An unexpected error occurred"},
		{"wrapped subtask not found", fmt.Errorf("delete: %w", store.ErrSubtaskNotFound), "Subtask not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}
