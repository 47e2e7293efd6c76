package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/service/auth"
	"github.com/phrazzld/tracker-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Insufficient permissions"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrProjectNotFound):
		return "Project not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrSubtaskNotFound):
		return "Subtask not found"
	case errors.Is(err, store.ErrNotificationNotFound):
		return "Notification not found"
	case errors.Is(err, store.ErrObserverNotFound):
		return "Observer not found"
	case errors.Is(err, store.ErrMemberNotFound):
		return "Project member not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email or username already exists"
	case errors.Is(err, store.ErrObserverExists):
		return "User is already observing this task"
	case errors.Is(err, store.ErrMemberExists):
		return "User is already a member of this project"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, domain.ErrInvalidPassword):
		return "Password does not meet requirements"
	case errors.Is(err, domain.ErrInvalidRole):
		return "Invalid role"
	case errors.Is(err, domain.ErrInvalidStatus):
		return "Invalid status"
	case errors.Is(err, domain.ErrInvalidPriority):
		return "Invalid priority"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// RespondWithMappedError writes the error response for err using the
// status-code and safe-message mappings above, logging the full error.
func RespondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	respondError(w, r, status, message, err)
}
