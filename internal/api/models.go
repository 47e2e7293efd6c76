package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/service"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=50"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse defines the successful response for login and refresh.
type AuthResponse struct {
	Message      string       `json:"message"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user,omitempty"`
}

// UpdateProfileRequest defines the payload for updating user profile
// fields. Nil fields keep the stored value.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=100"`
	Email     *string `json:"email"      validate:"omitempty,email"`
}

// UpdateRoleRequest defines the payload for the admin role-change endpoint.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role" validate:"required"`
}

// CreateProjectRequest defines the payload for creating a project.
type CreateProjectRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateProjectRequest defines the payload for updating a project.
// Nil fields keep the stored value.
type UpdateProjectRequest struct {
	Name        *string               `json:"name" validate:"omitempty,max=200"`
	Description *string               `json:"description"`
	Status      *domain.ProjectStatus `json:"status"`
	StartDate   *time.Time            `json:"start_date"`
	EndDate     *time.Time            `json:"end_date"`
}

// AddMemberRequest defines the payload for adding a project member.
// Role defaults to member when empty.
type AddMemberRequest struct {
	UserID uuid.UUID         `json:"user_id" validate:"required"`
	Role   domain.MemberRole `json:"role"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description"`
	AssigneeID  *uuid.UUID          `json:"assignee_id"`
	Priority    domain.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Absent fields keep the stored value; an explicit null clears the
// assignee or due date.
type UpdateTaskRequest struct {
	Title       *string                     `json:"title" validate:"omitempty,max=200"`
	Description *string                     `json:"description"`
	AssigneeID  service.Optional[uuid.UUID] `json:"assignee_id"`
	Status      *domain.TaskStatus          `json:"status"`
	Priority    *domain.TaskPriority        `json:"priority"`
	DueDate     service.Optional[time.Time] `json:"due_date"`
}

// toServiceUpdate maps the request onto the service-layer update payload.
func (req UpdateTaskRequest) toServiceUpdate() service.TaskUpdate {
	return service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
}

// AddObserverRequest defines the payload for adding a task observer.
type AddObserverRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// CreateSubtaskRequest defines the payload for creating a subtask.
type CreateSubtaskRequest struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description"`
	AssigneeID  *uuid.UUID          `json:"assignee_id"`
	Priority    domain.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

// UpdateSubtaskRequest defines the payload for updating a subtask. Same
// merge semantics as task updates (absent keeps, explicit null clears the
// assignee or due date) but subtask updates produce no side effects.
type UpdateSubtaskRequest struct {
	Title       *string                     `json:"title" validate:"omitempty,max=200"`
	Description *string                     `json:"description"`
	AssigneeID  service.Optional[uuid.UUID] `json:"assignee_id"`
	Status      *domain.SubtaskStatus       `json:"status"`
	Priority    *domain.TaskPriority        `json:"priority"`
	DueDate     service.Optional[time.Time] `json:"due_date"`
}
