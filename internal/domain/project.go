package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
	ProjectStatusInactive ProjectStatus = "inactive"
)

// Valid reports whether the status is one of the known project states.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusArchived, ProjectStatusInactive:
		return true
	}
	return false
}

// MemberRole is a user's role within a single project.
type MemberRole string

const (
	MemberRoleLead   MemberRole = "lead"
	MemberRoleMember MemberRole = "member"
)

// Valid reports whether the member role is lead or member.
func (r MemberRole) Valid() bool {
	return r == MemberRoleLead || r == MemberRoleMember
}

var (
	ErrEmptyProjectID   = errors.New("project ID cannot be empty")
	ErrEmptyProjectName = errors.New("project name cannot be empty")
	ErrEmptyOwnerID     = errors.New("project owner cannot be empty")
)

// Project is a container for tasks, owned by exactly one user.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// OwnerName is a read-side projection joined from the users table.
	OwnerName string `json:"owner_name,omitempty"`
}

// NewProject creates a new active Project owned by ownerID.
func NewProject(name, description string, ownerID uuid.UUID, startDate, endDate *time.Time) (*Project, error) {
	now := time.Now().UTC()
	project := &Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		Status:      ProjectStatusActive,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	if p.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ProjectMember links a user to a project with a project-level role.
// The (project, user) pair is unique.
type ProjectMember struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"project_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Role      MemberRole `json:"role"`
	CreatedAt time.Time  `json:"created_at"`

	// Projections joined from the users table for list endpoints.
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// NewProjectMember creates a membership row for userID in projectID.
func NewProjectMember(projectID, userID uuid.UUID, role MemberRole) (*ProjectMember, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return &ProjectMember{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}, nil
}
