package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
)

// ProjectStore defines the interface for project and membership persistence.
type ProjectStore interface {
	// Create saves a new project. It does not create the owner's implicit
	// lead membership; the service layer does that in the same transaction
	// via WithTx and AddMember.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project (with the owner's name joined).
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// List returns all projects, newest first.
	List(ctx context.Context) ([]*domain.Project, error)

	// ListByUser returns projects the user owns or is a member of.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)

	// Update modifies a project's name, description, status and date range.
	// Returns ErrProjectNotFound if the project does not exist.
	Update(ctx context.Context, project *domain.Project) error

	// AddMember inserts a membership row.
	// Returns ErrMemberExists if the user is already a member.
	AddMember(ctx context.Context, member *domain.ProjectMember) error

	// RemoveMember deletes a membership row.
	// Returns ErrMemberNotFound if no such membership exists.
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error

	// ListMembers returns the project's members with user fields joined.
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMember, error)

	// WithTx returns a new ProjectStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
