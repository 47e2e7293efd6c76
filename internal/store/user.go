package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// hashed password. Returns ErrEmailExists if the email or username is
	// already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns all users ordered by username.
	List(ctx context.Context) ([]*domain.User, error)

	// UpdateProfile modifies a user's first name, last name and email.
	// Returns ErrUserNotFound if the user does not exist and
	// ErrEmailExists when the new email collides with another user.
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName, email string) error

	// UpdateRole changes a user's application role.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error

	// SetActive flips the user's active flag. Users are never hard-deleted.
	// Returns ErrUserNotFound if the user does not exist.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) UserStore
}
