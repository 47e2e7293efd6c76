package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/platform/logger"
	"github.com/phrazzld/tracker-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. bcryptCost controls password hashing strength;
// pass bcrypt.DefaultCost outside of tests.
func NewPostgresUserStore(db store.DBTX, bcryptCost int) *PostgresUserStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, bcryptCost: s.bcryptCost}
}

// Create implements store.UserStore.Create
// It hashes the plaintext password before inserting the row.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hashed)
		user.Password = ""
	}

	query := `
		INSERT INTO users (id, username, email, hashed_password, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to create user", "error", err, "user_id", user.ID)
		return MapError(err)
	}

	return nil
}

const userColumns = `id, username, email, hashed_password, first_name, last_name, role, is_active, created_at, updated_at`

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// List implements store.UserStore.List
func (s *PostgresUserStore) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// UpdateProfile implements store.UserStore.UpdateProfile
func (s *PostgresUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName, email string) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(ctx, query, firstName, lastName, email, time.Now().UTC(), id)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrUserNotFound)
}

// UpdateRole implements store.UserStore.UpdateRole
func (s *PostgresUserStore) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidRole)
	}

	query := `UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, role, time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrUserNotFound)
}

// SetActive implements store.UserStore.SetActive
func (s *PostgresUserStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrUserNotFound)
}

// scanner abstracts *sql.Row and *sql.Rows for the shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (*domain.User, error) {
	user, err := scanUserRow(row)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUserRow(row scanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}
	return &user, nil
}
