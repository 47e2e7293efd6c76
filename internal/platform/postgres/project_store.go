package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// PostgresProjectStore implements the store.ProjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	db store.DBTX
}

// NewPostgresProjectStore creates a new PostgreSQL implementation of the
// ProjectStore interface.
func NewPostgresProjectStore(db store.DBTX) *PostgresProjectStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	return &PostgresProjectStore{db: db}
}

// Ensure PostgresProjectStore implements store.ProjectStore interface
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// WithTx implements store.ProjectStore.WithTx
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{db: tx}
}

// Create implements store.ProjectStore.Create
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO projects (id, name, description, owner_id, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.OwnerID,
		project.Status,
		project.StartDate,
		project.EndDate,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

const projectColumns = `p.id, p.name, p.description, p.owner_id, p.status, p.start_date, p.end_date, p.created_at, p.updated_at,
		u.first_name || ' ' || u.last_name`

// GetByID implements store.ProjectStore.GetByID
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		JOIN users u ON p.owner_id = u.id
		WHERE p.id = $1
	`

	project, err := scanProjectRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// List implements store.ProjectStore.List
func (s *PostgresProjectStore) List(ctx context.Context) ([]*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		JOIN users u ON p.owner_id = u.id
		ORDER BY p.created_at DESC
	`

	return s.queryProjects(ctx, query)
}

// ListByUser implements store.ProjectStore.ListByUser
func (s *PostgresProjectStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	query := `
		SELECT DISTINCT ` + projectColumns + `
		FROM projects p
		JOIN users u ON p.owner_id = u.id
		WHERE p.owner_id = $1 OR EXISTS (
			SELECT 1 FROM project_members pm WHERE pm.project_id = p.id AND pm.user_id = $1
		)
		ORDER BY p.created_at DESC
	`

	return s.queryProjects(ctx, query, userID)
}

// Update implements store.ProjectStore.Update
func (s *PostgresProjectStore) Update(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE projects
		SET name = $1, description = $2, status = $3, start_date = $4, end_date = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		project.Name,
		project.Description,
		project.Status,
		project.StartDate,
		project.EndDate,
		time.Now().UTC(),
		project.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrProjectNotFound)
}

// AddMember implements store.ProjectStore.AddMember
func (s *PostgresProjectStore) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	query := `
		INSERT INTO project_members (id, project_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		member.ID,
		member.ProjectID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrMemberExists
		}
		return MapError(err)
	}

	return nil
}

// RemoveMember implements store.ProjectStore.RemoveMember
func (s *PostgresProjectStore) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	query := `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrMemberNotFound)
}

// ListMembers implements store.ProjectStore.ListMembers
func (s *PostgresProjectStore) ListMembers(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMember, error) {
	query := `
		SELECT pm.id, pm.project_id, pm.user_id, pm.role, pm.created_at,
			u.username, u.email, u.first_name || ' ' || u.last_name
		FROM project_members pm
		JOIN users u ON pm.user_id = u.id
		WHERE pm.project_id = $1
		ORDER BY pm.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var members []*domain.ProjectMember
	for rows.Next() {
		var m domain.ProjectMember
		if err := rows.Scan(
			&m.ID,
			&m.ProjectID,
			&m.UserID,
			&m.Role,
			&m.CreatedAt,
			&m.Username,
			&m.Email,
			&m.FullName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return members, nil
}

func (s *PostgresProjectStore) queryProjects(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*domain.Project
	for rows.Next() {
		project, err := scanProjectRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

func scanProjectRow(row scanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.OwnerID,
		&p.Status,
		&p.StartDate,
		&p.EndDate,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.OwnerName,
	)
	if err != nil {
		return nil, MapError(err)
	}
	return &p, nil
}
