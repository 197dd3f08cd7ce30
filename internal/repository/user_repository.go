package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

const userColumns = `id, username, email, password_hash, role, department, is_manager, created_at`

// UserRepository provides the directory lookups used by routing.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := sqlx.GetContext(ctx, r.exec(exec), &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindManager returns the first manager of a department, nil when none exists.
func (r *UserRepository) FindManager(ctx context.Context, exec sqlx.ExtContext, dept models.Department) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE department = $1 AND is_manager = TRUE ORDER BY created_at, id LIMIT 1`
	var user models.User
	if err := sqlx.GetContext(ctx, r.exec(exec), &user, query, dept); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find department manager: %w", err)
	}
	return &user, nil
}

// FindAnyMember returns the first member of a department, nil when the department is empty.
func (r *UserRepository) FindAnyMember(ctx context.Context, exec sqlx.ExtContext, dept models.Department) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE department = $1 ORDER BY created_at, id LIMIT 1`
	var user models.User
	if err := sqlx.GetContext(ctx, r.exec(exec), &user, query, dept); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find department member: %w", err)
	}
	return &user, nil
}

// FindMembers returns every user of a department.
func (r *UserRepository) FindMembers(ctx context.Context, exec sqlx.ExtContext, dept models.Department) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE department = $1 ORDER BY username`
	var users []models.User
	if err := sqlx.SelectContext(ctx, r.exec(exec), &users, query, dept); err != nil {
		return nil, fmt.Errorf("list department members: %w", err)
	}
	return users, nil
}

// List returns users matching the filter ordered by username.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Managers != nil {
		args = append(args, *filter.Managers)
		conditions = append(conditions, fmt.Sprintf("is_manager = $%d", len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY username"

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Upsert inserts or refreshes a user keyed by email.
func (r *UserRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (id, username, email, password_hash, role, department, is_manager, created_at)
VALUES (:id, :username, :email, :password_hash, :role, :department, :is_manager, :created_at)
ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username, password_hash = EXCLUDED.password_hash,
role = EXCLUDED.role, department = EXCLUDED.department, is_manager = EXCLUDED.is_manager`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, user); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
