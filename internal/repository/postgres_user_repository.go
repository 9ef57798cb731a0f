package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create creates a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, first_name, last_name, full_name, password_hash, enabled, user_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.FullName,
		user.PasswordHash,
		user.Enabled,
		user.UserType,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return mapPostgresError(err)
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT email, first_name, last_name, full_name, password_hash, enabled, user_type, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	user := &domain.User{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.FullName,
		&user.PasswordHash,
		&user.Enabled,
		&user.UserType,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPostgresError(err)
	}
	return user, nil
}

// Exists checks whether a user exists
func (r *PostgresUserRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, mapPostgresError(err)
}

// SetUserType updates the account classification
func (r *PostgresUserRepository) SetUserType(ctx context.Context, email, userType string) error {
	query := `UPDATE users SET user_type = $2, updated_at = $3 WHERE email = $1`
	result, err := r.pool.Exec(ctx, query, email, userType, time.Now())
	if err != nil {
		return mapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GrantRole grants a role to a user. ON CONFLICT DO NOTHING makes the
// grant idempotent; the bool reports whether a new row was written.
func (r *PostgresUserRepository) GrantRole(ctx context.Context, email, role string) (bool, error) {
	query := `
		INSERT INTO user_roles (user_email, role, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_email, role) DO NOTHING
	`
	result, err := r.pool.Exec(ctx, query, email, role, time.Now())
	if err != nil {
		return false, mapPostgresError(err)
	}
	return result.RowsAffected() > 0, nil
}

// HasRole checks whether a user holds a role
func (r *PostgresUserRepository) HasRole(ctx context.Context, email, role string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_roles WHERE user_email = $1 AND role = $2)`,
		email, role,
	).Scan(&exists)
	return exists, mapPostgresError(err)
}

// ListRoles lists the roles a user holds
func (r *PostgresUserRepository) ListRoles(ctx context.Context, email string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role FROM user_roles WHERE user_email = $1 ORDER BY role`,
		email,
	)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, mapPostgresError(err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
