package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// PostgresPermissionRepository implements PermissionRepository using PostgreSQL
type PostgresPermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPermissionRepository creates a new PostgresPermissionRepository
func NewPostgresPermissionRepository(pool *pgxpool.Pool) *PostgresPermissionRepository {
	return &PostgresPermissionRepository{pool: pool}
}

const permissionColumns = `id, user_email, allow, for_value, apply_to_all_doctypes, is_default, created_at`

// Create creates a permission grant
func (r *PostgresPermissionRepository) Create(ctx context.Context, perm *domain.UserPermission) error {
	query := `
		INSERT INTO user_permissions (id, user_email, allow, for_value, apply_to_all_doctypes, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		perm.ID,
		perm.UserEmail,
		perm.Allow,
		perm.ForValue,
		perm.ApplyToAll,
		perm.IsDefault,
		perm.CreatedAt,
	)
	return mapPostgresError(err)
}

// Exists checks whether a grant exists for the triple
func (r *PostgresPermissionRepository) Exists(ctx context.Context, userEmail string, allow domain.PermissionKind, forValue string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_permissions WHERE user_email = $1 AND allow = $2 AND for_value = $3)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userEmail, allow, forValue).Scan(&exists)
	return exists, mapPostgresError(err)
}

// Get retrieves a grant by triple
func (r *PostgresPermissionRepository) Get(ctx context.Context, userEmail string, allow domain.PermissionKind, forValue string) (*domain.UserPermission, error) {
	query := `SELECT ` + permissionColumns + ` FROM user_permissions WHERE user_email = $1 AND allow = $2 AND for_value = $3`
	return r.scanOne(r.pool.QueryRow(ctx, query, userEmail, allow, forValue))
}

// ListByUser lists a user's grants for a resource kind
func (r *PostgresPermissionRepository) ListByUser(ctx context.Context, userEmail string, allow domain.PermissionKind) ([]*domain.UserPermission, error) {
	query := `SELECT ` + permissionColumns + ` FROM user_permissions WHERE user_email = $1 AND allow = $2 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, userEmail, allow)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListByValue lists all grants scoping users to a resource value
func (r *PostgresPermissionRepository) ListByValue(ctx context.Context, allow domain.PermissionKind, forValue string) ([]*domain.UserPermission, error) {
	query := `SELECT ` + permissionColumns + ` FROM user_permissions WHERE allow = $1 AND for_value = $2 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, allow, forValue)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// GetDefault retrieves the user's default grant for a kind
func (r *PostgresPermissionRepository) GetDefault(ctx context.Context, userEmail string, allow domain.PermissionKind) (*domain.UserPermission, error) {
	query := `SELECT ` + permissionColumns + ` FROM user_permissions WHERE user_email = $1 AND allow = $2 AND is_default`
	return r.scanOne(r.pool.QueryRow(ctx, query, userEmail, allow))
}

// Delete removes a grant by triple
func (r *PostgresPermissionRepository) Delete(ctx context.Context, userEmail string, allow domain.PermissionKind, forValue string) error {
	query := `DELETE FROM user_permissions WHERE user_email = $1 AND allow = $2 AND for_value = $3`
	result, err := r.pool.Exec(ctx, query, userEmail, allow, forValue)
	if err != nil {
		return mapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresPermissionRepository) scanOne(row pgx.Row) (*domain.UserPermission, error) {
	perm := &domain.UserPermission{}
	err := row.Scan(
		&perm.ID,
		&perm.UserEmail,
		&perm.Allow,
		&perm.ForValue,
		&perm.ApplyToAll,
		&perm.IsDefault,
		&perm.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPostgresError(err)
	}
	return perm, nil
}

func (r *PostgresPermissionRepository) scanAll(rows pgx.Rows) ([]*domain.UserPermission, error) {
	perms := make([]*domain.UserPermission, 0)
	for rows.Next() {
		perm := &domain.UserPermission{}
		err := rows.Scan(
			&perm.ID,
			&perm.UserEmail,
			&perm.Allow,
			&perm.ForValue,
			&perm.ApplyToAll,
			&perm.IsDefault,
			&perm.CreatedAt,
		)
		if err != nil {
			return nil, mapPostgresError(err)
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}
