package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// PostgresCompanyRepository implements CompanyRepository using PostgreSQL
type PostgresCompanyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCompanyRepository creates a new PostgresCompanyRepository
func NewPostgresCompanyRepository(pool *pgxpool.Pool) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{pool: pool}
}

// Create creates a company and seeds its default warehouses and cost
// center in one transaction. The multi-row insert is what makes this the
// deadlock-prone step; callers retry on domain.ErrConflict.
func (r *PostgresCompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapPostgresError(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO companies (id, name, abbr, currency, country, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		company.ID,
		company.Name,
		company.Abbr,
		company.Currency,
		company.Country,
		company.Enabled,
		company.CreatedAt,
		company.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}

	for _, name := range domain.SeedWarehouseNames {
		_, err = tx.Exec(ctx, `
			INSERT INTO warehouses (id, name, company_name, created_at)
			VALUES ($1, $2, $3, $4)
		`,
			uuid.New().String(),
			fmt.Sprintf("%s - %s", name, company.Abbr),
			company.Name,
			company.CreatedAt,
		)
		if err != nil {
			return mapPostgresError(err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO cost_centers (id, name, company_name, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		uuid.New().String(),
		fmt.Sprintf("%s - %s", domain.DefaultCostCenterPrefix, company.Abbr),
		company.Name,
		company.CreatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}

	return mapPostgresError(tx.Commit(ctx))
}

// GetByName retrieves a company by name
func (r *PostgresCompanyRepository) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	query := `
		SELECT id, name, abbr, currency, country, enabled, created_at, updated_at
		FROM companies
		WHERE name = $1
	`
	company := &domain.Company{}
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&company.ID,
		&company.Name,
		&company.Abbr,
		&company.Currency,
		&company.Country,
		&company.Enabled,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPostgresError(err)
	}
	return company, nil
}

// Exists checks whether a company with the given name exists
func (r *PostgresCompanyRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM companies WHERE name = $1)`, name).Scan(&exists)
	return exists, mapPostgresError(err)
}

// Delete deletes a company by name
func (r *PostgresCompanyRepository) Delete(ctx context.Context, name string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE name = $1`, name)
	if err != nil {
		return mapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
