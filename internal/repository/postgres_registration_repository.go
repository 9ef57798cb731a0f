package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// PostgresRegistrationRepository implements RegistrationRepository using PostgreSQL
type PostgresRegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistrationRepository creates a new PostgresRegistrationRepository
func NewPostgresRegistrationRepository(pool *pgxpool.Pool) *PostgresRegistrationRepository {
	return &PostgresRegistrationRepository{pool: pool}
}

const registrationColumns = `
	id, user_email, organization_name, full_name, email, phone, industry,
	country, city, status, COALESCE(company_name, '') as company_name,
	created_at, updated_at
`

// Create creates a new registration
func (r *PostgresRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO company_registrations
			(id, user_email, organization_name, full_name, email, phone, industry, country, city, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.UserEmail,
		reg.OrganizationName,
		reg.FullName,
		reg.Email,
		reg.Phone,
		reg.Industry,
		reg.Country,
		reg.City,
		reg.Status,
		reg.CreatedAt,
		reg.UpdatedAt,
	)
	return mapPostgresError(err)
}

// GetByUser retrieves the registration owned by a user
func (r *PostgresRegistrationRepository) GetByUser(ctx context.Context, userEmail string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM company_registrations WHERE user_email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, userEmail))
}

// GetByCompany retrieves the registration that owns a company
func (r *PostgresRegistrationRepository) GetByCompany(ctx context.Context, companyName string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM company_registrations WHERE company_name = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, companyName))
}

// ExistsByUser checks whether a user already owns a registration
func (r *PostgresRegistrationRepository) ExistsByUser(ctx context.Context, userEmail string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM company_registrations WHERE user_email = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userEmail).Scan(&exists)
	return exists, mapPostgresError(err)
}

// Update updates a registration
func (r *PostgresRegistrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	query := `
		UPDATE company_registrations
		SET organization_name = $2, full_name = $3, email = $4, phone = $5,
		    industry = $6, country = $7, city = $8, status = $9,
		    company_name = $10, updated_at = $11
		WHERE id = $1
	`
	reg.UpdatedAt = time.Now()
	var companyName interface{}
	if reg.CompanyName != "" {
		companyName = reg.CompanyName
	}
	result, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.OrganizationName,
		reg.FullName,
		reg.Email,
		reg.Phone,
		reg.Industry,
		reg.Country,
		reg.City,
		reg.Status,
		companyName,
		reg.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete deletes a registration by ID
func (r *PostgresRegistrationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM company_registrations WHERE id = $1`, id)
	if err != nil {
		return mapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRegistrationRepository) scanOne(row pgx.Row) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := row.Scan(
		&reg.ID,
		&reg.UserEmail,
		&reg.OrganizationName,
		&reg.FullName,
		&reg.Email,
		&reg.Phone,
		&reg.Industry,
		&reg.Country,
		&reg.City,
		&reg.Status,
		&reg.CompanyName,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPostgresError(err)
	}
	return reg, nil
}
