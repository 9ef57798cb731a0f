package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// PostgresResourceRepository implements ResourceRepository using PostgreSQL
type PostgresResourceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresResourceRepository creates a new PostgresResourceRepository
func NewPostgresResourceRepository(pool *pgxpool.Pool) *PostgresResourceRepository {
	return &PostgresResourceRepository{pool: pool}
}

// ListWarehouses lists all warehouses belonging to a company
func (r *PostgresResourceRepository) ListWarehouses(ctx context.Context, companyName string) ([]*domain.Warehouse, error) {
	query := `SELECT id, name, company_name, created_at FROM warehouses WHERE company_name = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, companyName)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	warehouses := make([]*domain.Warehouse, 0)
	for rows.Next() {
		w := &domain.Warehouse{}
		if err := rows.Scan(&w.ID, &w.Name, &w.CompanyName, &w.CreatedAt); err != nil {
			return nil, mapPostgresError(err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

// FindWarehouseByPrefix finds the first company warehouse whose name starts with prefix
func (r *PostgresResourceRepository) FindWarehouseByPrefix(ctx context.Context, companyName, prefix string) (*domain.Warehouse, error) {
	query := `
		SELECT id, name, company_name, created_at
		FROM warehouses
		WHERE company_name = $1 AND name LIKE $2 || '%'
		ORDER BY name
		LIMIT 1
	`
	w := &domain.Warehouse{}
	err := r.pool.QueryRow(ctx, query, companyName, prefix).Scan(&w.ID, &w.Name, &w.CompanyName, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPostgresError(err)
	}
	return w, nil
}

// GetCustomerByName retrieves a customer by name
func (r *PostgresResourceRepository) GetCustomerByName(ctx context.Context, name string) (*domain.Customer, error) {
	query := `
		SELECT id, customer_name, customer_type, customer_group, territory, cost_center, created_at
		FROM customers
		WHERE customer_name = $1
	`
	c := &domain.Customer{}
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&c.ID,
		&c.Name,
		&c.CustomerType,
		&c.CustomerGroup,
		&c.Territory,
		&c.CostCenter,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPostgresError(err)
	}
	return c, nil
}

// CreateCustomer creates a customer
func (r *PostgresResourceRepository) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, customer_name, customer_type, customer_group, territory, cost_center, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.Name,
		customer.CustomerType,
		customer.CustomerGroup,
		customer.Territory,
		customer.CostCenter,
		customer.CreatedAt,
	)
	return mapPostgresError(err)
}

// ListCostCenters lists all cost centers belonging to a company
func (r *PostgresResourceRepository) ListCostCenters(ctx context.Context, companyName string) ([]*domain.CostCenter, error) {
	query := `SELECT id, name, company_name, created_at FROM cost_centers WHERE company_name = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, companyName)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	centers := make([]*domain.CostCenter, 0)
	for rows.Next() {
		cc := &domain.CostCenter{}
		if err := rows.Scan(&cc.ID, &cc.Name, &cc.CompanyName, &cc.CreatedAt); err != nil {
			return nil, mapPostgresError(err)
		}
		centers = append(centers, cc)
	}
	return centers, rows.Err()
}
