package repository

import (
	"context"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// ResourceRepository defines data access for the per-company default
// resources: warehouses, customers and cost centers.
type ResourceRepository interface {
	// ListWarehouses lists all warehouses belonging to a company
	ListWarehouses(ctx context.Context, companyName string) ([]*domain.Warehouse, error)
	// FindWarehouseByPrefix finds the first company warehouse whose name
	// starts with prefix, nil when absent
	FindWarehouseByPrefix(ctx context.Context, companyName, prefix string) (*domain.Warehouse, error)
	// GetCustomerByName retrieves a customer, nil when absent
	GetCustomerByName(ctx context.Context, name string) (*domain.Customer, error)
	// CreateCustomer creates a customer. Returns domain.ErrAlreadyExists
	// on a duplicate name.
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	// ListCostCenters lists all cost centers belonging to a company
	ListCostCenters(ctx context.Context, companyName string) ([]*domain.CostCenter, error)
}
