package repository

import (
	"context"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// CompanyRepository defines data access for companies.
type CompanyRepository interface {
	// Create creates a company together with its seed warehouses and cost
	// center in a single transaction. Returns domain.ErrConflict on a
	// transient write conflict and domain.ErrAlreadyExists when the name
	// or abbreviation is taken.
	Create(ctx context.Context, company *domain.Company) error
	// GetByName retrieves a company by name, nil when absent
	GetByName(ctx context.Context, name string) (*domain.Company, error)
	// Exists checks whether a company with the given name exists
	Exists(ctx context.Context, name string) (bool, error)
	// Delete deletes a company by name (cascades to its resources)
	Delete(ctx context.Context, name string) error
}
