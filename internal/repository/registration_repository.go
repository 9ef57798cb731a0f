package repository

import (
	"context"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// RegistrationRepository defines data access for company registrations.
type RegistrationRepository interface {
	// Create creates a new registration
	Create(ctx context.Context, reg *domain.Registration) error
	// GetByUser retrieves the registration owned by a user, nil when absent
	GetByUser(ctx context.Context, userEmail string) (*domain.Registration, error)
	// GetByCompany retrieves the registration that owns a company, nil when absent
	GetByCompany(ctx context.Context, companyName string) (*domain.Registration, error)
	// ExistsByUser checks whether a user already owns a registration
	ExistsByUser(ctx context.Context, userEmail string) (bool, error)
	// Update updates a registration
	Update(ctx context.Context, reg *domain.Registration) error
	// Delete deletes a registration by ID
	Delete(ctx context.Context, id string) error
}
