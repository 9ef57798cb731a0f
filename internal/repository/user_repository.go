package repository

import (
	"context"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// UserRepository defines data access for user accounts and role grants.
type UserRepository interface {
	// Create creates a new user. Returns domain.ErrAlreadyExists on a
	// duplicate email.
	Create(ctx context.Context, user *domain.User) error
	// GetByEmail retrieves a user, nil when absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Exists checks whether a user exists
	Exists(ctx context.Context, email string) (bool, error)
	// SetUserType updates the account classification
	SetUserType(ctx context.Context, email, userType string) error
	// GrantRole grants a role to a user. Granting an already-held role is
	// a no-op; the bool reports whether a new grant was written.
	GrantRole(ctx context.Context, email, role string) (bool, error)
	// HasRole checks whether a user holds a role
	HasRole(ctx context.Context, email, role string) (bool, error)
	// ListRoles lists the roles a user holds
	ListRoles(ctx context.Context, email string) ([]string, error)
}
