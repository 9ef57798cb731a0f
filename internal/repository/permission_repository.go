package repository

import (
	"context"

	"github.com/draftpos/HavanoCompany/internal/domain"
)

// PermissionRepository defines data access for user permissions.
type PermissionRepository interface {
	// Create creates a permission grant. Returns domain.ErrAlreadyExists
	// when the (user, kind, value) triple or the default slot is taken.
	Create(ctx context.Context, perm *domain.UserPermission) error
	// Exists checks whether a grant exists for the triple
	Exists(ctx context.Context, userEmail string, allow domain.PermissionKind, forValue string) (bool, error)
	// Get retrieves a grant by triple, nil when absent
	Get(ctx context.Context, userEmail string, allow domain.PermissionKind, forValue string) (*domain.UserPermission, error)
	// ListByUser lists a user's grants for a resource kind
	ListByUser(ctx context.Context, userEmail string, allow domain.PermissionKind) ([]*domain.UserPermission, error)
	// ListByValue lists all grants scoping users to a resource value
	ListByValue(ctx context.Context, allow domain.PermissionKind, forValue string) ([]*domain.UserPermission, error)
	// GetDefault retrieves the user's default grant for a kind, nil when absent
	GetDefault(ctx context.Context, userEmail string, allow domain.PermissionKind) (*domain.UserPermission, error)
	// Delete removes a grant by triple
	Delete(ctx context.Context, userEmail string, allow domain.PermissionKind, forValue string) error
}
