package portal

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, a *PortalAccess) error
	// GetByToken looks a capability up by exact token value.
	GetByToken(ctx context.Context, token string) (*PortalAccess, error)
	// Deactivate sets is_active to false. Deactivating an already
	// inactive token is a no-op.
	Deactivate(ctx context.Context, token string) error
}
