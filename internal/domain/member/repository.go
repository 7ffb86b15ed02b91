package member

import "context"

// Repository defines the interface for member persistence
type Repository interface {
	Create(ctx context.Context, member *Member) error
	Get(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*Member, error)
	GetBySubscriptionID(ctx context.Context, tenantID, subscriptionID string) (*Member, error)
	Update(ctx context.Context, member *Member) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Member, error)
}
