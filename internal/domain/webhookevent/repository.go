package webhookevent

import (
	"context"
	"time"
)

// Repository defines the interface for webhook event log persistence
type Repository interface {
	Create(ctx context.Context, event *WebhookEvent) error
	Get(ctx context.Context, id string) (*WebhookEvent, error)
	// Update persists the processing outcome (processed flag, error
	// message, processed timestamp) for an already logged event.
	Update(ctx context.Context, event *WebhookEvent) error
	List(ctx context.Context, filter *Filter) ([]*WebhookEvent, error)
	// CountFailuresSince returns how many events for the tenant failed
	// processing within the window. Feeds the health thresholds.
	CountFailuresSince(ctx context.Context, tenantID string, since time.Time) (int, error)
	// Stats returns the tenant's delivery log grouped by outcome.
	Stats(ctx context.Context, tenantID string) (*Stats, error)
}
