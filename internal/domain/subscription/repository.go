package subscription

import (
	"context"

	"github.com/flexprice/subscriptions/internal/types"
)

// Repository defines the interface for subscription persistence operations
type Repository interface {
	// CreateWithLines persists a subscription and its lines together
	CreateWithLines(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)

	// GetForUpdate reads the subscription holding a row lock until the
	// surrounding transaction ends. Must be called inside postgres.IClient.WithTx.
	GetForUpdate(ctx context.Context, id string) (*Subscription, error)
	GetWithLines(ctx context.Context, id string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)
	Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error)

	AddLine(ctx context.Context, line *SubscriptionLine) error
	ListLines(ctx context.Context, subscriptionID string) ([]*SubscriptionLine, error)
}
