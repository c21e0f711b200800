package payment

import (
	"context"

	"github.com/flexprice/subscriptions/internal/types"
)

// Repository defines the interface for payment persistence operations.
// Payments are never updated.
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	Count(ctx context.Context, filter *types.PaymentFilter) (int, error)
}
