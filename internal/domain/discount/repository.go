package discount

import (
	"context"

	"github.com/flexprice/subscriptions/internal/types"
)

// Repository defines the interface for discount persistence operations
type Repository interface {
	Create(ctx context.Context, discount *Discount) error
	Get(ctx context.Context, id string) (*Discount, error)
	GetByCode(ctx context.Context, code string) (*Discount, error)
	List(ctx context.Context, filter *types.DiscountFilter) ([]*Discount, error)
	Count(ctx context.Context, filter *types.DiscountFilter) (int, error)
	Update(ctx context.Context, discount *Discount) error

	// CreateUsage appends to the usage ledger. Usage rows are never updated or deleted.
	CreateUsage(ctx context.Context, usage *DiscountUsage) error
	CountUsages(ctx context.Context, filter *types.DiscountUsageFilter) (int, error)
}
