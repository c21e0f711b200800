package taxrate

import (
	"context"

	"github.com/flexprice/subscriptions/internal/types"
)

// Repository defines the interface for taxrate persistence operations
type Repository interface {
	Create(ctx context.Context, taxrate *TaxRate) error
	Get(ctx context.Context, id string) (*TaxRate, error)
	List(ctx context.Context, filter *types.TaxRateFilter) ([]*TaxRate, error)
	Count(ctx context.Context, filter *types.TaxRateFilter) (int, error)
	Update(ctx context.Context, taxrate *TaxRate) error
}
