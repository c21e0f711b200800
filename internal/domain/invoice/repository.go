package invoice

import (
	"context"

	"github.com/flexprice/subscriptions/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// CreateWithLines persists an invoice and its line snapshots.
	// Returns an ierr.ErrAlreadyExists marked error when an invoice with the
	// same idempotency key or (subscription_id, period_start) already exists.
	CreateWithLines(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	GetForUpdate(ctx context.Context, id string) (*Invoice, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}
