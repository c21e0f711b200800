package testutil

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/payment"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore(func(p *payment.Payment) *payment.Payment {
			c := *p
			return &c
		}),
	}
}

func paymentFilterFn(ctx context.Context, p *payment.Payment, filter any) bool {
	f, ok := filter.(*types.PaymentFilter)
	if !ok {
		return CheckTenantFilter(ctx, p.TenantID)
	}
	if !checkBaseFilter(ctx, p.BaseModel, f.QueryFilter) {
		return false
	}
	if len(f.PaymentIDs) > 0 && !lo.Contains(f.PaymentIDs, p.ID) {
		return false
	}
	if f.InvoiceID != "" && p.InvoiceID != f.InvoiceID {
		return false
	}
	if f.TimeRangeFilter != nil && !f.TimeRangeFilter.Contains(p.PaymentDate) {
		return false
	}
	return true
}

func paymentSortFn(i, j *payment.Payment) bool {
	return newestFirst(i.CreatedAt.UnixNano(), j.CreatedAt.UnixNano(), i.ID, j.ID)
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenantFilter(ctx, p.TenantID) {
		return nil, notFound("payment", id)
	}
	return p, nil
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	filter.QueryFilter = orDefault(filter.QueryFilter)
	return s.InMemoryStore.List(ctx, filter, paymentFilterFn, paymentSortFn)
}

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, paymentFilterFn)
}
