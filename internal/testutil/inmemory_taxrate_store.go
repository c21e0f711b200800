package testutil

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/taxrate"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
)

// InMemoryTaxRateStore implements taxrate.Repository
type InMemoryTaxRateStore struct {
	*InMemoryStore[*taxrate.TaxRate]
}

func NewInMemoryTaxRateStore() *InMemoryTaxRateStore {
	return &InMemoryTaxRateStore{
		InMemoryStore: NewInMemoryStore(func(t *taxrate.TaxRate) *taxrate.TaxRate {
			c := *t
			return &c
		}),
	}
}

func taxRateFilterFn(ctx context.Context, t *taxrate.TaxRate, filter any) bool {
	f, ok := filter.(*types.TaxRateFilter)
	if !ok {
		return CheckTenantFilter(ctx, t.TenantID)
	}
	if !checkBaseFilter(ctx, t.BaseModel, f.QueryFilter) {
		return false
	}
	if len(f.TaxRateIDs) > 0 && !lo.Contains(f.TaxRateIDs, t.ID) {
		return false
	}
	if f.IsActive != nil && t.IsActive != *f.IsActive {
		return false
	}
	return true
}

func taxRateSortFn(i, j *taxrate.TaxRate) bool {
	return newestFirst(i.CreatedAt.UnixNano(), j.CreatedAt.UnixNano(), i.ID, j.ID)
}

func (s *InMemoryTaxRateStore) Create(ctx context.Context, t *taxrate.TaxRate) error {
	return s.InMemoryStore.Create(ctx, t.ID, t)
}

func (s *InMemoryTaxRateStore) Get(ctx context.Context, id string) (*taxrate.TaxRate, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenantFilter(ctx, t.TenantID) {
		return nil, notFound("tax rate", id)
	}
	return t, nil
}

func (s *InMemoryTaxRateStore) List(ctx context.Context, filter *types.TaxRateFilter) ([]*taxrate.TaxRate, error) {
	if filter == nil {
		filter = types.NewTaxRateFilter()
	}
	filter.QueryFilter = orDefault(filter.QueryFilter)
	return s.InMemoryStore.List(ctx, filter, taxRateFilterFn, taxRateSortFn)
}

func (s *InMemoryTaxRateStore) Count(ctx context.Context, filter *types.TaxRateFilter) (int, error) {
	if filter == nil {
		filter = types.NewTaxRateFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, taxRateFilterFn)
}

func (s *InMemoryTaxRateStore) Update(ctx context.Context, t *taxrate.TaxRate) error {
	if err := s.InMemoryStore.Update(ctx, t.ID, t); err != nil {
		return notFound("tax rate", t.ID)
	}
	return nil
}
