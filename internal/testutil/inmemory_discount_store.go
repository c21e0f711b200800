package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/subscriptions/internal/domain/discount"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
)

// InMemoryDiscountStore implements discount.Repository. Codes are unique per tenant.
type InMemoryDiscountStore struct {
	*InMemoryStore[*discount.Discount]

	codeMu sync.Mutex
	usages *InMemoryStore[*discount.DiscountUsage]
}

func NewInMemoryDiscountStore() *InMemoryDiscountStore {
	return &InMemoryDiscountStore{
		InMemoryStore: NewInMemoryStore(func(d *discount.Discount) *discount.Discount {
			c := *d
			c.ApplicableProductIDs = append([]string(nil), d.ApplicableProductIDs...)
			return &c
		}),
		usages: NewInMemoryStore(func(u *discount.DiscountUsage) *discount.DiscountUsage {
			c := *u
			return &c
		}),
	}
}

func discountFilterFn(ctx context.Context, d *discount.Discount, filter any) bool {
	f, ok := filter.(*types.DiscountFilter)
	if !ok {
		return CheckTenantFilter(ctx, d.TenantID)
	}
	if !checkBaseFilter(ctx, d.BaseModel, f.QueryFilter) {
		return false
	}
	if len(f.DiscountIDs) > 0 && !lo.Contains(f.DiscountIDs, d.ID) {
		return false
	}
	if f.Code != "" && lo.FromPtr(d.Code) != f.Code {
		return false
	}
	if f.IsActive != nil && d.IsActive != *f.IsActive {
		return false
	}
	return true
}

func discountSortFn(i, j *discount.Discount) bool {
	return newestFirst(i.CreatedAt.UnixNano(), j.CreatedAt.UnixNano(), i.ID, j.ID)
}

func (s *InMemoryDiscountStore) Create(ctx context.Context, d *discount.Discount) error {
	s.codeMu.Lock()
	defer s.codeMu.Unlock()

	if d.Code != nil {
		if _, exists := s.Find(ctx, func(other *discount.Discount) bool {
			return other.TenantID == d.TenantID && lo.FromPtr(other.Code) == *d.Code
		}); exists {
			return alreadyExists("discount", map[string]any{"code": *d.Code})
		}
	}
	return s.InMemoryStore.Create(ctx, d.ID, d)
}

func (s *InMemoryDiscountStore) Get(ctx context.Context, id string) (*discount.Discount, error) {
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenantFilter(ctx, d.TenantID) {
		return nil, notFound("discount", id)
	}
	return d, nil
}

func (s *InMemoryDiscountStore) GetByCode(ctx context.Context, code string) (*discount.Discount, error) {
	d, ok := s.Find(ctx, func(d *discount.Discount) bool {
		return CheckTenantFilter(ctx, d.TenantID) &&
			d.Status == types.StatusPublished &&
			lo.FromPtr(d.Code) == code
	})
	if !ok {
		return nil, notFound("discount", code)
	}
	return d, nil
}

func (s *InMemoryDiscountStore) List(ctx context.Context, filter *types.DiscountFilter) ([]*discount.Discount, error) {
	if filter == nil {
		filter = types.NewDiscountFilter()
	}
	filter.QueryFilter = orDefault(filter.QueryFilter)
	return s.InMemoryStore.List(ctx, filter, discountFilterFn, discountSortFn)
}

func (s *InMemoryDiscountStore) Count(ctx context.Context, filter *types.DiscountFilter) (int, error) {
	if filter == nil {
		filter = types.NewDiscountFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, discountFilterFn)
}

func (s *InMemoryDiscountStore) Update(ctx context.Context, d *discount.Discount) error {
	if err := s.InMemoryStore.Update(ctx, d.ID, d); err != nil {
		return notFound("discount", d.ID)
	}
	return nil
}

func (s *InMemoryDiscountStore) CreateUsage(ctx context.Context, usage *discount.DiscountUsage) error {
	return s.usages.Create(ctx, usage.ID, usage)
}

func (s *InMemoryDiscountStore) CountUsages(ctx context.Context, filter *types.DiscountUsageFilter) (int, error) {
	return s.usages.Count(ctx, filter, func(ctx context.Context, u *discount.DiscountUsage, _ any) bool {
		return CheckTenantFilter(ctx, u.TenantID) &&
			u.DiscountID == filter.DiscountID &&
			(filter.UserID == "" || u.UserID == filter.UserID)
	})
}

// ListUsages returns the whole ledger, for assertions
func (s *InMemoryDiscountStore) ListUsages(ctx context.Context) []*discount.DiscountUsage {
	usages, _ := s.usages.List(ctx, nil, nil, nil)
	return usages
}

func (s *InMemoryDiscountStore) Clear() {
	s.InMemoryStore.Clear()
	s.usages.Clear()
}
