package testutil

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/plan"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

// NewInMemoryPlanStore creates a new in-memory plan store
func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore(func(p *plan.Plan) *plan.Plan {
			c := *p
			return &c
		}),
	}
}

func planFilterFn(ctx context.Context, p *plan.Plan, filter any) bool {
	f, ok := filter.(*types.PlanFilter)
	if !ok {
		return CheckTenantFilter(ctx, p.TenantID)
	}
	if !checkBaseFilter(ctx, p.BaseModel, f.QueryFilter) {
		return false
	}
	if len(f.PlanIDs) > 0 && !lo.Contains(f.PlanIDs, p.ID) {
		return false
	}
	return true
}

func planSortFn(i, j *plan.Plan) bool {
	return newestFirst(i.CreatedAt.UnixNano(), j.CreatedAt.UnixNano(), i.ID, j.ID)
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenantFilter(ctx, p.TenantID) {
		return nil, notFound("plan", id)
	}
	return p, nil
}

func (s *InMemoryPlanStore) List(ctx context.Context, filter *types.PlanFilter) ([]*plan.Plan, error) {
	if filter == nil {
		filter = types.NewPlanFilter()
	}
	filter.QueryFilter = orDefault(filter.QueryFilter)
	return s.InMemoryStore.List(ctx, filter, planFilterFn, planSortFn)
}

func (s *InMemoryPlanStore) Count(ctx context.Context, filter *types.PlanFilter) (int, error) {
	if filter == nil {
		filter = types.NewPlanFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, planFilterFn)
}
