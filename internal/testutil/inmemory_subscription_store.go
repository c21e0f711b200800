package testutil

import (
	"context"
	"sort"

	"github.com/flexprice/subscriptions/internal/domain/subscription"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
	lines *InMemoryStore[*subscription.SubscriptionLine]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore(func(s *subscription.Subscription) *subscription.Subscription {
			c := *s
			c.Lines = nil
			return &c
		}),
		lines: NewInMemoryStore(func(l *subscription.SubscriptionLine) *subscription.SubscriptionLine {
			c := *l
			return &c
		}),
	}
}

func subscriptionFilterFn(ctx context.Context, s *subscription.Subscription, filter any) bool {
	f, ok := filter.(*types.SubscriptionFilter)
	if !ok {
		return CheckTenantFilter(ctx, s.TenantID)
	}
	if !checkBaseFilter(ctx, s.BaseModel, f.QueryFilter) {
		return false
	}
	if len(f.SubscriptionIDs) > 0 && !lo.Contains(f.SubscriptionIDs, s.ID) {
		return false
	}
	if f.CustomerID != "" && s.CustomerID != f.CustomerID {
		return false
	}
	if f.PlanID != "" && s.PlanID != f.PlanID {
		return false
	}
	if len(f.SubscriptionStatuses) > 0 && !lo.Contains(f.SubscriptionStatuses, s.SubscriptionStatus) {
		return false
	}
	if f.TimeRangeFilter != nil && !f.TimeRangeFilter.Contains(s.CreatedAt) {
		return false
	}
	return true
}

func subscriptionSortFn(i, j *subscription.Subscription) bool {
	return newestFirst(i.CreatedAt.UnixNano(), j.CreatedAt.UnixNano(), i.ID, j.ID)
}

func (s *InMemorySubscriptionStore) CreateWithLines(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.InMemoryStore.Create(ctx, sub.ID, sub); err != nil {
		return err
	}
	for _, line := range sub.Lines {
		if err := s.lines.Create(ctx, line.ID, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenantFilter(ctx, sub.TenantID) {
		return nil, notFound("subscription", id)
	}
	return sub, nil
}

// GetForUpdate relies on MockPostgresClient serialising transactions
func (s *InMemorySubscriptionStore) GetForUpdate(ctx context.Context, id string) (*subscription.Subscription, error) {
	return s.Get(ctx, id)
}

func (s *InMemorySubscriptionStore) GetWithLines(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.Lines, err = s.ListLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.InMemoryStore.Update(ctx, sub.ID, sub); err != nil {
		return notFound("subscription", sub.ID)
	}
	return nil
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	filter.QueryFilter = orDefault(filter.QueryFilter)
	return s.InMemoryStore.List(ctx, filter, subscriptionFilterFn, subscriptionSortFn)
}

func (s *InMemorySubscriptionStore) Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, subscriptionFilterFn)
}

func (s *InMemorySubscriptionStore) AddLine(ctx context.Context, line *subscription.SubscriptionLine) error {
	if _, err := s.Get(ctx, line.SubscriptionID); err != nil {
		return err
	}
	return s.lines.Create(ctx, line.ID, line)
}

func (s *InMemorySubscriptionStore) ListLines(ctx context.Context, subscriptionID string) ([]*subscription.SubscriptionLine, error) {
	lines, err := s.lines.List(ctx, nil, func(ctx context.Context, l *subscription.SubscriptionLine, _ any) bool {
		return CheckTenantFilter(ctx, l.TenantID) && l.SubscriptionID == subscriptionID
	}, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Position < lines[j].Position
	})
	return lines, nil
}

func (s *InMemorySubscriptionStore) Clear() {
	s.InMemoryStore.Clear()
	s.lines.Clear()
}
