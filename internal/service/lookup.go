package service

import (
	"context"

	"github.com/flexprice/subscriptions/internal/cache"
	"github.com/flexprice/subscriptions/internal/domain/plan"
	"github.com/flexprice/subscriptions/internal/domain/taxrate"
	"github.com/flexprice/subscriptions/internal/types"
)

// cachedGet reads through the lookup cache. Cached values are shared and must
// be treated as read only by callers.
func cachedGet[T any](
	ctx context.Context,
	params ServiceParams,
	prefix, entity, id string,
	load func(ctx context.Context, id string) (T, error),
) (T, error) {
	key := cache.GenerateKey(prefix, types.GetTenantID(ctx), id)

	span := cache.StartCacheSpan(ctx, entity, "get", map[string]any{"key": key})
	if params.Cache != nil {
		if v, ok := params.Cache.Get(ctx, key); ok {
			if typed, ok := v.(T); ok {
				params.Metrics.CacheLookup(entity, true)
				cache.FinishSpan(span, true)
				return typed, nil
			}
		}
	}
	params.Metrics.CacheLookup(entity, false)
	cache.FinishSpan(span, false)

	v, err := load(ctx, id)
	if err != nil {
		return v, err
	}
	if params.Cache != nil {
		params.Cache.Set(ctx, key, v, 0)
	}
	return v, nil
}

func invalidate(ctx context.Context, params ServiceParams, prefix, id string) {
	if params.Cache == nil {
		return
	}
	params.Cache.Delete(ctx, cache.GenerateKey(prefix, types.GetTenantID(ctx), id))
}

func getPlan(ctx context.Context, params ServiceParams, id string) (*plan.Plan, error) {
	return cachedGet(ctx, params, cache.PrefixPlan, "plan", id, params.PlanRepo.Get)
}

func getTaxRate(ctx context.Context, params ServiceParams, id string) (*taxrate.TaxRate, error) {
	return cachedGet(ctx, params, cache.PrefixTaxRate, "tax_rate", id, params.TaxRateRepo.Get)
}
