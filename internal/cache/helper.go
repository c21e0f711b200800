package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// StartCacheSpan starts a child span for a cache lookup. It returns nil when
// no sentry hub is attached to ctx.
func StartCacheSpan(ctx context.Context, entity, operation string, params map[string]any) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	name := "cache." + entity + "." + operation
	span := sentry.StartSpan(ctx, name)
	span.Op = "db.cache"
	span.Description = name
	span.SetData("entity", entity)
	span.SetData("operation", operation)
	for k, v := range params {
		span.SetData(k, v)
	}
	return span
}

// FinishSpan records the lookup result and finishes span. A nil span is ignored.
func FinishSpan(span *sentry.Span, hit bool) {
	if span == nil {
		return
	}
	span.SetData("hit", hit)
	span.Finish()
}
