package postgres

import (
	"context"

	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/logger"
	sentryService "github.com/flexprice/subscriptions/internal/sentry"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/getsentry/sentry-go"
)

// SentryClient traces every unit of work as a sentry span
type SentryClient struct {
	client IClient
	sentry *sentryService.Service
	logger *logger.Logger
}

func NewSentryClient(client IClient, sentry *sentryService.Service, logger *logger.Logger) IClient {
	return &SentryClient{
		client: client,
		sentry: sentry,
		logger: logger,
	}
}

// WithTx runs fn in a transaction span. Only database failures are reported,
// domain errors returned by fn roll back quietly.
func (c *SentryClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	span, spanCtx := c.sentry.StartDBSpan(ctx, "postgres.transaction", map[string]any{
		"tenant_id": types.GetTenantID(ctx),
	})

	err := c.client.WithTx(spanCtx, fn)

	if span != nil {
		span.Status = sentry.SpanStatusOK
		if err != nil {
			span.Status = sentry.SpanStatusInternalError
		}
		span.Finish()
	}

	if err != nil && ierr.IsDatabase(err) {
		c.sentry.AddBreadcrumb("postgres", "transaction failed", map[string]any{
			"request_id": types.GetRequestID(ctx),
		})
		c.sentry.CaptureException(err)
	}
	return err
}
