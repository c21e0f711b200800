package sentry

import (
	"context"
	"errors"
	"testing"

	"github.com/flexprice/subscriptions/internal/config"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestService_DisabledIsNoop(t *testing.T) {
	svc := NewSentryService(config.GetDefaultConfig(), logger.NewNoopLogger())
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	assert.NotPanics(t, func() {
		svc.CaptureException(errors.New("boom"))
		svc.AddBreadcrumb("billing", "invoice generated", map[string]any{"invoice_id": "inv_1"})
	})

	span, spanCtx := svc.StartDBSpan(ctx, "postgres.transaction", nil)
	assert.Nil(t, span)
	assert.Equal(t, ctx, spanCtx)

	var nilSvc *Service
	assert.False(t, nilSvc.Enabled())
}
