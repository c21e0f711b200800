package idempotency

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey_OrderIndependent(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeSubscriptionInvoice, map[string]any{"a": 1, "b": "x"})
	b := g.GenerateKey(ScopeSubscriptionInvoice, map[string]any{"b": "x", "a": 1})

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "subscription_invoice-"))
	assert.Len(t, strings.TrimPrefix(a, "subscription_invoice-"), 16)
	assert.True(t, g.ValidateKey(ScopeSubscriptionInvoice, map[string]any{"a": 1, "b": "x"}, a))
}

func TestSubscriptionInvoiceKey(t *testing.T) {
	g := NewGenerator()
	ist := time.FixedZone("IST", 5*3600+1800)

	utc := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sameInstant := utc.In(ist)

	assert.Equal(t,
		g.SubscriptionInvoiceKey("subs_1", utc),
		g.SubscriptionInvoiceKey("subs_1", sameInstant),
	)
	assert.NotEqual(t,
		g.SubscriptionInvoiceKey("subs_1", utc),
		g.SubscriptionInvoiceKey("subs_2", utc),
	)
	assert.NotEqual(t,
		g.SubscriptionInvoiceKey("subs_1", utc),
		g.SubscriptionInvoiceKey("subs_1", utc.AddDate(0, 1, 0)),
	)
}

func TestValidateSubscriptionInvoiceKey(t *testing.T) {
	g := NewGenerator()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	key := g.SubscriptionInvoiceKey("subs_1", start)

	assert.True(t, g.ValidateSubscriptionInvoiceKey("subs_1", start, key))
	assert.True(t, g.ValidateSubscriptionInvoiceKey("subs_1", start.In(time.FixedZone("PST", -8*3600)), key))
	assert.False(t, g.ValidateSubscriptionInvoiceKey("subs_2", start, key))
	assert.False(t, g.ValidateSubscriptionInvoiceKey("subs_1", start.AddDate(0, 1, 0), key))
}
