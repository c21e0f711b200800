package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Scope represents the scope of idempotency
type Scope string

const (
	// ScopeSubscriptionInvoice keys one invoice per subscription billing period
	ScopeSubscriptionInvoice Scope = "subscription_invoice"
)

// Generator generates idempotency keys
type Generator struct{}

// NewGenerator creates a new idempotency key generator
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey generates an idempotency key from a scope and parameters.
// Params are sorted by key so the result does not depend on map order.
func (g *Generator) GenerateKey(scope Scope, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s-%s", scope, hex.EncodeToString(hash[:8]))
}

// ValidateKey validates if an idempotency key matches expected parameters
func (g *Generator) ValidateKey(scope Scope, params map[string]any, key string) bool {
	return g.GenerateKey(scope, params) == key
}

// SubscriptionInvoiceKey is the key for the invoice of a subscription's billing
// period. The period start is normalised to UTC so the same instant expressed in
// different zones maps to the same key.
func (g *Generator) SubscriptionInvoiceKey(subscriptionID string, periodStart time.Time) string {
	return g.GenerateKey(ScopeSubscriptionInvoice, subscriptionInvoiceParams(subscriptionID, periodStart))
}

// ValidateSubscriptionInvoiceKey reports whether key was derived from this
// subscription and period start. Keys carry a truncated hash so a match on
// key alone does not prove the invoice belongs to the period.
func (g *Generator) ValidateSubscriptionInvoiceKey(subscriptionID string, periodStart time.Time, key string) bool {
	return g.ValidateKey(ScopeSubscriptionInvoice, subscriptionInvoiceParams(subscriptionID, periodStart), key)
}

func subscriptionInvoiceParams(subscriptionID string, periodStart time.Time) map[string]any {
	return map[string]any{
		"subscription_id": subscriptionID,
		"period_start":    periodStart.UTC().Format(time.RFC3339Nano),
	}
}
