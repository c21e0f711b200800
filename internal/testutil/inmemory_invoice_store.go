package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository. It enforces the same
// unique keys as the invoices table so racing generators observe conflicts.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	uniqueMu sync.Mutex
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore(cloneInvoice),
	}
}

func cloneInvoice(inv *invoice.Invoice) *invoice.Invoice {
	c := *inv
	c.Lines = lo.Map(inv.Lines, func(l *invoice.InvoiceLine, _ int) *invoice.InvoiceLine {
		lc := *l
		return &lc
	})
	return &c
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter any) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok {
		return CheckTenantFilter(ctx, inv.TenantID)
	}
	if !checkBaseFilter(ctx, inv.BaseModel, f.QueryFilter) {
		return false
	}
	if len(f.InvoiceIDs) > 0 && !lo.Contains(f.InvoiceIDs, inv.ID) {
		return false
	}
	if f.SubscriptionID != "" && inv.SubscriptionID != f.SubscriptionID {
		return false
	}
	if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
		return false
	}
	if len(f.InvoiceStatuses) > 0 && !lo.Contains(f.InvoiceStatuses, inv.InvoiceStatus) {
		return false
	}
	if f.TimeRangeFilter != nil && !f.TimeRangeFilter.Contains(inv.IssueDate) {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	return newestFirst(i.CreatedAt.UnixNano(), j.CreatedAt.UnixNano(), i.ID, j.ID)
}

func (s *InMemoryInvoiceStore) CreateWithLines(ctx context.Context, inv *invoice.Invoice) error {
	s.uniqueMu.Lock()
	defer s.uniqueMu.Unlock()

	details := map[string]any{
		"invoice_id":      inv.ID,
		"subscription_id": inv.SubscriptionID,
		"period_start":    inv.PeriodStart,
	}
	for _, idx := range []struct {
		name    string
		matches func(other *invoice.Invoice) bool
	}{
		{postgres.IndexInvoiceIdempotencyKey, func(other *invoice.Invoice) bool {
			return other.IdempotencyKey == inv.IdempotencyKey
		}},
		{postgres.IndexInvoiceSubscriptionPeriod, func(other *invoice.Invoice) bool {
			return other.SubscriptionID == inv.SubscriptionID && other.PeriodStart.Equal(inv.PeriodStart)
		}},
		{postgres.IndexInvoiceNumber, func(other *invoice.Invoice) bool {
			return other.InvoiceNumber == inv.InvoiceNumber
		}},
	} {
		if _, exists := s.Find(ctx, func(other *invoice.Invoice) bool {
			return other.TenantID == inv.TenantID && idx.matches(other)
		}); exists {
			return UniqueViolation(idx.name, "invoice", details)
		}
	}
	return s.InMemoryStore.Create(ctx, inv.ID, inv)
}
