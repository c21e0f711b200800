package service

import (
	"time"

	"github.com/flexprice/subscriptions/internal/api/dto"
	"github.com/flexprice/subscriptions/internal/domain/discount"
	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/domain/plan"
	"github.com/flexprice/subscriptions/internal/domain/subscription"
	"github.com/flexprice/subscriptions/internal/domain/taxrate"
	"github.com/flexprice/subscriptions/internal/idempotency"
	"github.com/flexprice/subscriptions/internal/testutil"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		s.GetCache(),
		s.GetMetrics(),
		s.GetSentry(),
		stores.PlanRepo,
		stores.TaxRateRepo,
		stores.DiscountRepo,
		stores.SubscriptionRepo,
		stores.InvoiceRepo,
		stores.PaymentRepo,
	)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (s *testFixtures) plan(period types.BillingPeriod, interval int) *plan.Plan {
	p := &plan.Plan{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:          "Plan " + string(period),
		BillingPeriod: period,
		IntervalCount: interval,
		DueDays:       30,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))
	return p
}

func (s *testFixtures) taxRate(percentage string, active bool) *taxrate.TaxRate {
	t := &taxrate.TaxRate{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_RATE),
		Name:       "GST " + percentage,
		Percentage: dec(percentage),
		IsActive:   active,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().TaxRateRepo.Create(s.GetContext(), t))
	return t
}

func (s *testFixtures) discount(code string, discountType types.DiscountType, value string, mutate ...func(d *discount.Discount)) *discount.Discount {
	d := &discount.Discount{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DISCOUNT),
		Name:         "Discount " + code,
		DiscountType: discountType,
		Value:        dec(value),
		IsActive:     true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	if code != "" {
		d.Code = lo.ToPtr(code)
	}
	for _, fn := range mutate {
		fn(d)
	}
	s.Require().NoError(s.GetStores().DiscountRepo.Create(s.GetContext(), d))
	return d
}

// subscription stores a subscription in status with the given lines
func (s *testFixtures) subscription(p *plan.Plan, status types.SubscriptionStatus, lines ...dto.CreateSubscriptionLineRequest) *subscription.Subscription {
	req := dto.CreateSubscriptionRequest{
		CustomerID: "cust_" + s.GetUUID(),
		PlanID:     p.ID,
		Lines:      lines,
	}
	sub := req.ToSubscription(s.GetContext())
	sub.SubscriptionStatus = status
	if status == types.SubscriptionStatusActive {
		start := s.GetNow().Truncate(time.Microsecond)
		next, err := p.NextPeriodStart(start)
		s.Require().NoError(err)
		sub.StartDate = &start
		sub.NextBillingDate = &next
	}
	s.Require().NoError(s.GetStores().SubscriptionRepo.CreateWithLines(s.GetContext(), sub))
	return sub
}

func line(unitPrice string, quantity int64) dto.CreateSubscriptionLineRequest {
	return dto.CreateSubscriptionLineRequest{
		VariantID: "var_" + types.GenerateUUID(),
		Quantity:  quantity,
		UnitPrice: dec(unitPrice),
	}
}

// invoice stores an invoice for sub with a single line worth total, issued now
// and due in 30 days
func (s *testFixtures) invoice(sub *subscription.Subscription, status types.InvoiceStatus, total string, mutate ...func(inv *invoice.Invoice)) *invoice.Invoice {
	s.seq++
	now := s.GetNow()
	periodStart := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, s.seq, 0)

	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:  types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		IdempotencyKey: idempotency.NewGenerator().SubscriptionInvoiceKey(sub.ID, periodStart),
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		InvoiceStatus:  status,
		PeriodStart:    periodStart,
		PeriodEnd:      periodStart.AddDate(0, 1, 0),
		IssueDate:      now,
		DueDate:        now.AddDate(0, 0, 30),
		Subtotal:       dec(total),
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		Total:          dec(total),
		PaidAmount:     decimal.Zero,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	inv.Lines = []*invoice.InvoiceLine{{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE),
		InvoiceID:      inv.ID,
		VariantID:      "var_1",
		Quantity:       1,
		UnitPrice:      dec(total),
		LineSubtotal:   dec(total),
		DiscountAmount: decimal.Zero,
		TaxableAmount:  dec(total),
		TaxAmount:      decimal.Zero,
		LineTotal:      dec(total),
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}}
	if status == types.InvoiceStatusConfirmed {
		inv.ConfirmedAt = &now
	}
	for _, fn := range mutate {
		fn(inv)
	}
	s.Require().NoError(s.GetStores().InvoiceRepo.CreateWithLines(s.GetContext(), inv))
	return inv
}

// testFixtures is embedded by the service suites for seeding stores directly
type testFixtures struct {
	testutil.BaseServiceTestSuite
	seq int
}
