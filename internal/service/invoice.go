package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/subscriptions/internal/api/dto"
	"github.com/flexprice/subscriptions/internal/domain/billing"
	"github.com/flexprice/subscriptions/internal/domain/discount"
	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/domain/subscription"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	invoiceResultCreated   = "created"
	invoiceResultExisting  = "existing"
	invoiceResultRecovered = "recovered"
	invoiceResultFailed    = "failed"

	// attempts to read back an invoice created by a concurrent generator
	invoiceRecoveryRetries = 5

	// attempts at a fresh invoice number when the drawn one is taken
	invoiceNumberAttempts = 3
)

type InvoiceService interface {
	// GenerateInvoice is idempotent per (subscription, period start). A retry
	// returns the invoice created by the first call unchanged.
	GenerateInvoice(ctx context.Context, subscriptionID string, req dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error)
	ConfirmInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

func (s *invoiceService) GenerateInvoice(ctx context.Context, subscriptionID string, req dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	span, ctx := s.Sentry.StartServiceSpan(ctx, "invoice.generate", map[string]any{
		"subscription_id": subscriptionID,
	})
	if span != nil {
		defer span.Finish()
	}

	// timestamps round trip through postgres at microsecond precision
	periodStart := req.PeriodStart.UTC().Truncate(time.Microsecond)
	key := s.Idempotency.SubscriptionInvoiceKey(subscriptionID, periodStart)

	var (
		inv    *invoice.Invoice
		result string
		err    error
	)
	for attempt := 1; ; attempt++ {
		inv, result, err = s.generate(ctx, subscriptionID, periodStart, key)
		if !postgres.IsUniqueViolationOn(err, postgres.IndexInvoiceNumber) || attempt == invoiceNumberAttempts {
			break
		}
		s.Logger.Warnw("invoice number taken, drawing a new one",
			"subscription_id", subscriptionID,
			"attempt", attempt,
		)
	}
	// only a clash on the period keys means another generator won the race
	if err != nil && ierr.IsAlreadyExists(err) && !postgres.IsUniqueViolationOn(err, postgres.IndexInvoiceNumber) {
		inv, err = s.recoverExisting(ctx, subscriptionID, periodStart, key)
		result = invoiceResultRecovered
	}
	if err != nil {
		s.Metrics.InvoiceGenerated(invoiceResultFailed)
		return nil, err
	}
	s.Metrics.InvoiceGenerated(result)

	s.Logger.Infow("generated invoice",
		"invoice_id", inv.ID,
		"subscription_id", subscriptionID,
		"period_start", periodStart,
		"result", result,
		"total", inv.Total,
	)
	return dto.NewInvoiceResponse(inv, time.Now().UTC()), nil
}

func (s *invoiceService) generate(ctx context.Context, subscriptionID string, periodStart time.Time, key string) (*invoice.Invoice, string, error) {
	existing, err := s.InvoiceRepo.GetByIdempotencyKey(ctx, key)
	if err == nil {
		if err := s.checkKeyOwner(existing, subscriptionID, periodStart); err != nil {
			return nil, "", err
		}
		return existing, invoiceResultExisting, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, "", err
	}

	var inv *invoice.Invoice
	result := invoiceResultCreated

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// the row lock queues concurrent generators for this subscription
		sub, err := s.SubRepo.GetForUpdate(ctx, subscriptionID)
		if err != nil {
			return err
		}

		// a generator holding the lock before us may have committed meanwhile
		existing, err := s.InvoiceRepo.GetByIdempotencyKey(ctx, key)
		if err == nil {
			inv, result = existing, invoiceResultExisting
			return s.checkKeyOwner(existing, subscriptionID, periodStart)
		}
		if !ierr.IsNotFound(err) {
			return err
		}

		inv, err = s.buildInvoice(ctx, sub, periodStart, key)
		if err != nil {
			return err
		}
		if err := s.InvoiceRepo.CreateWithLines(ctx, inv); err != nil {
			return err
		}

		for _, discountID := range appliedDiscountIDs(inv) {
			usage := newDiscountUsage(ctx, discountID, sub.CustomerID, lo.ToPtr(inv.ID))
			if err := s.DiscountRepo.CreateUsage(ctx, usage); err != nil {
				return err
			}
		}

		if sub.NextBillingDate != nil && sub.NextBillingDate.Equal(periodStart) {
			sub.NextBillingDate = lo.ToPtr(inv.PeriodEnd)
			sub.Touch(ctx)
			if err := s.SubRepo.Update(ctx, sub); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return inv, result, nil
}

// recoverExisting reads back the invoice a concurrent generator committed.
// The unique index guarantees it exists once that transaction is visible.
func (s *invoiceService) recoverExisting(ctx context.Context, subscriptionID string, periodStart time.Time, key string) (*invoice.Invoice, error) {
	var inv *invoice.Invoice
	var permanent error

	operation := func() error {
		var err error
		inv, err = s.InvoiceRepo.GetByIdempotencyKey(ctx, key)
		if err == nil {
			err = s.checkKeyOwner(inv, subscriptionID, periodStart)
		}
		if err != nil && !ierr.IsNotFound(err) {
			permanent = err
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, invoiceRecoveryRetries), ctx)); err != nil {
		if permanent != nil {
			return nil, permanent
		}
		return nil, ierr.WithError(err).
			WithHint("Invoice generation conflicted with a concurrent request, please retry").
			WithReportableDetails(map[string]any{
				"idempotency_key": key,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	s.Logger.Debugw("recovered invoice after duplicate key", "invoice_id", inv.ID, "idempotency_key", key)
	return inv, nil
}

// checkKeyOwner rejects an invoice found by key that was generated for a
// different subscription period.
func (s *invoiceService) checkKeyOwner(inv *invoice.Invoice, subscriptionID string, periodStart time.Time) error {
	if inv.SubscriptionID == subscriptionID && inv.PeriodStart.Equal(periodStart) &&
		s.Idempotency.ValidateSubscriptionInvoiceKey(subscriptionID, periodStart, inv.IdempotencyKey) {
		return nil
	}
	return ierr.NewErrorf("invoice %s does not belong to the requested period", inv.ID).
		WithHint("Invoice idempotency key collided with another billing period").
		WithReportableDetails(map[string]any{
			"invoice_id":      inv.ID,
			"subscription_id": subscriptionID,
			"period_start":    periodStart,
			"idempotency_key": inv.IdempotencyKey,
		}).
		Mark(ierr.ErrSystem)
}

// buildInvoice prices every current line of sub. Unit prices come from the
// line snapshot, discounts and tax rates are resolved as of now.
func (s *invoiceService) buildInvoice(ctx context.Context, sub *subscription.Subscription, periodStart time.Time, key string) (*invoice.Invoice, error) {
	lines, err := s.SubRepo.ListLines(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ierr.NewErrorf("subscription %s has no lines", sub.ID).
			WithHint("Cannot generate an invoice for a subscription without lines").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrBusinessRule)
	}

	p, err := getPlan(ctx, s.ServiceParams, sub.PlanID)
	if err != nil {
		return nil, err
	}
	periodEnd, err := p.NextPeriodStart(periodStart)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Plan billing configuration is invalid").
			WithReportableDetails(map[string]any{
				"plan_id": p.ID,
			}).
			Mark(ierr.ErrValidation)
	}

	now := time.Now().UTC()
	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:  types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		IdempotencyKey: key,
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		InvoiceStatus:  types.InvoiceStatusDraft,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		IssueDate:      now,
		DueDate:        p.DueDate(now),
		PaidAmount:     decimal.Zero,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	resolver := newLineResolver(s.ServiceParams, sub.CustomerID, now)
	amounts := make([]billing.LineAmounts, 0, len(lines))

	for _, line := range lines {
		in := billing.LineInput{
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}

		d, err := resolver.discount(ctx, line.DiscountID)
		if err != nil {
			return nil, err
		}
		if d != nil {
			in.Discount = d.ToBilling()
		}

		rate, err := resolver.taxRate(ctx, line.TaxRateID)
		if err != nil {
			return nil, err
		}
		in.TaxRate = rate

		lineAmounts, err := s.Calculator.CalculateLine(in)
		if err != nil {
			return nil, ierr.WithError(err).
				WithReportableDetails(map[string]any{
					"subscription_line_id": line.ID,
				}).
				Mark(ierr.ErrValidation)
		}
		amounts = append(amounts, lineAmounts)
		stored := lineAmounts.Rounded()

		inv.Lines = append(inv.Lines, &invoice.InvoiceLine{
			ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE),
			InvoiceID:          inv.ID,
			SubscriptionLineID: line.ID,
			VariantID:          line.VariantID,
			ProductID:          line.ProductID,
			Quantity:           line.Quantity,
			UnitPrice:          line.UnitPrice,
			DiscountID:         lo.Ternary(d != nil, line.DiscountID, nil),
			TaxRateID:          lo.Ternary(rate != nil, line.TaxRateID, nil),
			TaxPercentage:      rate,
			LineSubtotal:       stored.LineSubtotal,
			DiscountAmount:     stored.DiscountAmount,
			TaxableAmount:      stored.TaxableAmount,
			TaxAmount:          stored.TaxAmount,
			LineTotal:          stored.LineTotal,
			Position:           line.Position,
			BaseModel:          types.GetDefaultBaseModel(ctx),
		})
	}

	totals := s.Calculator.Aggregate(amounts)
	inv.Subtotal = totals.Subtotal
	inv.DiscountAmount = totals.DiscountAmount
	inv.TaxAmount = totals.TaxAmount
	inv.Total = totals.Total

	return inv, nil
}

// lineResolver looks up each referenced discount and tax rate once per invoice
type lineResolver struct {
	params     ServiceParams
	customerID string
	now        time.Time

	discounts map[string]*discount.Discount
	taxRates  map[string]*decimal.Decimal
}

func newLineResolver(params ServiceParams, customerID string, now time.Time) *lineResolver {
	return &lineResolver{
		params:     params,
		customerID: customerID,
		now:        now,
		discounts:  make(map[string]*discount.Discount),
		taxRates:   make(map[string]*decimal.Decimal),
	}
}

// discount returns nil when the line has no discount or it is not currently
// usable by the customer. An unusable discount is skipped, not an error.
func (r *lineResolver) discount(ctx context.Context, id *string) (*discount.Discount, error) {
	if id == nil {
		return nil, nil
	}
	if d, ok := r.discounts[*id]; ok {
		return d, nil
	}

	d, err := r.params.DiscountRepo.Get(ctx, *id)
	if err != nil {
		if ierr.IsNotFound(err) {
			r.discounts[*id] = nil
			return nil, nil
		}
		return nil, err
	}

	code, err := checkDiscountEligibility(ctx, r.params, d, r.customerID, r.now)
	if err != nil {
		return nil, err
	}
	if code != "" {
		r.params.Logger.Debugw("skipping discount at invoice generation",
			"discount_id", d.ID,
			"reason", code,
		)
		d = nil
	}
	r.discounts[*id] = d
	return d, nil
}

// taxRate returns nil for untaxed lines and inactive rates
func (r *lineResolver) taxRate(ctx context.Context, id *string) (*decimal.Decimal, error) {
	if id == nil {
		return nil, nil
	}
	if rate, ok := r.taxRates[*id]; ok {
		return rate, nil
	}

	t, err := getTaxRate(ctx, r.params, *id)
	if err != nil {
		if ierr.IsNotFound(err) {
			r.taxRates[*id] = nil
			return nil, nil
		}
		return nil, err
	}

	var rate *decimal.Decimal
	if t.IsActive {
		rate = lo.ToPtr(t.Percentage)
	}
	r.taxRates[*id] = rate
	return rate, nil
}

func appliedDiscountIDs(inv *invoice.Invoice) []string {
	return lo.Uniq(lo.FilterMap(inv.Lines, func(l *invoice.InvoiceLine, _ int) (string, bool) {
		return lo.FromPtr(l.DiscountID), l.DiscountID != nil
	}))
}

func (s *invoiceService) ConfirmInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, types.InvoiceActionConfirm, func(inv *invoice.Invoice, now time.Time) {
		inv.ConfirmedAt = &now
	})
}

func (s *invoiceService) CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, types.InvoiceActionCancel, func(inv *invoice.Invoice, now time.Time) {
		inv.CanceledAt = &now
	})
}

func (s *invoiceService) transition(
	ctx context.Context,
	id string,
	action types.InvoiceAction,
	apply func(inv *invoice.Invoice, now time.Time),
) (*dto.InvoiceResponse, error) {
	now := time.Now().UTC()

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		next, err := nextInvoiceStatus(inv, action)
		if err != nil {
			return err
		}
		apply(inv, now)
		inv.InvoiceStatus = next
		inv.Touch(ctx)
		return s.InvoiceRepo.Update(ctx, inv)
	})
	s.Metrics.InvoiceTransition(string(action), err)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice transitioned", "invoice_id", id, "action", action)
	return s.GetInvoice(ctx, id)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice ID is required").
			WithHint("Please provide a valid invoice ID").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv, time.Now().UTC()), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv, now)
	})

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}
