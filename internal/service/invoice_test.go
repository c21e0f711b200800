package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/flexprice/subscriptions/internal/api/dto"
	"github.com/flexprice/subscriptions/internal/domain/discount"
	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/domain/plan"
	"github.com/flexprice/subscriptions/internal/domain/subscription"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/testutil"
	"github.com/flexprice/subscriptions/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testFixtures
	params  ServiceParams
	service InvoiceService
	plan    *plan.Plan
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.testFixtures.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewInvoiceService(s.params)
	s.plan = s.testFixtures.plan(types.BILLING_PERIOD_MONTHLY, 1)
}

func (s *InvoiceServiceSuite) generate(sub *subscription.Subscription, periodStart time.Time) *dto.InvoiceResponse {
	resp, err := s.service.GenerateInvoice(s.GetContext(), sub.ID, dto.GenerateInvoiceRequest{PeriodStart: periodStart})
	s.Require().NoError(err)
	return resp
}

func (s *InvoiceServiceSuite) invoiceCount() int {
	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), types.NewNoLimitInvoiceFilter())
	s.Require().NoError(err)
	return count
}

func (s *InvoiceServiceSuite) generatedCount(result string) float64 {
	return promtestutil.ToFloat64(s.GetMetrics().InvoicesGeneratedTotal.WithLabelValues(result))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_DiscountedTaxedLine() {
	d := s.discount("", types.DiscountTypePercentage, "10")
	t := s.taxRate("18", true)

	l := line("999.00", 2)
	l.DiscountID = lo.ToPtr(d.ID)
	l.TaxRateID = lo.ToPtr(t.ID)
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, l)

	periodStart := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	resp := s.generate(sub, periodStart)

	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.Equal("1998.00", resp.Subtotal.StringFixed(2))
	s.Equal("199.80", resp.DiscountAmount.StringFixed(2))
	s.Equal("323.68", resp.TaxAmount.StringFixed(2))
	s.Equal("2121.88", resp.Total.StringFixed(2))
	s.True(resp.PaidAmount.IsZero())
	s.True(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC).Equal(resp.PeriodEnd))
	s.Equal(resp.IssueDate.AddDate(0, 0, s.plan.DueDays), resp.DueDate)
	s.Contains(resp.InvoiceNumber, types.SHORT_ID_PREFIX_INVOICE)

	s.Require().Len(resp.Lines, 1)
	got := resp.Lines[0]
	s.Equal(d.ID, lo.FromPtr(got.DiscountID))
	s.Equal(t.ID, lo.FromPtr(got.TaxRateID))
	s.Equal("18", got.TaxPercentage.String())
	s.Equal("1798.20", got.TaxableAmount.StringFixed(2))
	s.Equal("2121.88", got.LineTotal.StringFixed(2))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_HalfCentDiscountAddsUp() {
	d := s.discount("", types.DiscountTypePercentage, "5")

	l := line("10.10", 1)
	l.DiscountID = lo.ToPtr(d.ID)
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, l)

	resp := s.generate(sub, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))

	// discount 0.505 leaves 9.595 which rounds up
	s.Equal("10.10", resp.Subtotal.StringFixed(2))
	s.Equal("0.50", resp.DiscountAmount.StringFixed(2))
	s.Equal("0.00", resp.TaxAmount.StringFixed(2))
	s.Equal("9.60", resp.Total.StringFixed(2))
	s.True(resp.Subtotal.Add(resp.TaxAmount).Sub(resp.DiscountAmount).Equal(resp.Total))

	s.Require().Len(resp.Lines, 1)
	got := resp.Lines[0]
	s.Equal("0.50", got.DiscountAmount.StringFixed(2))
	s.Equal("9.60", got.LineTotal.StringFixed(2))
	s.True(got.LineSubtotal.Sub(got.DiscountAmount).Add(got.TaxAmount).Equal(got.LineTotal))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_Idempotent() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	periodStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	first := s.generate(sub, periodStart)
	second := s.generate(sub, periodStart)

	s.Equal(first.ID, second.ID)
	s.Equal(first.InvoiceNumber, second.InvoiceNumber)
	s.True(first.Total.Equal(second.Total))
	s.Equal(1, s.invoiceCount())
	s.Equal(float64(1), s.generatedCount(invoiceResultCreated))
	s.Equal(float64(1), s.generatedCount(invoiceResultExisting))

	// a different period is a different invoice
	next := s.generate(sub, periodStart.AddDate(0, 1, 0))
	s.NotEqual(first.ID, next.ID)
	s.Equal(2, s.invoiceCount())
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_IgnoresSubMicrosecondDifferences() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	periodStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	first := s.generate(sub, periodStart)
	second := s.generate(sub, periodStart.Add(500*time.Nanosecond))

	s.Equal(first.ID, second.ID)
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_Concurrent() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 3))
	periodStart := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	const callers = 10
	var (
		mu  sync.Mutex
		ids []string
		wg  conc.WaitGroup
	)
	for i := 0; i < callers; i++ {
		wg.Go(func() {
			resp, err := s.service.GenerateInvoice(s.GetContext(), sub.ID, dto.GenerateInvoiceRequest{PeriodStart: periodStart})
			if err != nil {
				return
			}
			mu.Lock()
			ids = append(ids, resp.ID)
			mu.Unlock()
		})
	}
	wg.Wait()

	s.Len(ids, callers)
	s.Len(lo.Uniq(ids), 1)
	s.Equal(1, s.invoiceCount())
}

// hidingInvoiceRepo reports the first lookups by idempotency key as missing,
// as a reader racing a concurrent commit would see them
type hidingInvoiceRepo struct {
	invoice.Repository

	mu     sync.Mutex
	misses int
}

func (r *hidingInvoiceRepo) GetByIdempotencyKey(ctx context.Context, key string) (*invoice.Invoice, error) {
	r.mu.Lock()
	hide := r.misses > 0
	if hide {
		r.misses--
	}
	r.mu.Unlock()

	if hide {
		return nil, ierr.NewError("invoice not found").Mark(ierr.ErrNotFound)
	}
	return r.Repository.GetByIdempotencyKey(ctx, key)
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_RecoversFromDuplicateKey() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	periodStart := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	first := s.generate(sub, periodStart)

	// both the pre check and the locked re-check miss, so the insert hits the unique key
	repo := &hidingInvoiceRepo{Repository: s.GetStores().InvoiceRepo, misses: 2}
	params := s.params
	params.InvoiceRepo = repo
	svc := NewInvoiceService(params)

	resp, err := svc.GenerateInvoice(s.GetContext(), sub.ID, dto.GenerateInvoiceRequest{PeriodStart: periodStart})
	s.Require().NoError(err)
	s.Equal(first.ID, resp.ID)
	s.Equal(1, s.invoiceCount())
	s.Equal(float64(1), s.generatedCount(invoiceResultRecovered))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_RecoveryGivesUp() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	periodStart := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	s.generate(sub, periodStart)

	repo := &hidingInvoiceRepo{Repository: s.GetStores().InvoiceRepo, misses: 100}
	params := s.params
	params.InvoiceRepo = repo

	_, err := NewInvoiceService(params).GenerateInvoice(s.GetContext(), sub.ID, dto.GenerateInvoiceRequest{PeriodStart: periodStart})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
	s.Equal(float64(1), s.generatedCount(invoiceResultFailed))
}

// numberClashRepo fails the first inserts on the invoice number index and
// records every number it was offered
type numberClashRepo struct {
	invoice.Repository

	mu      sync.Mutex
	clashes int
	numbers []string
}

func (r *numberClashRepo) CreateWithLines(ctx context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	r.numbers = append(r.numbers, inv.InvoiceNumber)
	clash := r.clashes > 0
	if clash {
		r.clashes--
	}
	r.mu.Unlock()

	if clash {
		return testutil.UniqueViolation(postgres.IndexInvoiceNumber, "invoice", nil)
	}
	return r.Repository.CreateWithLines(ctx, inv)
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_RetriesTakenNumber() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))

	repo := &numberClashRepo{Repository: s.GetStores().InvoiceRepo, clashes: invoiceNumberAttempts - 1}
	params := s.params
	params.InvoiceRepo = repo

	resp, err := NewInvoiceService(params).GenerateInvoice(s.GetContext(), sub.ID, dto.GenerateInvoiceRequest{
		PeriodStart: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	s.Len(repo.numbers, invoiceNumberAttempts)
	s.Len(lo.Uniq(repo.numbers), invoiceNumberAttempts)
	s.Equal(repo.numbers[len(repo.numbers)-1], resp.InvoiceNumber)
	s.Equal(1, s.invoiceCount())
	s.Equal(float64(1), s.generatedCount(invoiceResultCreated))
	s.Equal(float64(0), s.generatedCount(invoiceResultRecovered))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_TakenNumberIsNotRecovered() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))

	repo := &numberClashRepo{Repository: s.GetStores().InvoiceRepo, clashes: 100}
	params := s.params
	params.InvoiceRepo = repo

	_, err := NewInvoiceService(params).GenerateInvoice(s.GetContext(), sub.ID, dto.GenerateInvoiceRequest{
		PeriodStart: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().Error(err)
	s.True(ierr.IsAlreadyExists(err))
	s.True(postgres.IsUniqueViolationOn(err, postgres.IndexInvoiceNumber))
	s.Len(repo.numbers, invoiceNumberAttempts)
	s.Equal(0, s.invoiceCount())
	s.Equal(float64(1), s.generatedCount(invoiceResultFailed))
}

// foreignKeyRepo answers every key lookup with the same invoice, as a
// colliding key would
type foreignKeyRepo struct {
	invoice.Repository
	inv *invoice.Invoice
}

func (r *foreignKeyRepo) GetByIdempotencyKey(ctx context.Context, key string) (*invoice.Invoice, error) {
	return r.inv, nil
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_RejectsInvoiceOfAnotherPeriod() {
	other := s.subscription(s.plan, types.SubscriptionStatusActive, line("50", 1))
	foreign := s.invoice(other, types.InvoiceStatusDraft, "50")
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))

	params := s.params
	params.InvoiceRepo = &foreignKeyRepo{Repository: s.GetStores().InvoiceRepo, inv: foreign}

	_, err := NewInvoiceService(params).GenerateInvoice(s.GetContext(), sub.ID, dto.GenerateInvoiceRequest{
		PeriodStart: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrSystem))
	s.False(ierr.IsAlreadyExists(err))
	s.Equal(1, s.invoiceCount())
	s.Equal(float64(1), s.generatedCount(invoiceResultFailed))

	// the same invoice is accepted for its own period
	params.InvoiceRepo = &foreignKeyRepo{Repository: s.GetStores().InvoiceRepo, inv: foreign}
	resp, err := NewInvoiceService(params).GenerateInvoice(s.GetContext(), other.ID, dto.GenerateInvoiceRequest{
		PeriodStart: foreign.PeriodStart,
	})
	s.Require().NoError(err)
	s.Equal(foreign.ID, resp.ID)
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_AdvancesNextBillingDate() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	periodStart := *sub.NextBillingDate

	resp := s.generate(sub, periodStart)

	got, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.True(resp.PeriodEnd.Equal(lo.FromPtr(got.NextBillingDate)))

	// an off cycle period leaves the schedule alone
	s.generate(sub, periodStart.AddDate(1, 0, 0))
	got, err = s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.True(resp.PeriodEnd.Equal(lo.FromPtr(got.NextBillingDate)))
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_RecordsDiscountUsage() {
	d := s.discount("", types.DiscountTypeFixed, "20", func(d *discount.Discount) {
		d.MaxUsesPerUser = lo.ToPtr(1)
	})
	l := line("100", 1)
	l.DiscountID = lo.ToPtr(d.ID)
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, l)

	first := s.generate(sub, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	s.Equal("80.00", first.Total.StringFixed(2))

	store := s.GetStores().DiscountRepo.(*testutil.InMemoryDiscountStore)
	usages := store.ListUsages(s.GetContext())
	s.Require().Len(usages, 1)
	s.Equal(sub.CustomerID, usages[0].UserID)
	s.Equal(first.ID, lo.FromPtr(usages[0].InvoiceID))

	// the customer has used up the discount, the next period is priced without it
	second := s.generate(sub, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	s.Equal("100.00", second.Total.StringFixed(2))
	s.Nil(second.Lines[0].DiscountID)
	s.Len(store.ListUsages(s.GetContext()), 1)

	// a repeated generation does not record another usage
	s.generate(sub, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	s.Len(store.ListUsages(s.GetContext()), 1)
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_SkipsInactiveTaxRate() {
	t := s.taxRate("18", false)
	l := line("100", 1)
	l.TaxRateID = lo.ToPtr(t.ID)
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, l)

	resp := s.generate(sub, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	s.True(resp.TaxAmount.IsZero())
	s.Equal("100.00", resp.Total.StringFixed(2))
	s.Nil(resp.Lines[0].TaxRateID)
	s.Nil(resp.Lines[0].TaxPercentage)
}

func (s *InvoiceServiceSuite) TestGenerateInvoice_Rejected() {
	empty := s.subscription(s.plan, types.SubscriptionStatusActive)
	_, err := s.service.GenerateInvoice(s.GetContext(), empty.ID, dto.GenerateInvoiceRequest{PeriodStart: s.GetNow()})
	s.True(ierr.IsBusinessRule(err))

	_, err = s.service.GenerateInvoice(s.GetContext(), "subs_missing", dto.GenerateInvoiceRequest{PeriodStart: s.GetNow()})
	s.True(ierr.IsNotFound(err))

	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	_, err = s.service.GenerateInvoice(s.GetContext(), sub.ID, dto.GenerateInvoiceRequest{})
	s.True(ierr.IsValidation(err))

	s.Equal(0, s.invoiceCount())
}

func (s *InvoiceServiceSuite) TestConfirmAndCancel() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	inv := s.generate(sub, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	_, err := s.service.CancelInvoice(s.GetContext(), inv.ID)
	s.True(ierr.IsIllegalTransition(err), "draft invoices cannot be canceled")

	confirmed, err := s.service.ConfirmInvoice(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusConfirmed, confirmed.InvoiceStatus)
	s.NotNil(confirmed.ConfirmedAt)

	_, err = s.service.ConfirmInvoice(s.GetContext(), inv.ID)
	s.True(ierr.IsIllegalTransition(err))

	canceled, err := s.service.CancelInvoice(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusCanceled, canceled.InvoiceStatus)
	s.NotNil(canceled.CanceledAt)
	s.False(canceled.Overdue)

	_, err = s.service.ConfirmInvoice(s.GetContext(), inv.ID)
	s.True(ierr.IsIllegalTransition(err))
}

func (s *InvoiceServiceSuite) TestOverdueIsDerived() {
	sub := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	inv := s.generate(sub, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	_, err := s.service.ConfirmInvoice(s.GetContext(), inv.ID)
	s.Require().NoError(err)

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	stored.DueDate = s.GetNow().Add(-time.Hour)
	s.Require().NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), stored))

	resp, err := s.service.GetInvoice(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.True(resp.Overdue)
	s.Equal(types.InvoiceStatusConfirmed, resp.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestListInvoices_BySubscription() {
	a := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	b := s.subscription(s.plan, types.SubscriptionStatusActive, line("100", 1))
	s.generate(a, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	s.generate(a, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	s.generate(b, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	filter := types.NewInvoiceFilter()
	filter.SubscriptionID = a.ID

	resp, err := s.service.ListInvoices(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)
}
