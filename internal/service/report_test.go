package service

import (
	"testing"
	"time"

	"github.com/flexprice/subscriptions/internal/api/dto"
	"github.com/flexprice/subscriptions/internal/domain/invoice"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type ReportServiceSuite struct {
	testFixtures
	service ReportService
}

func TestReportService(t *testing.T) {
	suite.Run(t, new(ReportServiceSuite))
}

func (s *ReportServiceSuite) SetupTest() {
	s.testFixtures.SetupTest()
	s.service = NewReportService(newTestServiceParams(&s.BaseServiceTestSuite))
	s.setupTestData()
}

func (s *ReportServiceSuite) setupTestData() {
	monthly := s.plan(types.BILLING_PERIOD_MONTHLY, 1)
	annual := s.plan(types.BILLING_PERIOD_ANNUAL, 1)

	active := s.subscription(monthly, types.SubscriptionStatusActive, line("100", 2))
	s.subscription(annual, types.SubscriptionStatusActive, line("1200", 1))
	s.subscription(monthly, types.SubscriptionStatusDraft, line("50", 1))

	overdue := func(inv *invoice.Invoice) { inv.DueDate = s.GetNow().Add(-24 * time.Hour) }

	s.invoice(active, types.InvoiceStatusConfirmed, "100", overdue)
	s.invoice(active, types.InvoiceStatusConfirmed, "200", func(inv *invoice.Invoice) {
		inv.PaidAmount = dec("50")
	})
	paid := s.invoice(active, types.InvoiceStatusPaid, "300", func(inv *invoice.Invoice) {
		inv.PaidAmount = dec("300")
	})
	s.invoice(active, types.InvoiceStatusDraft, "40", overdue)
	s.invoice(active, types.InvoiceStatusCanceled, "70", overdue)

	for _, amount := range []string{"50", "300"} {
		req := dto.RecordPaymentRequest{Amount: dec(amount), PaymentMethod: types.PaymentMethodCard}
		s.Require().NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), req.ToPayment(s.GetContext(), paid.ID, s.GetNow())))
	}
}

func (s *ReportServiceSuite) TestGetSummary() {
	resp, err := s.service.GetSummary(s.GetContext(), dto.ReportSummaryRequest{})
	s.Require().NoError(err)

	s.Equal(map[types.SubscriptionStatus]int{
		types.SubscriptionStatusActive: 2,
		types.SubscriptionStatusDraft:  1,
	}, resp.SubscriptionsByStatus)

	confirmed := resp.InvoicesByStatus[types.InvoiceStatusConfirmed]
	s.Equal(2, confirmed.Count)
	s.Equal("300.00", confirmed.Amount.StringFixed(2))
	s.Equal(1, resp.InvoicesByStatus[types.InvoiceStatusPaid].Count)
	s.Equal(1, resp.InvoicesByStatus[types.InvoiceStatusDraft].Count)
	s.Equal("70.00", resp.InvoicesByStatus[types.InvoiceStatusCanceled].Amount.StringFixed(2))

	s.Equal("600.00", resp.TotalInvoiced.StringFixed(2))
	s.Equal("350.00", resp.TotalPaid.StringFixed(2))
	s.Equal("250.00", resp.Outstanding.StringFixed(2))

	// drafts and canceled invoices are never overdue
	s.Equal(1, resp.Overdue.Count)
	s.Equal("100.00", resp.Overdue.Amount.StringFixed(2))

	s.Equal(2, resp.Payments.Count)
	s.Equal("350.00", resp.Payments.Amount.StringFixed(2))

	// 2 x 100 monthly plus 1200 yearly
	s.Equal("300.00", resp.MonthlyRecurringRevenue.StringFixed(2))
}

func (s *ReportServiceSuite) TestGetSummary_Window() {
	from := s.GetNow().Add(time.Hour)
	resp, err := s.service.GetSummary(s.GetContext(), dto.ReportSummaryRequest{From: &from})
	s.Require().NoError(err)

	s.Empty(resp.InvoicesByStatus)
	s.Equal(0, resp.Payments.Count)
	s.True(resp.TotalInvoiced.IsZero())

	// subscription counts and recurring revenue are a snapshot, not windowed
	s.Equal(2, resp.SubscriptionsByStatus[types.SubscriptionStatusActive])
	s.Equal("300.00", resp.MonthlyRecurringRevenue.StringFixed(2))
}

func (s *ReportServiceSuite) TestGetSummary_InvalidWindow() {
	from := s.GetNow()
	to := from.Add(-time.Hour)

	_, err := s.service.GetSummary(s.GetContext(), dto.ReportSummaryRequest{From: &from, To: &to})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ReportServiceSuite) TestListOverdueInvoices() {
	sub := s.subscription(s.plan(types.BILLING_PERIOD_MONTHLY, 1), types.SubscriptionStatusActive, line("10", 1))
	older := s.invoice(sub, types.InvoiceStatusConfirmed, "80", func(inv *invoice.Invoice) {
		inv.DueDate = s.GetNow().AddDate(0, 0, -10)
		inv.PaidAmount = dec("30")
	})

	resp, err := s.service.ListOverdueInvoices(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 2)
	s.Equal(older.ID, resp.Items[0].ID)
	s.True(lo.EveryBy(resp.Items, func(inv *dto.InvoiceResponse) bool { return inv.Overdue }))
	s.Equal("150.00", resp.Total.StringFixed(2))
}
