package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flexprice/subscriptions/internal/api/dto"
	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/domain/payment"
	"github.com/flexprice/subscriptions/internal/domain/subscription"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

// ReportService computes read only rollups. Nothing is cached, every call reads live data.
type ReportService interface {
	GetSummary(ctx context.Context, req dto.ReportSummaryRequest) (*dto.ReportSummaryResponse, error)
	ListOverdueInvoices(ctx context.Context) (*dto.ListOverdueInvoicesResponse, error)
}

type reportService struct {
	ServiceParams
}

func NewReportService(params ServiceParams) ReportService {
	return &reportService{ServiceParams: params}
}

func (s *reportService) GetSummary(ctx context.Context, req dto.ReportSummaryRequest) (*dto.ReportSummaryResponse, error) {
	window := &types.TimeRangeFilter{StartTime: req.From, EndTime: req.To}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	var (
		subs     []*subscription.Subscription
		invoices []*invoice.Invoice
		payments []*payment.Payment
		mrr      decimal.Decimal
		mu       sync.Mutex
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		result, err := s.SubRepo.List(ctx, types.NewNoLimitSubscriptionFilter())
		if err != nil {
			return err
		}
		value, err := s.monthlyRecurringRevenue(ctx, result)
		if err != nil {
			return err
		}
		mu.Lock()
		subs, mrr = result, value
		mu.Unlock()
		return nil
	})
	p.Go(func(ctx context.Context) error {
		filter := types.NewNoLimitInvoiceFilter()
		filter.TimeRangeFilter = window
		result, err := s.InvoiceRepo.List(ctx, filter)
		if err != nil {
			return err
		}
		mu.Lock()
		invoices = result
		mu.Unlock()
		return nil
	})
	p.Go(func(ctx context.Context) error {
		filter := types.NewNoLimitPaymentFilter()
		filter.TimeRangeFilter = window
		result, err := s.PaymentRepo.List(ctx, filter)
		if err != nil {
			return err
		}
		mu.Lock()
		payments = result
		mu.Unlock()
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	resp := &dto.ReportSummaryResponse{
		From:                    req.From,
		To:                      req.To,
		SubscriptionsByStatus:   make(map[types.SubscriptionStatus]int),
		InvoicesByStatus:        make(map[types.InvoiceStatus]dto.AmountCount),
		TotalInvoiced:           decimal.Zero,
		TotalPaid:               decimal.Zero,
		Outstanding:             decimal.Zero,
		Overdue:                 dto.AmountCount{Amount: decimal.Zero},
		Payments:                dto.AmountCount{Amount: decimal.Zero},
		MonthlyRecurringRevenue: mrr,
	}

	for _, sub := range subs {
		resp.SubscriptionsByStatus[sub.SubscriptionStatus]++
	}

	for _, inv := range invoices {
		bucket := resp.InvoicesByStatus[inv.InvoiceStatus]
		bucket.Count++
		bucket.Amount = bucket.Amount.Add(inv.Total)
		resp.InvoicesByStatus[inv.InvoiceStatus] = bucket

		// drafts are not issued and canceled invoices are void
		if inv.InvoiceStatus != types.InvoiceStatusConfirmed && inv.InvoiceStatus != types.InvoiceStatusPaid {
			continue
		}
		resp.TotalInvoiced = resp.TotalInvoiced.Add(inv.Total)
		resp.TotalPaid = resp.TotalPaid.Add(inv.PaidAmount)

		if inv.InvoiceStatus == types.InvoiceStatusConfirmed {
			resp.Outstanding = resp.Outstanding.Add(inv.AmountRemaining())
		}
		if inv.IsOverdue(now) {
			resp.Overdue.Count++
			resp.Overdue.Amount = resp.Overdue.Amount.Add(inv.AmountRemaining())
		}
	}

	for _, pay := range payments {
		resp.Payments.Count++
		resp.Payments.Amount = resp.Payments.Amount.Add(pay.Amount)
	}

	return resp, nil
}

// monthlyRecurringRevenue normalises the pre tax, pre discount value of every
// active subscription to one month of its plan's cadence
func (s *reportService) monthlyRecurringRevenue(ctx context.Context, subs []*subscription.Subscription) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, sub := range subs {
		if sub.SubscriptionStatus != types.SubscriptionStatusActive {
			continue
		}

		p, err := getPlan(ctx, s.ServiceParams, sub.PlanID)
		if err != nil {
			return decimal.Zero, err
		}
		lines, err := s.SubRepo.ListLines(ctx, sub.ID)
		if err != nil {
			return decimal.Zero, err
		}

		amount := decimal.Zero
		for _, line := range lines {
			amount = amount.Add(line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)))
		}
		total = total.Add(amount.Mul(types.MonthlyFactor(p.BillingPeriod, p.IntervalCount)))
	}

	return types.RoundMoney(total), nil
}

func (s *reportService) ListOverdueInvoices(ctx context.Context) (*dto.ListOverdueInvoicesResponse, error) {
	filter := types.NewNoLimitInvoiceFilter()
	filter.InvoiceStatuses = []types.InvoiceStatus{types.InvoiceStatusConfirmed}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	overdue := lo.Filter(invoices, func(inv *invoice.Invoice, _ int) bool {
		return inv.IsOverdue(now)
	})
	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].DueDate.Before(overdue[j].DueDate)
	})

	resp := &dto.ListOverdueInvoicesResponse{
		Items: make([]*dto.InvoiceResponse, 0, len(overdue)),
		Total: decimal.Zero,
	}
	for _, inv := range overdue {
		resp.Items = append(resp.Items, dto.NewInvoiceResponse(inv, now))
		resp.Total = resp.Total.Add(inv.AmountRemaining())
	}
	return resp, nil
}
