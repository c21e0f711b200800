package dto

import (
	"time"

	"github.com/flexprice/subscriptions/internal/types"
	"github.com/shopspring/decimal"
)

type ReportSummaryRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type AmountCount struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// ReportSummaryResponse is computed live on every request
type ReportSummaryResponse struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	SubscriptionsByStatus   map[types.SubscriptionStatus]int    `json:"subscriptions_by_status"`
	InvoicesByStatus        map[types.InvoiceStatus]AmountCount `json:"invoices_by_status"`
	TotalInvoiced           decimal.Decimal                     `json:"total_invoiced"`
	TotalPaid               decimal.Decimal                     `json:"total_paid"`
	Outstanding             decimal.Decimal                     `json:"outstanding"`
	Overdue                 AmountCount                         `json:"overdue"`
	Payments                AmountCount                         `json:"payments"`
	MonthlyRecurringRevenue decimal.Decimal                     `json:"monthly_recurring_revenue"`
}

type ListOverdueInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}
