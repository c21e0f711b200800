package invoice

import (
	"time"

	"github.com/flexprice/subscriptions/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is generated once per subscription billing period.
// Lines are snapshots and are never added or removed after creation.
type Invoice struct {
	ID             string              `db:"id" json:"id"`
	InvoiceNumber  string              `db:"invoice_number" json:"invoice_number"`
	IdempotencyKey string              `db:"idempotency_key" json:"idempotency_key"`
	SubscriptionID string              `db:"subscription_id" json:"subscription_id"`
	CustomerID     string              `db:"customer_id" json:"customer_id"`
	InvoiceStatus  types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`

	PeriodStart time.Time `db:"period_start" json:"period_start"`
	PeriodEnd   time.Time `db:"period_end" json:"period_end"`
	IssueDate   time.Time `db:"issue_date" json:"issue_date"`
	DueDate     time.Time `db:"due_date" json:"due_date"`

	// total = subtotal + tax_amount - discount_amount
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Total          decimal.Decimal `db:"total" json:"total"`
	PaidAmount     decimal.Decimal `db:"paid_amount" json:"paid_amount"`

	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CanceledAt  *time.Time `db:"canceled_at" json:"canceled_at,omitempty"`

	Lines []*InvoiceLine `db:"-" json:"lines,omitempty"`

	types.BaseModel
}

// InvoiceLine is a copy of a subscription line priced at generation time
type InvoiceLine struct {
	ID                 string          `db:"id" json:"id"`
	InvoiceID          string          `db:"invoice_id" json:"invoice_id"`
	SubscriptionLineID string          `db:"subscription_line_id" json:"subscription_line_id"`
	VariantID          string          `db:"variant_id" json:"variant_id"`
	ProductID          *string         `db:"product_id" json:"product_id,omitempty"`
	Quantity           int64           `db:"quantity" json:"quantity"`
	UnitPrice          decimal.Decimal `db:"unit_price" json:"unit_price"`

	DiscountID     *string          `db:"discount_id" json:"discount_id,omitempty"`
	TaxRateID      *string          `db:"tax_rate_id" json:"tax_rate_id,omitempty"`
	TaxPercentage  *decimal.Decimal `db:"tax_percentage" json:"tax_percentage,omitempty"`
	LineSubtotal   decimal.Decimal  `db:"line_subtotal" json:"line_subtotal"`
	DiscountAmount decimal.Decimal  `db:"discount_amount" json:"discount_amount"`
	TaxableAmount  decimal.Decimal  `db:"taxable_amount" json:"taxable_amount"`
	TaxAmount      decimal.Decimal  `db:"tax_amount" json:"tax_amount"`
	LineTotal      decimal.Decimal  `db:"line_total" json:"line_total"`
	Position       int              `db:"position" json:"position"`

	types.BaseModel
}

// IsOverdue is derived and never stored: a confirmed invoice past its due date
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.InvoiceStatus == types.InvoiceStatusConfirmed && i.DueDate.Before(now)
}

// AmountRemaining is what is still owed, zero once fully or over paid
func (i *Invoice) AmountRemaining() decimal.Decimal {
	return decimal.Max(i.Total.Sub(i.PaidAmount), decimal.Zero)
}

// IsFullyPaid reports whether the paid accumulator covers the total
func (i *Invoice) IsFullyPaid() bool {
	return i.PaidAmount.GreaterThanOrEqual(i.Total)
}
