package billing

import (
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/shopspring/decimal"
)

// Discount is a resolved discount ready to be applied to an amount
type Discount struct {
	Type  types.DiscountType
	Value decimal.Decimal
}

// LineInput is everything needed to price one line
type LineInput struct {
	Quantity  int64
	UnitPrice decimal.Decimal

	// Discount is nil when the line carries no discount
	Discount *Discount

	// TaxRate is a percentage ex 18 for 18%, nil when the line is untaxed
	TaxRate *decimal.Decimal
}

// LineAmounts holds the unrounded amounts of a priced line
type LineAmounts struct {
	LineSubtotal   decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	LineTotal      decimal.Decimal
}

// Rounded returns a copy rounded for storage. Subtotal, tax and total are
// rounded, taxable and discount are derived so the stored line still adds up.
func (a LineAmounts) Rounded() LineAmounts {
	subtotal := types.RoundMoney(a.LineSubtotal)
	tax := types.RoundMoney(a.TaxAmount)
	total := types.RoundMoney(a.LineTotal)
	taxable := total.Sub(tax)

	return LineAmounts{
		LineSubtotal:   subtotal,
		DiscountAmount: subtotal.Sub(taxable),
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		LineTotal:      total,
	}
}

// Totals are invoice level aggregates rounded exactly once, see Aggregate
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// CartItem is one entry of a cart presented for discount validation
type CartItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
