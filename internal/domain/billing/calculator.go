package billing

import (
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/shopspring/decimal"
)

// Calculator prices lines and aggregates them into invoice totals.
// It holds no state and never rounds intermediate values.
type Calculator interface {
	CalculateLine(in LineInput) (LineAmounts, error)
	Aggregate(lines []LineAmounts) Totals
	CartTotal(items []CartItem) decimal.Decimal
	CartDiscount(d Discount, cartTotal decimal.Decimal) decimal.Decimal
}

// NewCalculator returns the default decimal calculator
func NewCalculator() Calculator {
	return &calculator{}
}

type calculator struct{}

func (c *calculator) CalculateLine(in LineInput) (LineAmounts, error) {
	if in.Quantity <= 0 {
		return LineAmounts{}, ierr.NewErrorf("quantity must be positive, got %d", in.Quantity).
			WithHint("Line quantity must be a positive integer").
			Mark(ierr.ErrValidation)
	}
	if in.UnitPrice.IsNegative() {
		return LineAmounts{}, ierr.NewError("unit price must not be negative").
			WithHint("Line unit price must not be negative").
			Mark(ierr.ErrValidation)
	}
	if in.TaxRate != nil && in.TaxRate.IsNegative() {
		return LineAmounts{}, ierr.NewError("tax rate must not be negative").
			WithHint("Tax rate must not be negative").
			Mark(ierr.ErrValidation)
	}

	subtotal := in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity))

	discountAmount := decimal.Zero
	if in.Discount != nil {
		discountAmount = DiscountAmount(*in.Discount, subtotal)
	}

	taxable := subtotal.Sub(discountAmount)

	taxAmount := decimal.Zero
	if in.TaxRate != nil {
		taxAmount = taxable.Mul(*in.TaxRate).Div(types.Hundred)
	}

	return LineAmounts{
		LineSubtotal:   subtotal,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxable,
		TaxAmount:      taxAmount,
		LineTotal:      taxable.Add(taxAmount),
	}, nil
}

// Aggregate sums the unrounded line amounts and rounds subtotal, tax and total
// once. The discount is derived from the rounded figures so that
// total == subtotal + tax - discount holds exactly.
func (c *calculator) Aggregate(lines []LineAmounts) Totals {
	subtotal, tax, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineSubtotal)
		tax = tax.Add(l.TaxAmount)
		total = total.Add(l.LineTotal)
	}

	subtotal = types.RoundMoney(subtotal)
	tax = types.RoundMoney(tax)
	total = types.RoundMoney(total)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: subtotal.Add(tax).Sub(total),
		TaxAmount:      tax,
		Total:          total,
	}
}

func (c *calculator) CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total
}

// CartDiscount is the displayable discount on a whole cart, rounded and capped at the cart total
func (c *calculator) CartDiscount(d Discount, cartTotal decimal.Decimal) decimal.Decimal {
	return decimal.Min(types.RoundMoney(DiscountAmount(d, cartTotal)), cartTotal)
}

// DiscountAmount applies d to amount without rounding.
// The result is always within [0, amount].
func DiscountAmount(d Discount, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() || !d.Value.IsPositive() {
		return decimal.Zero
	}

	var off decimal.Decimal
	switch d.Type {
	case types.DiscountTypePercentage:
		off = amount.Mul(d.Value).Div(types.Hundred)
	case types.DiscountTypeFixed:
		off = d.Value
	default:
		return decimal.Zero
	}
	return decimal.Min(off, amount)
}
