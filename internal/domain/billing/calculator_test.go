package billing

import (
	"testing"

	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}

func TestCalculator_CalculateLine(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name     string
		input    LineInput
		expected LineAmounts
	}{
		{
			name: "percentage_discount_with_tax",
			input: LineInput{
				Quantity:  2,
				UnitPrice: dec("999.00"),
				Discount:  &Discount{Type: types.DiscountTypePercentage, Value: dec("10")},
				TaxRate:   lo.ToPtr(dec("18")),
			},
			expected: LineAmounts{
				LineSubtotal:   dec("1998.00"),
				DiscountAmount: dec("199.80"),
				TaxableAmount:  dec("1798.20"),
				TaxAmount:      dec("323.676"),
				LineTotal:      dec("2121.876"),
			},
		},
		{
			name: "fixed_discount_clamped_to_subtotal",
			input: LineInput{
				Quantity:  1,
				UnitPrice: dec("50"),
				Discount:  &Discount{Type: types.DiscountTypeFixed, Value: dec("80")},
				TaxRate:   lo.ToPtr(dec("18")),
			},
			expected: LineAmounts{
				LineSubtotal:   dec("50"),
				DiscountAmount: dec("50"),
				TaxableAmount:  dec("0"),
				TaxAmount:      dec("0"),
				LineTotal:      dec("0"),
			},
		},
		{
			name: "no_discount_no_tax",
			input: LineInput{
				Quantity:  3,
				UnitPrice: dec("19.99"),
			},
			expected: LineAmounts{
				LineSubtotal:   dec("59.97"),
				DiscountAmount: dec("0"),
				TaxableAmount:  dec("59.97"),
				TaxAmount:      dec("0"),
				LineTotal:      dec("59.97"),
			},
		},
		{
			name: "free_line",
			input: LineInput{
				Quantity:  5,
				UnitPrice: dec("0"),
				Discount:  &Discount{Type: types.DiscountTypePercentage, Value: dec("50")},
				TaxRate:   lo.ToPtr(dec("5")),
			},
			expected: LineAmounts{
				LineSubtotal:   dec("0"),
				DiscountAmount: dec("0"),
				TaxableAmount:  dec("0"),
				TaxAmount:      dec("0"),
				LineTotal:      dec("0"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.CalculateLine(tt.input)
			require.NoError(t, err)

			assertDecimal(t, tt.expected.LineSubtotal.String(), got.LineSubtotal, "subtotal")
			assertDecimal(t, tt.expected.DiscountAmount.String(), got.DiscountAmount, "discount")
			assertDecimal(t, tt.expected.TaxableAmount.String(), got.TaxableAmount, "taxable")
			assertDecimal(t, tt.expected.TaxAmount.String(), got.TaxAmount, "tax")
			assertDecimal(t, tt.expected.LineTotal.String(), got.LineTotal, "total")

			assert.False(t, got.TaxableAmount.IsNegative())
			assert.True(t, got.DiscountAmount.LessThanOrEqual(got.LineSubtotal))
		})
	}
}

func TestCalculator_CalculateLine_Invalid(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.CalculateLine(LineInput{Quantity: 0, UnitPrice: dec("1")})
	assert.True(t, ierr.IsValidation(err))

	_, err = calc.CalculateLine(LineInput{Quantity: 1, UnitPrice: dec("-1")})
	assert.True(t, ierr.IsValidation(err))

	_, err = calc.CalculateLine(LineInput{Quantity: 1, UnitPrice: dec("1"), TaxRate: lo.ToPtr(dec("-5"))})
	assert.True(t, ierr.IsValidation(err))
}

func TestCalculator_LineTotalIdentity(t *testing.T) {
	calc := NewCalculator()

	prices := []string{"0.01", "1.10", "33.33", "999.99", "12345.67"}
	discounts := []*Discount{
		nil,
		{Type: types.DiscountTypePercentage, Value: dec("12.5")},
		{Type: types.DiscountTypePercentage, Value: dec("100")},
		{Type: types.DiscountTypeFixed, Value: dec("5")},
		{Type: types.DiscountTypeFixed, Value: dec("100000")},
	}
	rates := []string{"0", "5", "18", "28.5"}

	for _, p := range prices {
		for _, d := range discounts {
			for _, r := range rates {
				for _, q := range []int64{1, 3, 7} {
					rate := dec(r)
					got, err := calc.CalculateLine(LineInput{Quantity: q, UnitPrice: dec(p), Discount: d, TaxRate: &rate})
					require.NoError(t, err)

					subtotal := dec(p).Mul(decimal.NewFromInt(q))
					want := subtotal.Sub(got.DiscountAmount).Mul(decimal.NewFromInt(1).Add(rate.Div(types.Hundred)))

					assert.True(t, want.Equal(got.LineTotal), "price=%s qty=%d rate=%s", p, q, r)
					assert.True(t, got.DiscountAmount.LessThanOrEqual(subtotal))
					assert.False(t, got.TaxableAmount.IsNegative())
				}
			}
		}
	}
}

func TestCalculator_Aggregate_RoundsOnce(t *testing.T) {
	calc := NewCalculator()
	rate := dec("0.5")

	// each line carries 0.005 of tax, rounding per line would give 0.03
	var lines []LineAmounts
	for i := 0; i < 3; i++ {
		l, err := calc.CalculateLine(LineInput{Quantity: 1, UnitPrice: dec("1.00"), TaxRate: &rate})
		require.NoError(t, err)
		lines = append(lines, l)
	}

	totals := calc.Aggregate(lines)
	assertDecimal(t, "3.00", totals.Subtotal)
	assertDecimal(t, "0.02", totals.TaxAmount)
	assertDecimal(t, "3.02", totals.Total)
	assertDecimal(t, "0", totals.DiscountAmount)

	perLine := decimal.Zero
	for _, l := range lines {
		perLine = perLine.Add(l.Rounded().TaxAmount)
	}
	assertDecimal(t, "0.03", perLine)
}

func TestCalculator_Aggregate_DiscountedTaxedLine(t *testing.T) {
	calc := NewCalculator()

	line, err := calc.CalculateLine(LineInput{
		Quantity:  2,
		UnitPrice: dec("999.00"),
		Discount:  &Discount{Type: types.DiscountTypePercentage, Value: dec("10")},
		TaxRate:   lo.ToPtr(dec("18")),
	})
	require.NoError(t, err)

	totals := calc.Aggregate([]LineAmounts{line})
	assertDecimal(t, "1998.00", totals.Subtotal)
	assertDecimal(t, "199.80", totals.DiscountAmount)
	assertDecimal(t, "323.68", totals.TaxAmount)
	assertDecimal(t, "2121.88", totals.Total)

	identity := totals.Subtotal.Add(totals.TaxAmount).Sub(totals.DiscountAmount)
	assert.True(t, identity.Equal(totals.Total))

	rounded := line.Rounded()
	assertDecimal(t, "323.68", rounded.TaxAmount)
	assertDecimal(t, "2121.88", rounded.LineTotal)
}

func TestCalculator_Aggregate_HalfCentIdentity(t *testing.T) {
	calc := NewCalculator()
	five := &Discount{Type: types.DiscountTypePercentage, Value: dec("5")}

	tests := []struct {
		name     string
		rate     *decimal.Decimal
		subtotal string
		discount string
		tax      string
		total    string
	}{
		{
			// discount 0.505, total 9.595
			name:     "discount only",
			subtotal: "10.10",
			discount: "0.50",
			tax:      "0.00",
			total:    "9.60",
		},
		{
			// discount 0.505, tax 0.9595, total 10.5545
			name:     "discount and tax",
			rate:     lo.ToPtr(dec("10")),
			subtotal: "10.10",
			discount: "0.51",
			tax:      "0.96",
			total:    "10.55",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := calc.CalculateLine(LineInput{Quantity: 1, UnitPrice: dec("10.10"), Discount: five, TaxRate: tt.rate})
			require.NoError(t, err)

			totals := calc.Aggregate([]LineAmounts{line})
			assertDecimal(t, tt.subtotal, totals.Subtotal)
			assertDecimal(t, tt.discount, totals.DiscountAmount)
			assertDecimal(t, tt.tax, totals.TaxAmount)
			assertDecimal(t, tt.total, totals.Total)
			assert.True(t, totals.Subtotal.Add(totals.TaxAmount).Sub(totals.DiscountAmount).Equal(totals.Total))

			stored := line.Rounded()
			assert.True(t, stored.LineSubtotal.Sub(stored.DiscountAmount).Equal(stored.TaxableAmount))
			assert.True(t, stored.TaxableAmount.Add(stored.TaxAmount).Equal(stored.LineTotal))
		})
	}
}

func TestCalculator_Aggregate_IdentityHolds(t *testing.T) {
	calc := NewCalculator()

	prices := []string{"0.01", "0.05", "1.10", "10.10", "33.33", "999.99"}
	discounts := []*Discount{
		nil,
		{Type: types.DiscountTypePercentage, Value: dec("5")},
		{Type: types.DiscountTypePercentage, Value: dec("12.5")},
		{Type: types.DiscountTypeFixed, Value: dec("0.35")},
	}
	rates := []string{"0", "5", "18", "28.5"}

	for _, d := range discounts {
		for _, r := range rates {
			rate := dec(r)
			var lines []LineAmounts
			for i, p := range prices {
				l, err := calc.CalculateLine(LineInput{Quantity: int64(i + 1), UnitPrice: dec(p), Discount: d, TaxRate: &rate})
				require.NoError(t, err)
				lines = append(lines, l)

				totals := calc.Aggregate(lines)
				identity := totals.Subtotal.Add(totals.TaxAmount).Sub(totals.DiscountAmount)
				assert.True(t, identity.Equal(totals.Total), "lines=%d rate=%s", len(lines), r)
				assert.False(t, totals.DiscountAmount.IsNegative())
			}
		}
	}
}

func TestCalculator_Aggregate_Empty(t *testing.T) {
	totals := NewCalculator().Aggregate(nil)
	assert.True(t, totals.Total.IsZero())
	assert.True(t, totals.Subtotal.IsZero())
}

func TestCalculator_CartDiscount(t *testing.T) {
	calc := NewCalculator()
	bulk := Discount{Type: types.DiscountTypePercentage, Value: dec("20")}

	cart := []CartItem{
		{ProductID: "prod_a", Quantity: 1, UnitPrice: dec("10000.01")},
	}
	total := calc.CartTotal(cart)
	assertDecimal(t, "10000.01", total)
	assertDecimal(t, "2000.00", calc.CartDiscount(bulk, total))

	flat := Discount{Type: types.DiscountTypeFixed, Value: dec("500")}
	assertDecimal(t, "120.50", calc.CartDiscount(flat, dec("120.50")))

	third := Discount{Type: types.DiscountTypePercentage, Value: dec("33.333")}
	assertDecimal(t, "33.33", calc.CartDiscount(third, dec("100")))
}
