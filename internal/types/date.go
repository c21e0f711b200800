package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NextBillingDate advances start by intervalCount billing periods.
// - DAILY and WEEKLY add whole days.
// - MONTHLY and ANNUAL preserve the day of month and clip to the last
//   valid day when the target month is shorter (Jan 31 + 1 month = Feb 28/29).
func NextBillingDate(start time.Time, intervalCount int, period BillingPeriod) (time.Time, error) {
	if intervalCount <= 0 {
		return start, fmt.Errorf("billing interval count must be a positive integer, got %d", intervalCount)
	}

	switch period {
	case BILLING_PERIOD_DAILY:
		return start.AddDate(0, 0, intervalCount), nil
	case BILLING_PERIOD_WEEKLY:
		return start.AddDate(0, 0, 7*intervalCount), nil
	case BILLING_PERIOD_MONTHLY:
		return AddMonthsClamped(start, intervalCount), nil
	case BILLING_PERIOD_ANNUAL:
		return AddMonthsClamped(start, 12*intervalCount), nil
	default:
		return start, fmt.Errorf("invalid billing period type: %s", period)
	}
}

// AddMonthsClamped adds months to t keeping the clock and location, clipping
// the day to the last day of the target month.
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	h, mi, sec := t.Clock()

	total := int(m) - 1 + months
	newY := y + total/12
	newM := total % 12
	if newM < 0 {
		newM += 12
		newY--
	}
	month := time.Month(newM + 1)

	// day 0 of the following month is the last day of this one
	lastDay := time.Date(newY, month+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}

	return time.Date(newY, month, d, h, mi, sec, t.Nanosecond(), t.Location())
}

var (
	daysPerMonth  = decimal.NewFromInt(365).Div(decimal.NewFromInt(12))
	weeksPerMonth = decimal.NewFromInt(52).Div(decimal.NewFromInt(12))
	monthsPerYear = decimal.NewFromInt(12)
)

// MonthlyFactor converts an amount billed every intervalCount periods into a
// per month amount. Unknown periods and non positive counts yield zero.
func MonthlyFactor(period BillingPeriod, intervalCount int) decimal.Decimal {
	if intervalCount <= 0 {
		return decimal.Zero
	}

	var perMonth decimal.Decimal
	switch period {
	case BILLING_PERIOD_DAILY:
		perMonth = daysPerMonth
	case BILLING_PERIOD_WEEKLY:
		perMonth = weeksPerMonth
	case BILLING_PERIOD_MONTHLY:
		perMonth = decimal.NewFromInt(1)
	case BILLING_PERIOD_ANNUAL:
		perMonth = decimal.NewFromInt(1).Div(monthsPerYear)
	default:
		return decimal.Zero
	}
	return perMonth.Div(decimal.NewFromInt(int64(intervalCount)))
}
