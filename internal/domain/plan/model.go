package plan

import (
	"time"

	"github.com/flexprice/subscriptions/internal/types"
)

// Plan is the billing cadence a subscription is sold on
type Plan struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`

	// BillingPeriod is the cadence unit, ex MONTHLY
	BillingPeriod types.BillingPeriod `db:"billing_period" json:"billing_period"`

	// IntervalCount multiplies the billing period, 3 x MONTHLY is quarterly
	IntervalCount int `db:"interval_count" json:"interval_count"`

	// DueDays is added to the issue date to compute an invoice due date
	DueDays int `db:"due_days" json:"due_days"`

	types.BaseModel
}

// NextPeriodStart advances from by one billing interval of this plan
func (p *Plan) NextPeriodStart(from time.Time) (time.Time, error) {
	return types.NextBillingDate(from, p.IntervalCount, p.BillingPeriod)
}

// DueDate is the due date for an invoice issued at issueDate
func (p *Plan) DueDate(issueDate time.Time) time.Time {
	return issueDate.AddDate(0, 0, p.DueDays)
}
