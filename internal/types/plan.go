package types

import (
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/samber/lo"
)

// BillingPeriod is the cadence unit a plan invoices at ex MONTHLY, ANNUAL, WEEKLY, DAILY
type BillingPeriod string

const (
	BILLING_PERIOD_DAILY   BillingPeriod = "DAILY"
	BILLING_PERIOD_WEEKLY  BillingPeriod = "WEEKLY"
	BILLING_PERIOD_MONTHLY BillingPeriod = "MONTHLY"
	BILLING_PERIOD_ANNUAL  BillingPeriod = "ANNUAL"
)

func (p BillingPeriod) String() string {
	return string(p)
}

func (p BillingPeriod) Validate() error {
	allowed := []BillingPeriod{
		BILLING_PERIOD_DAILY,
		BILLING_PERIOD_WEEKLY,
		BILLING_PERIOD_MONTHLY,
		BILLING_PERIOD_ANNUAL,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid billing period").
			WithHint("Billing period must be one of DAILY, WEEKLY, MONTHLY or ANNUAL").
			WithReportableDetails(map[string]any{
				"allowed":        allowed,
				"billing_period": p,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PlanFilter represents filters for plan queries
type PlanFilter struct {
	*QueryFilter
	PlanIDs []string `json:"plan_ids,omitempty" form:"plan_ids"`
}

func NewPlanFilter() *PlanFilter {
	return &PlanFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitPlanFilter() *PlanFilter {
	return &PlanFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *PlanFilter) Validate() error {
	if f == nil || f.QueryFilter == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}
