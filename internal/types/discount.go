package types

import (
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/samber/lo"
)

// DiscountType represents how a discount value is interpreted
type DiscountType string

const (
	// DiscountTypePercentage takes value percent off the amount
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	// DiscountTypeFixed takes a flat value off the amount, never below zero
	DiscountTypeFixed DiscountType = "FIXED"
)

func (t DiscountType) String() string {
	return string(t)
}

func (t DiscountType) Validate() error {
	allowed := []DiscountType{
		DiscountTypePercentage,
		DiscountTypeFixed,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid discount type").
			WithHint("Discount type must be PERCENTAGE or FIXED").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DiscountValidationCode is the machine readable reason a discount code was rejected
type DiscountValidationCode string

const (
	DiscountValidationCodeInvalidCode       DiscountValidationCode = "INVALID_CODE"
	DiscountValidationCodeInactive          DiscountValidationCode = "INACTIVE"
	DiscountValidationCodeNotYetValid       DiscountValidationCode = "NOT_YET_VALID"
	DiscountValidationCodeExpired           DiscountValidationCode = "EXPIRED"
	DiscountValidationCodeUsageLimitReached DiscountValidationCode = "USAGE_LIMIT_REACHED"
	DiscountValidationCodeUserLimitReached  DiscountValidationCode = "USER_LIMIT_REACHED"
	DiscountValidationCodeMinimumNotMet     DiscountValidationCode = "MINIMUM_PURCHASE_NOT_MET"
	DiscountValidationCodeNotApplicable     DiscountValidationCode = "NOT_APPLICABLE"
)

// DiscountFilter represents filters for discount queries
type DiscountFilter struct {
	*QueryFilter

	DiscountIDs []string `json:"discount_ids,omitempty" form:"discount_ids"`
	Code        string   `json:"code,omitempty" form:"code"`
	IsActive    *bool    `json:"is_active,omitempty" form:"is_active"`
}

func NewDiscountFilter() *DiscountFilter {
	return &DiscountFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *DiscountFilter) Validate() error {
	if f == nil || f.QueryFilter == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}

// DiscountUsageFilter narrows usage ledger counts
type DiscountUsageFilter struct {
	DiscountID string
	UserID     string
}
