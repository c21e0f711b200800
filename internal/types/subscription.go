package types

import (
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the commercial state of a subscription.
// DRAFT -> QUOTATION -> CONFIRMED -> ACTIVE -> CLOSED, CLOSED is terminal.
type SubscriptionStatus string

const (
	SubscriptionStatusDraft     SubscriptionStatus = "DRAFT"
	SubscriptionStatusQuotation SubscriptionStatus = "QUOTATION"
	SubscriptionStatusConfirmed SubscriptionStatus = "CONFIRMED"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusClosed    SubscriptionStatus = "CLOSED"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusDraft,
		SubscriptionStatusQuotation,
		SubscriptionStatusConfirmed,
		SubscriptionStatusActive,
		SubscriptionStatusClosed,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionAction names a state machine action on a subscription
type SubscriptionAction string

const (
	SubscriptionActionQuote    SubscriptionAction = "quote"
	SubscriptionActionConfirm  SubscriptionAction = "confirm"
	SubscriptionActionActivate SubscriptionAction = "activate"
	SubscriptionActionClose    SubscriptionAction = "close"
	// SubscriptionActionEditLines is not a transition, it is only legal
	// while the subscription has not been confirmed
	SubscriptionActionEditLines SubscriptionAction = "edit_lines"
)

// SubscriptionFilter represents filters for subscription queries
type SubscriptionFilter struct {
	*QueryFilter
	*TimeRangeFilter

	SubscriptionIDs      []string             `json:"subscription_ids,omitempty" form:"subscription_ids"`
	CustomerID           string               `json:"customer_id,omitempty" form:"customer_id"`
	PlanID               string               `json:"plan_id,omitempty" form:"plan_id"`
	SubscriptionStatuses []SubscriptionStatus `json:"subscription_status,omitempty" form:"subscription_status"`
}

func NewSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *SubscriptionFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.TimeRangeFilter != nil {
		if err := f.TimeRangeFilter.Validate(); err != nil {
			return err
		}
	}
	for _, status := range f.SubscriptionStatuses {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	return nil
}
