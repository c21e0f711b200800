package types

import (
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus is the lifecycle state of an invoice.
// DRAFT -> CONFIRMED -> PAID, CONFIRMED -> CANCELED
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusConfirmed InvoiceStatus = "CONFIRMED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCanceled  InvoiceStatus = "CANCELED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusConfirmed,
		InvoiceStatusPaid,
		InvoiceStatusCanceled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Invalid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceAction names a state machine action on an invoice
type InvoiceAction string

const (
	InvoiceActionConfirm InvoiceAction = "confirm"
	InvoiceActionPay     InvoiceAction = "pay"
	InvoiceActionCancel  InvoiceAction = "cancel"
)

// InvoiceDefaultDueDays is used when neither the plan nor the config set a due offset
const InvoiceDefaultDueDays = 30

// InvoiceFilter represents filters for invoice queries
type InvoiceFilter struct {
	*QueryFilter
	*TimeRangeFilter

	InvoiceIDs      []string        `json:"invoice_ids,omitempty" form:"invoice_ids"`
	SubscriptionID  string          `json:"subscription_id,omitempty" form:"subscription_id"`
	CustomerID      string          `json:"customer_id,omitempty" form:"customer_id"`
	InvoiceStatuses []InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
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
	for _, status := range f.InvoiceStatuses {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	return nil
}
