package types

import (
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/samber/lo"
)

// PaymentMethod is how a payment was collected
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodBankTransfer,
		PaymentMethodCard,
		PaymentMethodUPI,
		PaymentMethodCheque,
		PaymentMethodOther,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment method").
			WithHint("Invalid payment method").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"method":  m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentFilter represents filters for payment queries
type PaymentFilter struct {
	*QueryFilter
	*TimeRangeFilter

	PaymentIDs []string `json:"payment_ids,omitempty" form:"payment_ids"`
	InvoiceID  string   `json:"invoice_id,omitempty" form:"invoice_id"`
}

func NewPaymentFilter() *PaymentFilter {
	return &PaymentFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitPaymentFilter() *PaymentFilter {
	return &PaymentFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *PaymentFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.TimeRangeFilter != nil {
		return f.TimeRangeFilter.Validate()
	}
	return nil
}
