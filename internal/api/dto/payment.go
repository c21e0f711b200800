package dto

import (
	"context"
	"time"

	"github.com/flexprice/subscriptions/internal/domain/payment"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/flexprice/subscriptions/internal/validator"
	"github.com/shopspring/decimal"
)

type RecordPaymentRequest struct {
	Amount        decimal.Decimal     `json:"amount"`
	PaymentMethod types.PaymentMethod `json:"payment_method" validate:"required"`
	Reference     string              `json:"reference" validate:"max=255"`

	// PaymentDate defaults to now
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return r.PaymentMethod.Validate()
}

func (r *RecordPaymentRequest) ToPayment(ctx context.Context, invoiceID string, now time.Time) *payment.Payment {
	paymentDate := now
	if r.PaymentDate != nil {
		paymentDate = r.PaymentDate.UTC()
	}
	return &payment.Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:     invoiceID,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		Reference:     r.Reference,
		PaymentDate:   paymentDate,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

type PaymentResponse struct {
	*payment.Payment
}

// RecordPaymentResponse returns the payment with the invoice it settled against
type RecordPaymentResponse struct {
	Payment *PaymentResponse `json:"payment"`
	Invoice *InvoiceResponse `json:"invoice"`
}

type ListPaymentsResponse = types.ListResponse[*PaymentResponse]
