package dto

import (
	"time"

	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/flexprice/subscriptions/internal/validator"
	"github.com/shopspring/decimal"
)

type GenerateInvoiceRequest struct {
	PeriodStart time.Time `json:"period_start" validate:"required"`
}

func (r *GenerateInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type InvoiceResponse struct {
	*invoice.Invoice

	// Overdue is derived when the response is built and never stored
	Overdue         bool            `json:"overdue"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
}

func NewInvoiceResponse(inv *invoice.Invoice, now time.Time) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice:         inv,
		Overdue:         inv.IsOverdue(now),
		AmountRemaining: inv.AmountRemaining(),
	}
}

type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
