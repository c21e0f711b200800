package dto

import (
	"context"
	"time"

	"github.com/flexprice/subscriptions/internal/domain/subscription"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/flexprice/subscriptions/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateSubscriptionRequest struct {
	CustomerID    string                          `json:"customer_id" validate:"required"`
	PlanID        string                          `json:"plan_id" validate:"required"`
	SalespersonID *string                         `json:"salesperson_id,omitempty"`
	Lines         []CreateSubscriptionLineRequest `json:"lines,omitempty" validate:"dive"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	for _, line := range r.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *CreateSubscriptionRequest) ToSubscription(ctx context.Context) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID:         r.CustomerID,
		PlanID:             r.PlanID,
		SalespersonID:      r.SalespersonID,
		SubscriptionStatus: types.SubscriptionStatusDraft,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	for i, line := range r.Lines {
		sub.Lines = append(sub.Lines, line.ToSubscriptionLine(ctx, sub.ID, i))
	}
	return sub
}

// CreateSubscriptionLineRequest snapshots the unit price at creation, it is never re-read
type CreateSubscriptionLineRequest struct {
	VariantID  string          `json:"variant_id" validate:"required"`
	ProductID  *string         `json:"product_id,omitempty"`
	Quantity   int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	DiscountID *string         `json:"discount_id,omitempty"`
	TaxRateID  *string         `json:"tax_rate_id,omitempty"`
}

func (r *CreateSubscriptionLineRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.UnitPrice.IsNegative() {
		return ierr.NewError("unit price cannot be negative").
			WithHint("Line unit price must not be negative").
			WithReportableDetails(map[string]any{
				"variant_id": r.VariantID,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateSubscriptionLineRequest) ToSubscriptionLine(ctx context.Context, subscriptionID string, position int) *subscription.SubscriptionLine {
	return &subscription.SubscriptionLine{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_LINE),
		SubscriptionID: subscriptionID,
		VariantID:      r.VariantID,
		ProductID:      r.ProductID,
		Quantity:       r.Quantity,
		UnitPrice:      r.UnitPrice,
		DiscountID:     r.DiscountID,
		TaxRateID:      r.TaxRateID,
		Position:       position,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

type QuoteSubscriptionRequest struct {
	QuotationTemplateID *string    `json:"quotation_template_id,omitempty"`
	ExpirationDate      *time.Time `json:"expiration_date,omitempty"`
}

type ConfirmSubscriptionRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
}

type CloseSubscriptionRequest struct {
	EndDate *time.Time `json:"end_date,omitempty"`
}

type SubscriptionResponse struct {
	*subscription.Subscription
}

type ListSubscriptionsResponse = types.ListResponse[*SubscriptionResponse]
