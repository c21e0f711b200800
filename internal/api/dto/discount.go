package dto

import (
	"context"
	"time"

	"github.com/flexprice/subscriptions/internal/domain/billing"
	"github.com/flexprice/subscriptions/internal/domain/discount"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/flexprice/subscriptions/internal/validator"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type CreateDiscountRequest struct {
	Name         string             `json:"name" validate:"required"`
	Code         *string            `json:"code,omitempty" validate:"omitempty,min=1,max=64"`
	DiscountType types.DiscountType `json:"discount_type" validate:"required"`
	Value        decimal.Decimal    `json:"value"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	MaxUses        *int `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	MaxUsesPerUser *int `json:"max_uses_per_user,omitempty" validate:"omitempty,min=1"`

	MinPurchaseAmount    *decimal.Decimal `json:"min_purchase_amount,omitempty"`
	ApplicableProductIDs []string         `json:"applicable_product_ids,omitempty"`

	// IsActive defaults to true
	IsActive *bool `json:"is_active,omitempty"`
}

func (r *CreateDiscountRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.DiscountType.Validate(); err != nil {
		return err
	}
	if !r.Value.IsPositive() {
		return ierr.NewError("discount value must be positive").
			WithHint("Discount value must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	if r.DiscountType == types.DiscountTypePercentage && r.Value.GreaterThan(types.Hundred) {
		return ierr.NewError("percentage discount cannot exceed 100").
			WithHint("Percentage discount must be in range 0-100").
			WithReportableDetails(map[string]any{
				"value": r.Value.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if r.MinPurchaseAmount != nil && r.MinPurchaseAmount.IsNegative() {
		return ierr.NewError("minimum purchase amount cannot be negative").
			WithHint("Minimum purchase amount must not be negative").
			Mark(ierr.ErrValidation)
	}
	if r.StartDate != nil && r.EndDate != nil && r.StartDate.After(*r.EndDate) {
		return ierr.NewError("start date is after end date").
			WithHint("Discount start date must be before its end date").
			WithReportableDetails(map[string]any{
				"start_date": *r.StartDate,
				"end_date":   *r.EndDate,
			}).
			Mark(ierr.ErrBusinessRule)
	}
	return nil
}

func (r *CreateDiscountRequest) ToDiscount(ctx context.Context) *discount.Discount {
	d := &discount.Discount{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DISCOUNT),
		Name:                 r.Name,
		Code:                 r.Code,
		DiscountType:         r.DiscountType,
		Value:                r.Value,
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		MaxUses:              r.MaxUses,
		MaxUsesPerUser:       r.MaxUsesPerUser,
		ApplicableProductIDs: pq.StringArray(lo.Uniq(r.ApplicableProductIDs)),
		IsActive:             lo.FromPtrOr(r.IsActive, true),
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
	if r.MinPurchaseAmount != nil {
		d.MinPurchaseAmount = decimal.NewNullDecimal(*r.MinPurchaseAmount)
	}
	return d
}

type DiscountResponse struct {
	*discount.Discount
}

type ListDiscountsResponse = types.ListResponse[*DiscountResponse]

// ValidateDiscountRequest asks whether code can be redeemed against a cart
type ValidateDiscountRequest struct {
	Code      string             `json:"code" validate:"required"`
	CartItems []billing.CartItem `json:"cart_items" validate:"dive"`
	UserID    *string            `json:"user_id,omitempty"`
}

func (r *ValidateDiscountRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	for i, item := range r.CartItems {
		if item.Quantity <= 0 || item.UnitPrice.IsNegative() {
			return ierr.NewError("invalid cart item").
				WithHint("Cart items need a positive quantity and a non negative unit price").
				WithReportableDetails(map[string]any{
					"index": i,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// ValidateDiscountResponse is a structured outcome, an invalid code is not an error
type ValidateDiscountResponse struct {
	Valid          bool                         `json:"valid"`
	Discount       *DiscountResponse            `json:"discount,omitempty"`
	DiscountAmount *decimal.Decimal             `json:"discount_amount,omitempty"`
	Code           types.DiscountValidationCode `json:"code,omitempty"`
	Message        string                       `json:"message,omitempty"`
}

type ApplyDiscountRequest struct {
	UserID    string  `json:"user_id" validate:"required"`
	InvoiceID *string `json:"invoice_id,omitempty"`
}

func (r *ApplyDiscountRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type DiscountUsageResponse struct {
	*discount.DiscountUsage
}
