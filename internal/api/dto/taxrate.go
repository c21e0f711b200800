package dto

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/taxrate"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/flexprice/subscriptions/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateTaxRateRequest struct {
	Name       string          `json:"name" validate:"required"`
	Percentage decimal.Decimal `json:"percentage"`

	// IsActive defaults to true
	IsActive *bool `json:"is_active,omitempty"`
}

func (r *CreateTaxRateRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Percentage.IsNegative() || r.Percentage.GreaterThan(types.Hundred) {
		return ierr.NewError("percentage must be between 0 and 100").
			WithHint("Tax rate percentage must be in range 0-100").
			WithReportableDetails(map[string]any{
				"percentage": r.Percentage.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateTaxRateRequest) ToTaxRate(ctx context.Context) *taxrate.TaxRate {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}
	return &taxrate.TaxRate{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_RATE),
		Name:       r.Name,
		Percentage: r.Percentage,
		IsActive:   isActive,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

type TaxRateResponse struct {
	*taxrate.TaxRate
}

type ListTaxRatesResponse = types.ListResponse[*TaxRateResponse]
