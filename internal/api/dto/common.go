package dto

import "github.com/flexprice/subscriptions/internal/validator"

// SetActiveRequest toggles the active flag of discounts and tax rates
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (r *SetActiveRequest) Validate() error {
	return validator.ValidateRequest(r)
}
