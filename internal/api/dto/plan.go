package dto

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/plan"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/flexprice/subscriptions/internal/validator"
)

type CreatePlanRequest struct {
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	BillingPeriod types.BillingPeriod `json:"billing_period" validate:"required"`
	IntervalCount int                 `json:"interval_count" validate:"required,min=1"`

	// DueDays falls back to billing.default_due_days when omitted
	DueDays *int `json:"due_days,omitempty" validate:"omitempty,min=0"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillingPeriod.Validate()
}

func (r *CreatePlanRequest) ToPlan(ctx context.Context, defaultDueDays int) *plan.Plan {
	dueDays := defaultDueDays
	if r.DueDays != nil {
		dueDays = *r.DueDays
	}
	return &plan.Plan{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:          r.Name,
		Description:   r.Description,
		BillingPeriod: r.BillingPeriod,
		IntervalCount: r.IntervalCount,
		DueDays:       dueDays,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

type PlanResponse struct {
	*plan.Plan
}

type ListPlansResponse = types.ListResponse[*PlanResponse]
