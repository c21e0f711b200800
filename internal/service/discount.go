package service

import (
	"context"
	"time"

	"github.com/flexprice/subscriptions/internal/api/dto"
	"github.com/flexprice/subscriptions/internal/domain/billing"
	"github.com/flexprice/subscriptions/internal/domain/discount"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
)

type DiscountService interface {
	CreateDiscount(ctx context.Context, req dto.CreateDiscountRequest) (*dto.DiscountResponse, error)
	GetDiscount(ctx context.Context, id string) (*dto.DiscountResponse, error)
	ListDiscounts(ctx context.Context, filter *types.DiscountFilter) (*dto.ListDiscountsResponse, error)
	SetDiscountActive(ctx context.Context, id string, active bool) (*dto.DiscountResponse, error)

	// ValidateDiscountCode never writes. An unusable code is reported in the
	// response, only infrastructure failures are returned as errors.
	ValidateDiscountCode(ctx context.Context, req dto.ValidateDiscountRequest) (*dto.ValidateDiscountResponse, error)

	// ApplyDiscountCode appends one usage to the ledger
	ApplyDiscountCode(ctx context.Context, discountID string, req dto.ApplyDiscountRequest) (*dto.DiscountUsageResponse, error)
}

type discountService struct {
	ServiceParams
}

func NewDiscountService(params ServiceParams) DiscountService {
	return &discountService{ServiceParams: params}
}

func (s *discountService) CreateDiscount(ctx context.Context, req dto.CreateDiscountRequest) (*dto.DiscountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d := req.ToDiscount(ctx)
	if err := s.DiscountRepo.Create(ctx, d); err != nil {
		if ierr.IsAlreadyExists(err) {
			return nil, ierr.WithError(err).
				WithHintf("Discount code %s is already in use", lo.FromPtr(d.Code)).
				WithReportableDetails(map[string]any{
					"code": lo.FromPtr(d.Code),
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, err
	}

	s.Logger.Infow("created discount",
		"discount_id", d.ID,
		"code", lo.FromPtr(d.Code),
		"discount_type", d.DiscountType,
	)
	return &dto.DiscountResponse{Discount: d}, nil
}

func (s *discountService) GetDiscount(ctx context.Context, id string) (*dto.DiscountResponse, error) {
	if id == "" {
		return nil, ierr.NewError("discount ID is required").
			WithHint("Please provide a valid discount ID").
			Mark(ierr.ErrValidation)
	}

	d, err := s.DiscountRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.DiscountResponse{Discount: d}, nil
}

func (s *discountService) ListDiscounts(ctx context.Context, filter *types.DiscountFilter) (*dto.ListDiscountsResponse, error) {
	if filter == nil {
		filter = types.NewDiscountFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	discounts, err := s.DiscountRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.DiscountRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(discounts, func(d *discount.Discount, _ int) *dto.DiscountResponse {
		return &dto.DiscountResponse{Discount: d}
	})

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *discountService) SetDiscountActive(ctx context.Context, id string, active bool) (*dto.DiscountResponse, error) {
	d, err := s.DiscountRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	d.IsActive = active
	d.Touch(ctx)
	if err := s.DiscountRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	s.Logger.Infow("updated discount", "discount_id", id, "is_active", active)
	return &dto.DiscountResponse{Discount: d}, nil
}

func (s *discountService) ValidateDiscountCode(ctx context.Context, req dto.ValidateDiscountRequest) (*dto.ValidateDiscountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.validateCode(ctx, req, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	result := "valid"
	if !resp.Valid {
		result = string(resp.Code)
	}
	s.Metrics.DiscountValidated(result)
	return resp, nil
}

func (s *discountService) validateCode(ctx context.Context, req dto.ValidateDiscountRequest, now time.Time) (*dto.ValidateDiscountResponse, error) {
	d, err := s.DiscountRepo.GetByCode(ctx, req.Code)
	if err != nil {
		if ierr.IsNotFound(err) {
			return invalidDiscount(types.DiscountValidationCodeInvalidCode, "Invalid discount code"), nil
		}
		return nil, err
	}

	code, err := checkDiscountEligibility(ctx, s.ServiceParams, d, lo.FromPtr(req.UserID), now)
	if err != nil {
		return nil, err
	}
	if code != "" {
		return invalidDiscount(code, eligibilityMessage(code)), nil
	}

	cartTotal := s.Calculator.CartTotal(req.CartItems)
	if d.MinPurchaseAmount.Valid && cartTotal.LessThan(d.MinPurchaseAmount.Decimal) {
		return invalidDiscount(
			types.DiscountValidationCodeMinimumNotMet,
			"Minimum purchase amount of "+d.MinPurchaseAmount.Decimal.StringFixed(types.MoneyPrecision)+" not met",
		), nil
	}

	productIDs := lo.FilterMap(req.CartItems, func(item billing.CartItem, _ int) (string, bool) {
		return item.ProductID, item.ProductID != ""
	})
	if !d.AppliesToAny(productIDs) {
		return invalidDiscount(types.DiscountValidationCodeNotApplicable, "Discount is not applicable to any item in the cart"), nil
	}

	amount := s.Calculator.CartDiscount(*d.ToBilling(), cartTotal)
	return &dto.ValidateDiscountResponse{
		Valid:          true,
		Discount:       &dto.DiscountResponse{Discount: d},
		DiscountAmount: &amount,
		Message:        "Discount applied",
	}, nil
}

func (s *discountService) ApplyDiscountCode(ctx context.Context, discountID string, req dto.ApplyDiscountRequest) (*dto.DiscountUsageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var usage *discount.DiscountUsage
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		d, err := s.DiscountRepo.Get(ctx, discountID)
		if err != nil {
			return err
		}

		code, err := checkDiscountEligibility(ctx, s.ServiceParams, d, req.UserID, time.Now().UTC())
		if err != nil {
			return err
		}
		if code != "" {
			return ierr.NewErrorf("discount %s cannot be applied: %s", d.ID, code).
				WithHint(eligibilityMessage(code)).
				WithReportableDetails(map[string]any{
					"discount_id": d.ID,
					"reason":      code,
				}).
				Mark(ierr.ErrBusinessRule)
		}

		usage = newDiscountUsage(ctx, d.ID, req.UserID, req.InvoiceID)
		return s.DiscountRepo.CreateUsage(ctx, usage)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("applied discount",
		"discount_id", discountID,
		"user_id", req.UserID,
		"usage_id", usage.ID,
	)
	return &dto.DiscountUsageResponse{DiscountUsage: usage}, nil
}

// checkDiscountEligibility runs the active, validity window and usage cap checks
// in that order. It returns an empty code when the discount can be used.
// The per user cap is only checked when userID is set.
func checkDiscountEligibility(
	ctx context.Context,
	params ServiceParams,
	d *discount.Discount,
	userID string,
	now time.Time,
) (types.DiscountValidationCode, error) {
	if !d.IsActive {
		return types.DiscountValidationCodeInactive, nil
	}
	if d.NotYetValid(now) {
		return types.DiscountValidationCodeNotYetValid, nil
	}
	if d.Expired(now) {
		return types.DiscountValidationCodeExpired, nil
	}

	if d.MaxUses != nil {
		used, err := params.DiscountRepo.CountUsages(ctx, &types.DiscountUsageFilter{DiscountID: d.ID})
		if err != nil {
			return "", err
		}
		if used >= *d.MaxUses {
			return types.DiscountValidationCodeUsageLimitReached, nil
		}
	}

	if d.MaxUsesPerUser != nil && userID != "" {
		used, err := params.DiscountRepo.CountUsages(ctx, &types.DiscountUsageFilter{
			DiscountID: d.ID,
			UserID:     userID,
		})
		if err != nil {
			return "", err
		}
		if used >= *d.MaxUsesPerUser {
			return types.DiscountValidationCodeUserLimitReached, nil
		}
	}

	return "", nil
}

func eligibilityMessage(code types.DiscountValidationCode) string {
	switch code {
	case types.DiscountValidationCodeInactive:
		return "Discount is no longer active"
	case types.DiscountValidationCodeNotYetValid:
		return "Discount is not yet valid"
	case types.DiscountValidationCodeExpired:
		return "Discount has expired"
	case types.DiscountValidationCodeUsageLimitReached:
		return "Discount has reached its maximum usage limit"
	case types.DiscountValidationCodeUserLimitReached:
		return "You have reached the per-user limit for this discount"
	default:
		return "Discount cannot be applied"
	}
}

func invalidDiscount(code types.DiscountValidationCode, message string) *dto.ValidateDiscountResponse {
	return &dto.ValidateDiscountResponse{
		Valid:   false,
		Code:    code,
		Message: message,
	}
}

func newDiscountUsage(ctx context.Context, discountID, userID string, invoiceID *string) *discount.DiscountUsage {
	return &discount.DiscountUsage{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DISCOUNT_USAGE),
		DiscountID: discountID,
		UserID:     userID,
		InvoiceID:  invoiceID,
		TenantID:   types.GetTenantID(ctx),
		UsedAt:     time.Now().UTC(),
	}
}
