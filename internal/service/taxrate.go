package service

import (
	"context"

	"github.com/flexprice/subscriptions/internal/api/dto"
	"github.com/flexprice/subscriptions/internal/cache"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
)

type TaxRateService interface {
	CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest) (*dto.TaxRateResponse, error)
	GetTaxRate(ctx context.Context, id string) (*dto.TaxRateResponse, error)
	ListTaxRates(ctx context.Context, filter *types.TaxRateFilter) (*dto.ListTaxRatesResponse, error)
	SetTaxRateActive(ctx context.Context, id string, active bool) (*dto.TaxRateResponse, error)
}

type taxRateService struct {
	ServiceParams
}

func NewTaxRateService(params ServiceParams) TaxRateService {
	return &taxRateService{ServiceParams: params}
}

func (s *taxRateService) CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest) (*dto.TaxRateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t := req.ToTaxRate(ctx)
	if err := s.TaxRateRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.Logger.Infow("created tax rate", "tax_rate_id", t.ID, "percentage", t.Percentage)
	return &dto.TaxRateResponse{TaxRate: t}, nil
}

func (s *taxRateService) GetTaxRate(ctx context.Context, id string) (*dto.TaxRateResponse, error) {
	if id == "" {
		return nil, ierr.NewError("tax rate ID is required").
			WithHint("Please provide a valid tax rate ID").
			Mark(ierr.ErrValidation)
	}

	t, err := getTaxRate(ctx, s.ServiceParams, id)
	if err != nil {
		return nil, err
	}
	return &dto.TaxRateResponse{TaxRate: t}, nil
}

func (s *taxRateService) ListTaxRates(ctx context.Context, filter *types.TaxRateFilter) (*dto.ListTaxRatesResponse, error) {
	if filter == nil {
		filter = types.NewTaxRateFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	rates, err := s.TaxRateRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.TaxRateRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TaxRateResponse, len(rates))
	for i, t := range rates {
		items[i] = &dto.TaxRateResponse{TaxRate: t}
	}

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

// SetTaxRateActive toggles the rate. Inactive rates are skipped at invoice generation,
// invoices already generated keep their snapshot.
func (s *taxRateService) SetTaxRateActive(ctx context.Context, id string, active bool) (*dto.TaxRateResponse, error) {
	t, err := s.TaxRateRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	t.IsActive = active
	t.Touch(ctx)
	if err := s.TaxRateRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	invalidate(ctx, s.ServiceParams, cache.PrefixTaxRate, id)

	s.Logger.Infow("updated tax rate", "tax_rate_id", id, "is_active", active)
	return &dto.TaxRateResponse{TaxRate: t}, nil
}
