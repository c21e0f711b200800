package service

import (
	"context"
	"time"

	"github.com/flexprice/subscriptions/internal/api/dto"
	"github.com/flexprice/subscriptions/internal/domain/subscription"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
)

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	AddSubscriptionLine(ctx context.Context, id string, req dto.CreateSubscriptionLineRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error)

	// State machine actions, each applied under a row lock on the subscription
	QuoteSubscription(ctx context.Context, id string, req dto.QuoteSubscriptionRequest) (*dto.SubscriptionResponse, error)
	ConfirmSubscription(ctx context.Context, id string, req dto.ConfirmSubscriptionRequest) (*dto.SubscriptionResponse, error)
	ActivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	CloseSubscription(ctx context.Context, id string, req dto.CloseSubscriptionRequest) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := getPlan(ctx, s.ServiceParams, req.PlanID); err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		if err := s.validateLineReferences(ctx, line); err != nil {
			return nil, err
		}
	}

	sub := req.ToSubscription(ctx)
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		return s.SubRepo.CreateWithLines(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created subscription",
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
		"plan_id", sub.PlanID,
		"lines", len(sub.Lines),
	)
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) AddSubscriptionLine(ctx context.Context, id string, req dto.CreateSubscriptionLineRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateLineReferences(ctx, req); err != nil {
		return nil, err
	}

	var sub *subscription.Subscription
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.SubRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !subscriptionEditableStatuses[sub.SubscriptionStatus] {
			return illegalSubscriptionTransition(sub, types.SubscriptionActionEditLines)
		}

		lines, err := s.SubRepo.ListLines(ctx, id)
		if err != nil {
			return err
		}

		line := req.ToSubscriptionLine(ctx, sub.ID, nextLinePosition(lines))
		if err := s.SubRepo.AddLine(ctx, line); err != nil {
			return err
		}
		sub.Lines = append(lines, line)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("added subscription line",
		"subscription_id", id,
		"variant_id", req.VariantID,
	)
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	if id == "" {
		return nil, ierr.NewError("subscription ID is required").
			WithHint("Please provide a valid subscription ID").
			Mark(ierr.ErrValidation)
	}

	sub, err := s.SubRepo.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.SubRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(subs, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse {
		return &dto.SubscriptionResponse{Subscription: sub}
	})

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *subscriptionService) QuoteSubscription(ctx context.Context, id string, req dto.QuoteSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	now := time.Now().UTC()

	return s.transition(ctx, id, types.SubscriptionActionQuote, func(ctx context.Context, sub *subscription.Subscription) error {
		expiration := now.AddDate(0, 0, s.Config.Billing.QuotationValidityDays)
		if req.ExpirationDate != nil {
			expiration = req.ExpirationDate.UTC()
		}
		if !expiration.After(now) {
			return ierr.NewError("quotation expiration date must be in the future").
				WithHint("Please provide an expiration date in the future").
				WithReportableDetails(map[string]any{
					"expiration_date": expiration,
				}).
				Mark(ierr.ErrBusinessRule)
		}

		sub.QuotationTemplateID = req.QuotationTemplateID
		sub.ExpirationDate = &expiration
		return nil
	})
}

func (s *subscriptionService) ConfirmSubscription(ctx context.Context, id string, req dto.ConfirmSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, types.SubscriptionActionConfirm, func(ctx context.Context, sub *subscription.Subscription) error {
		lines, err := s.SubRepo.ListLines(ctx, sub.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ierr.NewErrorf("subscription %s has no lines", sub.ID).
				WithHint("Add at least one line before confirming the subscription").
				WithReportableDetails(map[string]any{
					"subscription_id": sub.ID,
				}).
				Mark(ierr.ErrBusinessRule)
		}

		startDate := time.Now().UTC()
		if req.StartDate != nil {
			startDate = req.StartDate.UTC()
		}
		sub.StartDate = &startDate
		sub.Lines = lines
		return nil
	})
}

func (s *subscriptionService) ActivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, types.SubscriptionActionActivate, func(ctx context.Context, sub *subscription.Subscription) error {
		p, err := getPlan(ctx, s.ServiceParams, sub.PlanID)
		if err != nil {
			return err
		}

		if sub.StartDate == nil {
			sub.StartDate = lo.ToPtr(time.Now().UTC())
		}
		next, err := p.NextPeriodStart(*sub.StartDate)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Plan billing configuration is invalid").
				WithReportableDetails(map[string]any{
					"plan_id": p.ID,
				}).
				Mark(ierr.ErrValidation)
		}
		sub.NextBillingDate = &next
		return nil
	})
}

func (s *subscriptionService) CloseSubscription(ctx context.Context, id string, req dto.CloseSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, types.SubscriptionActionClose, func(ctx context.Context, sub *subscription.Subscription) error {
		endDate := time.Now().UTC()
		if req.EndDate != nil {
			endDate = req.EndDate.UTC()
		}
		if sub.StartDate != nil && endDate.Before(*sub.StartDate) {
			return ierr.NewError("end date is before start date").
				WithHint("Subscription end date must not be before its start date").
				WithReportableDetails(map[string]any{
					"start_date": *sub.StartDate,
					"end_date":   endDate,
				}).
				Mark(ierr.ErrBusinessRule)
		}
		sub.EndDate = &endDate
		return nil
	})
}

// transition locks the subscription, checks the move against the transition
// table, lets apply fill in the action specific fields and persists the result.
// Nothing is written when any step fails.
func (s *subscriptionService) transition(
	ctx context.Context,
	id string,
	action types.SubscriptionAction,
	apply func(ctx context.Context, sub *subscription.Subscription) error,
) (*dto.SubscriptionResponse, error) {
	var sub *subscription.Subscription
	var from types.SubscriptionStatus

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.SubRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from = sub.SubscriptionStatus

		next, err := nextSubscriptionStatus(sub, action)
		if err != nil {
			return err
		}
		if err := apply(ctx, sub); err != nil {
			return err
		}

		sub.SubscriptionStatus = next
		sub.Touch(ctx)
		return s.SubRepo.Update(ctx, sub)
	})
	s.Metrics.SubscriptionTransition(string(action), err)
	if err != nil {
		s.Logger.Debugw("subscription transition rejected",
			"subscription_id", id,
			"action", action,
			"error", err,
		)
		return nil, err
	}

	s.Logger.Infow("subscription transitioned",
		"subscription_id", id,
		"action", action,
		"from", from,
		"to", sub.SubscriptionStatus,
	)
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) validateLineReferences(ctx context.Context, line dto.CreateSubscriptionLineRequest) error {
	if line.DiscountID != nil {
		if _, err := s.DiscountRepo.Get(ctx, *line.DiscountID); err != nil {
			return err
		}
	}
	if line.TaxRateID != nil {
		if _, err := getTaxRate(ctx, s.ServiceParams, *line.TaxRateID); err != nil {
			return err
		}
	}
	return nil
}

func nextLinePosition(lines []*subscription.SubscriptionLine) int {
	if len(lines) == 0 {
		return 0
	}
	return lo.MaxBy(lines, func(a, b *subscription.SubscriptionLine) bool {
		return a.Position > b.Position
	}).Position + 1
}
