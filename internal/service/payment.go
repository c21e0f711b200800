package service

import (
	"context"
	"time"

	"github.com/flexprice/subscriptions/internal/api/dto"
	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/domain/payment"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
)

type PaymentService interface {
	// RecordPayment applies a payment to a confirmed invoice and marks it paid
	// once the paid amount covers the total. Overpayment is accepted.
	RecordPayment(ctx context.Context, invoiceID string, req dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

func (s *paymentService) RecordPayment(ctx context.Context, invoiceID string, req dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var p *payment.Payment
	var inv *invoice.Invoice

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.InvoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.InvoiceStatus != types.InvoiceStatusConfirmed {
			return illegalInvoiceTransition(inv, types.InvoiceActionPay)
		}

		p = req.ToPayment(ctx, inv.ID, now)
		if err := s.PaymentRepo.Create(ctx, p); err != nil {
			return err
		}

		inv.PaidAmount = inv.PaidAmount.Add(p.Amount)
		if inv.IsFullyPaid() {
			next, err := nextInvoiceStatus(inv, types.InvoiceActionPay)
			if err != nil {
				return err
			}
			inv.InvoiceStatus = next
			inv.PaidAt = &now
		}
		inv.Touch(ctx)
		return s.InvoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		s.Logger.Debugw("payment rejected", "invoice_id", invoiceID, "error", err)
		return nil, err
	}

	s.Metrics.PaymentRecorded(string(p.PaymentMethod))
	if inv.InvoiceStatus == types.InvoiceStatusPaid {
		s.Metrics.InvoiceTransition(string(types.InvoiceActionPay), nil)
	}

	s.Logger.Infow("recorded payment",
		"payment_id", p.ID,
		"invoice_id", inv.ID,
		"amount", p.Amount,
		"paid_amount", inv.PaidAmount,
		"invoice_status", inv.InvoiceStatus,
	)
	return &dto.RecordPaymentResponse{
		Payment: &dto.PaymentResponse{Payment: p},
		Invoice: dto.NewInvoiceResponse(inv, now),
	}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	if id == "" {
		return nil, ierr.NewError("payment ID is required").
			WithHint("Please provide a valid payment ID").
			Mark(ierr.ErrValidation)
	}

	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse {
		return &dto.PaymentResponse{Payment: p}
	})

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}
