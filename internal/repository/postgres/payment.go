package postgres

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/payment"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/types"
)

var paymentColumns = columns(
	[]string{"id", "invoice_id", "amount", "payment_method", "reference", "payment_date"},
	baseColumns,
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	r.logger.Debugw("creating payment", "payment_id", p.ID, "invoice_id", p.InvoiceID)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertStatement("payments", paymentColumns), p)
	return postgres.HandleError(err, "payment", map[string]any{"payment_id": p.ID})
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := "SELECT " + selectList(paymentColumns) + " FROM payments WHERE id = $1 AND tenant_id = $2"

	var p payment.Payment
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.HandleError(err, "payment", map[string]any{"payment_id": id})
	}
	return &p, nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	qf := queryFilterOrDefault(filter.QueryFilter)
	where := r.where(ctx, filter, qf)

	query := "SELECT " + selectList(paymentColumns) + " FROM payments" + where.String() + orderAndPage(qf, "payment_date", "amount")

	var payments []*payment.Payment
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments, query, where.args...); err != nil {
		return nil, postgres.HandleError(err, "payment", nil)
	}
	return payments, nil
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	where := r.where(ctx, filter, queryFilterOrDefault(filter.QueryFilter))

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM payments"+where.String(), where.args...); err != nil {
		return 0, postgres.HandleError(err, "payment", nil)
	}
	return count, nil
}

func (r *paymentRepository) where(ctx context.Context, filter *types.PaymentFilter, qf *types.QueryFilter) *whereBuilder {
	return newWhere(ctx).
		status(qf).
		in("id", filter.PaymentIDs).
		addIf(filter.InvoiceID != "", "invoice_id = ?", filter.InvoiceID).
		timeRange("payment_date", filter.TimeRangeFilter)
}
