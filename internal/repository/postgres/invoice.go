package postgres

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/types"
)

var invoiceColumns = columns(
	[]string{
		"id", "invoice_number", "idempotency_key", "subscription_id", "customer_id", "invoice_status",
		"period_start", "period_end", "issue_date", "due_date",
		"subtotal", "discount_amount", "tax_amount", "total", "paid_amount",
		"confirmed_at", "paid_at", "canceled_at",
	},
	baseColumns,
)

var invoiceLineColumns = columns(
	[]string{
		"id", "invoice_id", "subscription_line_id", "variant_id", "product_id", "quantity", "unit_price",
		"discount_id", "tax_rate_id", "tax_percentage",
		"line_subtotal", "discount_amount", "taxable_amount", "tax_amount", "line_total", "position",
	},
	baseColumns,
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) CreateWithLines(ctx context.Context, inv *invoice.Invoice) error {
	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"subscription_id", inv.SubscriptionID,
		"idempotency_key", inv.IdempotencyKey,
	)

	details := map[string]any{
		"invoice_id":      inv.ID,
		"subscription_id": inv.SubscriptionID,
		"period_start":    inv.PeriodStart,
	}

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		if _, err := q.NamedExecContext(ctx, insertStatement("invoices", invoiceColumns), inv); err != nil {
			return postgres.HandleError(err, "invoice", details)
		}
		for _, line := range inv.Lines {
			if _, err := q.NamedExecContext(ctx, insertStatement("invoice_lines", invoiceLineColumns), line); err != nil {
				return postgres.HandleError(err, "invoice line", details)
			}
		}
		return nil
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := r.getOne(ctx, "id = $1", id, false)
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, inv)
}

func (r *invoiceRepository) GetForUpdate(ctx context.Context, id string) (*invoice.Invoice, error) {
	return r.getOne(ctx, "id = $1", id, true)
}

func (r *invoiceRepository) GetByIdempotencyKey(ctx context.Context, key string) (*invoice.Invoice, error) {
	inv, err := r.getOne(ctx, "idempotency_key = $1", key, false)
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, inv)
}

func (r *invoiceRepository) getOne(ctx context.Context, cond string, arg any, forUpdate bool) (*invoice.Invoice, error) {
	query := "SELECT " + selectList(invoiceColumns) + " FROM invoices WHERE " + cond + " AND tenant_id = $2"
	if forUpdate {
		query += " FOR UPDATE"
	}

	var inv invoice.Invoice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, arg, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.HandleError(err, "invoice", map[string]any{"lookup": arg})
	}
	return &inv, nil
}

func (r *invoiceRepository) withLines(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	query := "SELECT " + selectList(invoiceLineColumns) +
		" FROM invoice_lines WHERE invoice_id = $1 AND tenant_id = $2 ORDER BY position ASC, id ASC"

	var lines []*invoice.InvoiceLine
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &lines, query, inv.ID, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.HandleError(err, "invoice line", map[string]any{"invoice_id": inv.ID})
	}
	inv.Lines = lines
	return inv, nil
}

// Update persists status and payment progress. Amounts and lines are immutable.
func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET
			invoice_status = :invoice_status,
			paid_amount = :paid_amount,
			confirmed_at = :confirmed_at,
			paid_at = :paid_at,
			canceled_at = :canceled_at,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE
			id = :id AND
			tenant_id = :tenant_id
	`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv)
	if err != nil {
		return postgres.HandleError(err, "invoice", map[string]any{"invoice_id": inv.ID})
	}
	return requireAffected(result, "invoice", inv.ID)
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	qf := queryFilterOrDefault(filter.QueryFilter)
	where := r.where(ctx, filter, qf)

	query := "SELECT " + selectList(invoiceColumns) + " FROM invoices" + where.String() +
		orderAndPage(qf, "issue_date", "due_date", "period_start", "total")

	var invoices []*invoice.Invoice
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, where.args...); err != nil {
		return nil, postgres.HandleError(err, "invoice", nil)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	where := r.where(ctx, filter, queryFilterOrDefault(filter.QueryFilter))

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM invoices"+where.String(), where.args...); err != nil {
		return 0, postgres.HandleError(err, "invoice", nil)
	}
	return count, nil
}

func (r *invoiceRepository) where(ctx context.Context, filter *types.InvoiceFilter, qf *types.QueryFilter) *whereBuilder {
	statuses := make([]string, len(filter.InvoiceStatuses))
	for i, s := range filter.InvoiceStatuses {
		statuses[i] = string(s)
	}

	return newWhere(ctx).
		status(qf).
		in("id", filter.InvoiceIDs).
		in("invoice_status", statuses).
		addIf(filter.SubscriptionID != "", "subscription_id = ?", filter.SubscriptionID).
		addIf(filter.CustomerID != "", "customer_id = ?", filter.CustomerID).
		timeRange("issue_date", filter.TimeRangeFilter)
}
