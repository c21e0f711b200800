package postgres

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/discount"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/types"
)

var discountColumns = columns(
	[]string{
		"id", "name", "code", "discount_type", "value", "start_date", "end_date",
		"max_uses", "max_uses_per_user", "min_purchase_amount", "applicable_product_ids", "is_active",
	},
	baseColumns,
)

var discountUsageColumns = []string{"id", "tenant_id", "discount_id", "user_id", "invoice_id", "used_at"}

type discountRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDiscountRepository(db *postgres.DB, logger *logger.Logger) discount.Repository {
	return &discountRepository{db: db, logger: logger}
}

func (r *discountRepository) Create(ctx context.Context, d *discount.Discount) error {
	r.logger.Debugw("creating discount", "discount_id", d.ID, "tenant_id", d.TenantID)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertStatement("discounts", discountColumns), d)
	return postgres.HandleError(err, "discount", map[string]any{"discount_id": d.ID, "code": d.Code})
}

func (r *discountRepository) Get(ctx context.Context, id string) (*discount.Discount, error) {
	query := "SELECT " + selectList(discountColumns) + " FROM discounts WHERE id = $1 AND tenant_id = $2"

	var d discount.Discount
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &d, query, id, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.HandleError(err, "discount", map[string]any{"discount_id": id})
	}
	return &d, nil
}

func (r *discountRepository) GetByCode(ctx context.Context, code string) (*discount.Discount, error) {
	query := "SELECT " + selectList(discountColumns) + " FROM discounts WHERE code = $1 AND tenant_id = $2 AND status = $3"

	var d discount.Discount
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &d, query, code, types.GetTenantID(ctx), types.StatusPublished); err != nil {
		return nil, postgres.HandleError(err, "discount", map[string]any{"code": code})
	}
	return &d, nil
}

func (r *discountRepository) List(ctx context.Context, filter *types.DiscountFilter) ([]*discount.Discount, error) {
	if filter == nil {
		filter = types.NewDiscountFilter()
	}
	qf := queryFilterOrDefault(filter.QueryFilter)
	where := r.where(ctx, filter, qf)

	query := "SELECT " + selectList(discountColumns) + " FROM discounts" + where.String() + orderAndPage(qf, "name", "code")

	var discounts []*discount.Discount
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &discounts, query, where.args...); err != nil {
		return nil, postgres.HandleError(err, "discount", nil)
	}
	return discounts, nil
}

func (r *discountRepository) Count(ctx context.Context, filter *types.DiscountFilter) (int, error) {
	if filter == nil {
		filter = types.NewDiscountFilter()
	}
	where := r.where(ctx, filter, queryFilterOrDefault(filter.QueryFilter))

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM discounts"+where.String(), where.args...); err != nil {
		return 0, postgres.HandleError(err, "discount", nil)
	}
	return count, nil
}

func (r *discountRepository) Update(ctx context.Context, d *discount.Discount) error {
	query := `
		UPDATE discounts
		SET
			name = :name,
			is_active = :is_active,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE
			id = :id AND
			tenant_id = :tenant_id
	`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, d)
	if err != nil {
		return postgres.HandleError(err, "discount", map[string]any{"discount_id": d.ID})
	}
	return requireAffected(result, "discount", d.ID)
}

func (r *discountRepository) CreateUsage(ctx context.Context, usage *discount.DiscountUsage) error {
	r.logger.Debugw("recording discount usage",
		"discount_id", usage.DiscountID,
		"user_id", usage.UserID,
	)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertStatement("discount_usages", discountUsageColumns), usage)
	return postgres.HandleError(err, "discount usage", map[string]any{"discount_id": usage.DiscountID})
}

func (r *discountRepository) CountUsages(ctx context.Context, filter *types.DiscountUsageFilter) (int, error) {
	where := newWhere(ctx).
		add("discount_id = ?", filter.DiscountID).
		addIf(filter.UserID != "", "user_id = ?", filter.UserID)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM discount_usages"+where.String(), where.args...); err != nil {
		return 0, postgres.HandleError(err, "discount usage", nil)
	}
	return count, nil
}

func (r *discountRepository) where(ctx context.Context, filter *types.DiscountFilter, qf *types.QueryFilter) *whereBuilder {
	w := newWhere(ctx).
		status(qf).
		in("id", filter.DiscountIDs).
		addIf(filter.Code != "", "code = ?", filter.Code)
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}
	return w
}
