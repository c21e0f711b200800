package postgres

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/taxrate"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/types"
)

var taxRateColumns = columns(
	[]string{"id", "name", "percentage", "is_active"},
	baseColumns,
)

type taxRateRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTaxRateRepository(db *postgres.DB, logger *logger.Logger) taxrate.Repository {
	return &taxRateRepository{db: db, logger: logger}
}

func (r *taxRateRepository) Create(ctx context.Context, t *taxrate.TaxRate) error {
	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertStatement("tax_rates", taxRateColumns), t)
	return postgres.HandleError(err, "tax rate", map[string]any{"tax_rate_id": t.ID})
}

func (r *taxRateRepository) Get(ctx context.Context, id string) (*taxrate.TaxRate, error) {
	query := "SELECT " + selectList(taxRateColumns) + " FROM tax_rates WHERE id = $1 AND tenant_id = $2"

	var t taxrate.TaxRate
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &t, query, id, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.HandleError(err, "tax rate", map[string]any{"tax_rate_id": id})
	}
	return &t, nil
}

func (r *taxRateRepository) List(ctx context.Context, filter *types.TaxRateFilter) ([]*taxrate.TaxRate, error) {
	if filter == nil {
		filter = types.NewTaxRateFilter()
	}
	qf := queryFilterOrDefault(filter.QueryFilter)
	where := r.where(ctx, filter, qf)

	query := "SELECT " + selectList(taxRateColumns) + " FROM tax_rates" + where.String() + orderAndPage(qf, "name", "percentage")

	var rates []*taxrate.TaxRate
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rates, query, where.args...); err != nil {
		return nil, postgres.HandleError(err, "tax rate", nil)
	}
	return rates, nil
}

func (r *taxRateRepository) Count(ctx context.Context, filter *types.TaxRateFilter) (int, error) {
	if filter == nil {
		filter = types.NewTaxRateFilter()
	}
	where := r.where(ctx, filter, queryFilterOrDefault(filter.QueryFilter))

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM tax_rates"+where.String(), where.args...); err != nil {
		return 0, postgres.HandleError(err, "tax rate", nil)
	}
	return count, nil
}

func (r *taxRateRepository) Update(ctx context.Context, t *taxrate.TaxRate) error {
	query := `
		UPDATE tax_rates
		SET
			name = :name,
			is_active = :is_active,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE
			id = :id AND
			tenant_id = :tenant_id
	`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, t)
	if err != nil {
		return postgres.HandleError(err, "tax rate", map[string]any{"tax_rate_id": t.ID})
	}
	return requireAffected(result, "tax rate", t.ID)
}

func (r *taxRateRepository) where(ctx context.Context, filter *types.TaxRateFilter, qf *types.QueryFilter) *whereBuilder {
	w := newWhere(ctx).
		status(qf).
		in("id", filter.TaxRateIDs)
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}
	return w
}
