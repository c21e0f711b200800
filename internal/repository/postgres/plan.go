package postgres

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/plan"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/types"
)

var planColumns = columns(
	[]string{"id", "name", "description", "billing_period", "interval_count", "due_days"},
	baseColumns,
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	r.logger.Debugw("creating plan", "plan_id", p.ID, "tenant_id", p.TenantID)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertStatement("plans", planColumns), p)
	return postgres.HandleError(err, "plan", map[string]any{"plan_id": p.ID})
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	query := "SELECT " + selectList(planColumns) + " FROM plans WHERE id = $1 AND tenant_id = $2"

	var p plan.Plan
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.HandleError(err, "plan", map[string]any{"plan_id": id})
	}
	return &p, nil
}

func (r *planRepository) List(ctx context.Context, filter *types.PlanFilter) ([]*plan.Plan, error) {
	if filter == nil {
		filter = types.NewPlanFilter()
	}
	qf := queryFilterOrDefault(filter.QueryFilter)
	where := r.where(ctx, filter, qf)

	query := "SELECT " + selectList(planColumns) + " FROM plans" + where.String() + orderAndPage(qf, "name")

	var plans []*plan.Plan
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &plans, query, where.args...); err != nil {
		return nil, postgres.HandleError(err, "plan", nil)
	}
	return plans, nil
}

func (r *planRepository) Count(ctx context.Context, filter *types.PlanFilter) (int, error) {
	if filter == nil {
		filter = types.NewPlanFilter()
	}
	where := r.where(ctx, filter, queryFilterOrDefault(filter.QueryFilter))

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM plans"+where.String(), where.args...); err != nil {
		return 0, postgres.HandleError(err, "plan", nil)
	}
	return count, nil
}

func (r *planRepository) where(ctx context.Context, filter *types.PlanFilter, qf *types.QueryFilter) *whereBuilder {
	return newWhere(ctx).
		status(qf).
		in("id", filter.PlanIDs)
}
