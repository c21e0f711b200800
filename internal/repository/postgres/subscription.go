package postgres

import (
	"context"

	"github.com/flexprice/subscriptions/internal/domain/subscription"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/types"
)

var subscriptionColumns = columns(
	[]string{
		"id", "customer_id", "plan_id", "salesperson_id", "subscription_status",
		"quotation_template_id", "expiration_date", "start_date", "end_date", "next_billing_date",
	},
	baseColumns,
)

var subscriptionLineColumns = columns(
	[]string{
		"id", "subscription_id", "variant_id", "product_id", "quantity", "unit_price",
		"discount_id", "tax_rate_id", "position",
	},
	baseColumns,
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) CreateWithLines(ctx context.Context, sub *subscription.Subscription) error {
	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
		"lines", len(sub.Lines),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		if _, err := q.NamedExecContext(ctx, insertStatement("subscriptions", subscriptionColumns), sub); err != nil {
			return postgres.HandleError(err, "subscription", map[string]any{"subscription_id": sub.ID})
		}
		for _, line := range sub.Lines {
			if _, err := q.NamedExecContext(ctx, insertStatement("subscription_lines", subscriptionLineColumns), line); err != nil {
				return postgres.HandleError(err, "subscription line", map[string]any{"subscription_id": sub.ID})
			}
		}
		return nil
	})
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	return r.get(ctx, id, false)
}

func (r *subscriptionRepository) GetForUpdate(ctx context.Context, id string) (*subscription.Subscription, error) {
	return r.get(ctx, id, true)
}

func (r *subscriptionRepository) get(ctx context.Context, id string, forUpdate bool) (*subscription.Subscription, error) {
	query := "SELECT " + selectList(subscriptionColumns) + " FROM subscriptions WHERE id = $1 AND tenant_id = $2"
	if forUpdate {
		query += " FOR UPDATE"
	}

	var sub subscription.Subscription
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, id, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.HandleError(err, "subscription", map[string]any{"subscription_id": id})
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetWithLines(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := r.ListLines(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.Lines = lines
	return sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET
			subscription_status = :subscription_status,
			quotation_template_id = :quotation_template_id,
			expiration_date = :expiration_date,
			start_date = :start_date,
			end_date = :end_date,
			next_billing_date = :next_billing_date,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE
			id = :id AND
			tenant_id = :tenant_id
	`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, sub)
	if err != nil {
		return postgres.HandleError(err, "subscription", map[string]any{"subscription_id": sub.ID})
	}
	return requireAffected(result, "subscription", sub.ID)
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	qf := queryFilterOrDefault(filter.QueryFilter)
	where := r.where(ctx, filter, qf)

	query := "SELECT " + selectList(subscriptionColumns) + " FROM subscriptions" + where.String() +
		orderAndPage(qf, "start_date", "next_billing_date")

	var subs []*subscription.Subscription
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &subs, query, where.args...); err != nil {
		return nil, postgres.HandleError(err, "subscription", nil)
	}
	return subs, nil
}

func (r *subscriptionRepository) Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	where := r.where(ctx, filter, queryFilterOrDefault(filter.QueryFilter))

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM subscriptions"+where.String(), where.args...); err != nil {
		return 0, postgres.HandleError(err, "subscription", nil)
	}
	return count, nil
}

func (r *subscriptionRepository) AddLine(ctx context.Context, line *subscription.SubscriptionLine) error {
	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertStatement("subscription_lines", subscriptionLineColumns), line)
	return postgres.HandleError(err, "subscription line", map[string]any{"subscription_id": line.SubscriptionID})
}

func (r *subscriptionRepository) ListLines(ctx context.Context, subscriptionID string) ([]*subscription.SubscriptionLine, error) {
	query := "SELECT " + selectList(subscriptionLineColumns) +
		" FROM subscription_lines WHERE subscription_id = $1 AND tenant_id = $2 AND status = $3 ORDER BY position ASC, id ASC"

	var lines []*subscription.SubscriptionLine
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &lines, query, subscriptionID, types.GetTenantID(ctx), types.StatusPublished); err != nil {
		return nil, postgres.HandleError(err, "subscription line", map[string]any{"subscription_id": subscriptionID})
	}
	return lines, nil
}

func (r *subscriptionRepository) where(ctx context.Context, filter *types.SubscriptionFilter, qf *types.QueryFilter) *whereBuilder {
	statuses := make([]string, len(filter.SubscriptionStatuses))
	for i, s := range filter.SubscriptionStatuses {
		statuses[i] = string(s)
	}

	return newWhere(ctx).
		status(qf).
		in("id", filter.SubscriptionIDs).
		in("subscription_status", statuses).
		addIf(filter.CustomerID != "", "customer_id = ?", filter.CustomerID).
		addIf(filter.PlanID != "", "plan_id = ?", filter.PlanID).
		timeRange("created_at", filter.TimeRangeFilter)
}
