package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/lib/pq"
)

// baseColumns are the BaseModel columns every table carries
var baseColumns = []string{"tenant_id", "status", "created_at", "updated_at", "created_by", "updated_by"}

func columns(cols ...[]string) []string {
	var out []string
	for _, c := range cols {
		out = append(out, c...)
	}
	return out
}

func selectList(cols []string) string {
	return strings.Join(cols, ", ")
}

// insertStatement builds a named INSERT for use with NamedExecContext
func insertStatement(table string, cols []string) string {
	named := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(named, ", "))
}

// whereBuilder accumulates positional conditions. Every query starts scoped to the tenant.
type whereBuilder struct {
	conds []string
	args  []any
}

func newWhere(ctx context.Context) *whereBuilder {
	w := &whereBuilder{}
	w.add("tenant_id = ?", types.GetTenantID(ctx))
	return w
}

// add appends a condition, ? is replaced by the next positional parameter
func (w *whereBuilder) add(cond string, arg any) *whereBuilder {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1))
	return w
}

func (w *whereBuilder) addIf(ok bool, cond string, arg any) *whereBuilder {
	if ok {
		w.add(cond, arg)
	}
	return w
}

// in appends column = ANY(?) for non empty values
func (w *whereBuilder) in(column string, values []string) *whereBuilder {
	if len(values) == 0 {
		return w
	}
	return w.add(column+" = ANY(?)", pq.Array(values))
}

func (w *whereBuilder) timeRange(column string, f *types.TimeRangeFilter) *whereBuilder {
	if f == nil {
		return w
	}
	if f.StartTime != nil {
		w.add(column+" >= ?", *f.StartTime)
	}
	if f.EndTime != nil {
		w.add(column+" <= ?", *f.EndTime)
	}
	return w
}

func (w *whereBuilder) status(f types.BaseFilter) *whereBuilder {
	return w.add("status = ?", f.GetStatus())
}

func (w *whereBuilder) String() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderAndPage renders ORDER BY and LIMIT/OFFSET. Sort columns outside allowed
// fall back to created_at so user input never reaches the query text.
func orderAndPage(f types.BaseFilter, allowed ...string) string {
	sort := types.FILTER_DEFAULT_SORT
	for _, a := range append(allowed, "created_at", "updated_at") {
		if f.GetSort() == a {
			sort = a
			break
		}
	}

	order := "DESC"
	if strings.EqualFold(f.GetOrder(), types.OrderAsc) {
		order = "ASC"
	}

	// id is a ulid, it breaks ties deterministically
	q := fmt.Sprintf(" ORDER BY %s %s, id %s", sort, order, order)
	if f.IsUnlimited() {
		return q
	}
	return q + fmt.Sprintf(" LIMIT %d OFFSET %d", f.GetLimit(), f.GetOffset())
}

func queryFilterOrDefault(f *types.QueryFilter) *types.QueryFilter {
	if f == nil {
		return types.NewDefaultQueryFilter()
	}
	return f
}

// requireAffected turns an update that matched no row into a not found error
func requireAffected(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if n == 0 {
		return ierr.NewErrorf("%s %s not found", entity, id).
			WithHintf("%s not found", entity).
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
