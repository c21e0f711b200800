package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// Unique indexes on invoices, see migrations/00001_init.sql
const (
	IndexInvoiceIdempotencyKey     = "idx_invoices_tenant_idempotency_key"
	IndexInvoiceSubscriptionPeriod = "idx_invoices_subscription_period"
	IndexInvoiceNumber             = "idx_invoices_tenant_number"
)

// IsUniqueViolation reports whether err is a postgres unique constraint violation
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

// Constraint returns the violated constraint name, if any
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// IsUniqueViolationOn reports whether err violates the unique index named index
func IsUniqueViolationOn(err error, index string) bool {
	return IsUniqueViolation(err) && Constraint(err) == index
}

// HandleError maps driver errors onto the error taxonomy.
// entity is used in hints, ex "invoice".
func HandleError(err error, entity string, details map[string]any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return ierr.WithError(err).
				WithHintf("%s already exists", entity).
				WithReportableDetails(lo.Assign(details, map[string]any{"constraint": pqErr.Constraint})).
				Mark(ierr.ErrAlreadyExists)
		case pqForeignKeyViolation:
			return ierr.WithError(err).
				WithHintf("%s references a record that does not exist", entity).
				WithReportableDetails(details).
				Mark(ierr.ErrValidation)
		case pqCheckViolation:
			return ierr.WithError(err).
				WithHintf("%s violates a data constraint", entity).
				WithReportableDetails(details).
				Mark(ierr.ErrValidation)
		}
	}

	return ierr.WithError(err).
		WithHintf("failed to access %s", entity).
		Mark(ierr.ErrDatabase)
}
