package testutil

import (
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/lib/pq"
)

func notFound(entity, id string) error {
	return ierr.NewErrorf("%s %s not found", entity, id).
		WithHintf("%s not found", entity).
		WithReportableDetails(map[string]any{"id": id}).
		Mark(ierr.ErrNotFound)
}

func alreadyExists(entity string, details map[string]any) error {
	return ierr.NewErrorf("%s already exists", entity).
		WithHintf("%s already exists", entity).
		WithReportableDetails(details).
		Mark(ierr.ErrAlreadyExists)
}

// UniqueViolation builds the error the postgres repositories return when
// an insert hits the unique index named index
func UniqueViolation(index, entity string, details map[string]any) error {
	return postgres.HandleError(&pq.Error{
		Code:       "23505",
		Message:    "duplicate key value violates unique constraint \"" + index + "\"",
		Constraint: index,
	}, entity, details)
}
