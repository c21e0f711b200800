package postgres

import (
	"database/sql"
	"errors"
	"testing"

	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"no rows", sql.ErrNoRows, ierr.IsNotFound},
		{"unique", &pq.Error{Code: pqUniqueViolation, Constraint: IndexInvoiceNumber}, ierr.IsAlreadyExists},
		{"foreign key", &pq.Error{Code: pqForeignKeyViolation}, ierr.IsValidation},
		{"check", &pq.Error{Code: pqCheckViolation}, ierr.IsValidation},
		{"other", errors.New("connection reset"), ierr.IsDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(HandleError(tt.err, "invoice", nil)))
		})
	}
	assert.NoError(t, HandleError(nil, "invoice", nil))
}

func TestUniqueViolationSurvivesMarking(t *testing.T) {
	err := HandleError(&pq.Error{Code: pqUniqueViolation, Constraint: IndexInvoiceIdempotencyKey}, "invoice", map[string]any{"invoice_id": "inv_1"})

	assert.True(t, IsUniqueViolation(err))
	assert.Equal(t, IndexInvoiceIdempotencyKey, Constraint(err))
	assert.True(t, IsUniqueViolationOn(err, IndexInvoiceIdempotencyKey))
	assert.False(t, IsUniqueViolationOn(err, IndexInvoiceNumber))

	fk := HandleError(&pq.Error{Code: pqForeignKeyViolation, Constraint: "fk_invoice_lines_invoice"}, "invoice line", nil)
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolationOn(fk, "fk_invoice_lines_invoice"))
	assert.Empty(t, Constraint(errors.New("plain")))
}
