package payment

import (
	"time"

	"github.com/flexprice/subscriptions/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is an immutable amount applied to an invoice
type Payment struct {
	ID            string              `db:"id" json:"id"`
	InvoiceID     string              `db:"invoice_id" json:"invoice_id"`
	Amount        decimal.Decimal     `db:"amount" json:"amount"`
	PaymentMethod types.PaymentMethod `db:"payment_method" json:"payment_method"`
	Reference     string              `db:"reference" json:"reference"`
	PaymentDate   time.Time           `db:"payment_date" json:"payment_date"`
	types.BaseModel
}
