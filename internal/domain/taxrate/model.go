package taxrate

import (
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/shopspring/decimal"
)

// TaxRate is a percentage tax applied to the taxable amount of a line
type TaxRate struct {
	ID         string          `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	Percentage decimal.Decimal `db:"percentage" json:"percentage"`
	IsActive   bool            `db:"is_active" json:"is_active"`
	types.BaseModel
}
