package discount

import (
	"time"

	"github.com/flexprice/subscriptions/internal/domain/billing"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Discount is a reusable price reduction, optionally redeemable by code
type Discount struct {
	ID   string  `db:"id" json:"id"`
	Name string  `db:"name" json:"name"`
	Code *string `db:"code" json:"code,omitempty"`

	DiscountType types.DiscountType `db:"discount_type" json:"discount_type"`
	Value        decimal.Decimal    `db:"value" json:"value"`

	// StartDate and EndDate bound the validity window, nil is unbounded
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`

	MaxUses        *int `db:"max_uses" json:"max_uses,omitempty"`
	MaxUsesPerUser *int `db:"max_uses_per_user" json:"max_uses_per_user,omitempty"`

	MinPurchaseAmount    decimal.NullDecimal `db:"min_purchase_amount" json:"min_purchase_amount"`
	ApplicableProductIDs pq.StringArray      `db:"applicable_product_ids" json:"applicable_product_ids"`

	IsActive bool `db:"is_active" json:"is_active"`

	types.BaseModel
}

// ToBilling converts the discount into the calculator representation
func (d *Discount) ToBilling() *billing.Discount {
	return &billing.Discount{Type: d.DiscountType, Value: d.Value}
}

// NotYetValid reports whether now is before the start of the validity window
func (d *Discount) NotYetValid(now time.Time) bool {
	return d.StartDate != nil && now.Before(*d.StartDate)
}

// Expired reports whether now is past the end of the validity window
func (d *Discount) Expired(now time.Time) bool {
	return d.EndDate != nil && now.After(*d.EndDate)
}

// AppliesToAny reports whether the product restriction admits at least one of productIDs.
// An empty restriction admits everything.
func (d *Discount) AppliesToAny(productIDs []string) bool {
	if len(d.ApplicableProductIDs) == 0 {
		return true
	}
	return lo.Some(d.ApplicableProductIDs, productIDs)
}

// DiscountUsage is one redemption in the append only usage ledger
type DiscountUsage struct {
	ID         string    `db:"id" json:"id"`
	DiscountID string    `db:"discount_id" json:"discount_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	InvoiceID  *string   `db:"invoice_id" json:"invoice_id,omitempty"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	UsedAt     time.Time `db:"used_at" json:"used_at"`
}
