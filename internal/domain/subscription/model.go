package subscription

import (
	"time"

	"github.com/flexprice/subscriptions/internal/types"
	"github.com/shopspring/decimal"
)

// Subscription is a customer's recurring purchase of a plan
type Subscription struct {
	ID            string  `db:"id" json:"id"`
	CustomerID    string  `db:"customer_id" json:"customer_id"`
	PlanID        string  `db:"plan_id" json:"plan_id"`
	SalespersonID *string `db:"salesperson_id" json:"salesperson_id,omitempty"`

	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	// Set by quote
	QuotationTemplateID *string    `db:"quotation_template_id" json:"quotation_template_id,omitempty"`
	ExpirationDate      *time.Time `db:"expiration_date" json:"expiration_date,omitempty"`

	StartDate       *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	NextBillingDate *time.Time `db:"next_billing_date" json:"next_billing_date,omitempty"`

	// Lines are loaded explicitly, see Repository.GetWithLines
	Lines []*SubscriptionLine `db:"-" json:"lines,omitempty"`

	types.BaseModel
}

// SubscriptionLine is a priced item of a subscription. UnitPrice is a snapshot
// taken when the line was added and is never re-read from the catalog.
type SubscriptionLine struct {
	ID             string          `db:"id" json:"id"`
	SubscriptionID string          `db:"subscription_id" json:"subscription_id"`
	VariantID      string          `db:"variant_id" json:"variant_id"`
	ProductID      *string         `db:"product_id" json:"product_id,omitempty"`
	Quantity       int64           `db:"quantity" json:"quantity"`
	UnitPrice      decimal.Decimal `db:"unit_price" json:"unit_price"`
	DiscountID     *string         `db:"discount_id" json:"discount_id,omitempty"`
	TaxRateID      *string         `db:"tax_rate_id" json:"tax_rate_id,omitempty"`

	// Position keeps lines in insertion order
	Position int `db:"position" json:"position"`

	types.BaseModel
}

// HasLines reports whether any lines are loaded on the subscription
func (s *Subscription) HasLines() bool {
	return len(s.Lines) > 0
}
