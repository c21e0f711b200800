package types

// TaxRateFilter represents filters for tax rate queries
type TaxRateFilter struct {
	*QueryFilter

	TaxRateIDs []string `json:"tax_rate_ids,omitempty" form:"tax_rate_ids"`
	IsActive   *bool    `json:"is_active,omitempty" form:"is_active"`
}

func NewTaxRateFilter() *TaxRateFilter {
	return &TaxRateFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *TaxRateFilter) Validate() error {
	if f == nil || f.QueryFilter == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}
