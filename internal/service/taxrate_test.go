package service

import (
	"testing"

	"github.com/flexprice/subscriptions/internal/api/dto"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type TaxRateServiceSuite struct {
	testFixtures
	service TaxRateService
}

func TestTaxRateService(t *testing.T) {
	suite.Run(t, new(TaxRateServiceSuite))
}

func (s *TaxRateServiceSuite) SetupTest() {
	s.testFixtures.SetupTest()
	s.service = NewTaxRateService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *TaxRateServiceSuite) TestCreateTaxRate() {
	tests := []struct {
		name       string
		percentage string
		isActive   *bool
		wantActive bool
		wantErr    bool
	}{
		{name: "defaults to active", percentage: "18", wantActive: true},
		{name: "created inactive", percentage: "5", isActive: lo.ToPtr(false), wantActive: false},
		{name: "zero rate", percentage: "0", wantActive: true},
		{name: "full rate", percentage: "100", wantActive: true},
		{name: "negative rate", percentage: "-1", wantErr: true},
		{name: "rate above hundred", percentage: "100.01", wantErr: true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreateTaxRate(s.GetContext(), dto.CreateTaxRateRequest{
				Name:       "GST",
				Percentage: dec(tt.percentage),
				IsActive:   tt.isActive,
			})
			if tt.wantErr {
				s.Error(err)
				s.True(ierr.IsValidation(err))
				return
			}
			s.NoError(err)
			s.Equal(tt.wantActive, resp.IsActive)
			s.True(dec(tt.percentage).Equal(resp.Percentage))
		})
	}
}

func (s *TaxRateServiceSuite) TestSetTaxRateActive_InvalidatesCache() {
	t := s.taxRate("18", true)

	// warm the cache
	resp, err := s.service.GetTaxRate(s.GetContext(), t.ID)
	s.NoError(err)
	s.True(resp.IsActive)

	_, err = s.service.SetTaxRateActive(s.GetContext(), t.ID, false)
	s.NoError(err)

	resp, err = s.service.GetTaxRate(s.GetContext(), t.ID)
	s.NoError(err)
	s.False(resp.IsActive)
}

func (s *TaxRateServiceSuite) TestListTaxRates_FilterActive() {
	s.taxRate("18", true)
	s.taxRate("12", true)
	s.taxRate("5", false)

	filter := types.NewTaxRateFilter()
	filter.IsActive = lo.ToPtr(true)

	resp, err := s.service.ListTaxRates(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)
}
