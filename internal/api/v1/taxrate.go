package v1

import (
	"net/http"

	"github.com/flexprice/subscriptions/internal/api/dto"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/service"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/gin-gonic/gin"
)

type TaxRateHandler struct {
	service service.TaxRateService
	log     *logger.Logger
}

func NewTaxRateHandler(service service.TaxRateService, log *logger.Logger) *TaxRateHandler {
	return &TaxRateHandler{service: service, log: log}
}

// @Summary Create a tax rate
// @Tags Tax Rates
// @Accept json
// @Produce json
// @Param tax_rate body dto.CreateTaxRateRequest true "Tax rate"
// @Success 201 {object} dto.TaxRateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /tax-rates [post]
func (h *TaxRateHandler) CreateTaxRate(c *gin.Context) {
	var req dto.CreateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTaxRate(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a tax rate
// @Tags Tax Rates
// @Produce json
// @Param id path string true "Tax rate ID"
// @Success 200 {object} dto.TaxRateResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax-rates/{id} [get]
func (h *TaxRateHandler) GetTaxRate(c *gin.Context) {
	resp, err := h.service.GetTaxRate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List tax rates
// @Tags Tax Rates
// @Produce json
// @Param filter query types.TaxRateFilter false "Filter"
// @Success 200 {object} dto.ListTaxRatesResponse
// @Router /tax-rates [get]
func (h *TaxRateHandler) ListTaxRates(c *gin.Context) {
	filter := types.NewTaxRateFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListTaxRates(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Activate or deactivate a tax rate
// @Tags Tax Rates
// @Accept json
// @Produce json
// @Param id path string true "Tax rate ID"
// @Param request body dto.SetActiveRequest true "Active flag"
// @Success 200 {object} dto.TaxRateResponse
// @Router /tax-rates/{id}/active [post]
func (h *TaxRateHandler) SetTaxRateActive(c *gin.Context) {
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.SetTaxRateActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
