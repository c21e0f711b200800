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

type DiscountHandler struct {
	service service.DiscountService
	log     *logger.Logger
}

func NewDiscountHandler(service service.DiscountService, log *logger.Logger) *DiscountHandler {
	return &DiscountHandler{service: service, log: log}
}

// @Summary Create a discount
// @Tags Discounts
// @Accept json
// @Produce json
// @Param discount body dto.CreateDiscountRequest true "Discount"
// @Success 201 {object} dto.DiscountResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /discounts [post]
func (h *DiscountHandler) CreateDiscount(c *gin.Context) {
	var req dto.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateDiscount(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a discount
// @Tags Discounts
// @Produce json
// @Param id path string true "Discount ID"
// @Success 200 {object} dto.DiscountResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /discounts/{id} [get]
func (h *DiscountHandler) GetDiscount(c *gin.Context) {
	resp, err := h.service.GetDiscount(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List discounts
// @Tags Discounts
// @Produce json
// @Param filter query types.DiscountFilter false "Filter"
// @Success 200 {object} dto.ListDiscountsResponse
// @Router /discounts [get]
func (h *DiscountHandler) ListDiscounts(c *gin.Context) {
	filter := types.NewDiscountFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListDiscounts(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Activate or deactivate a discount
// @Tags Discounts
// @Accept json
// @Produce json
// @Param id path string true "Discount ID"
// @Param request body dto.SetActiveRequest true "Active flag"
// @Success 200 {object} dto.DiscountResponse
// @Router /discounts/{id}/active [post]
func (h *DiscountHandler) SetDiscountActive(c *gin.Context) {
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

	resp, err := h.service.SetDiscountActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Validate a discount code against a cart
// @Description An unusable code is a 200 response with valid=false and a reason code
// @Tags Discounts
// @Accept json
// @Produce json
// @Param request body dto.ValidateDiscountRequest true "Code and cart"
// @Success 200 {object} dto.ValidateDiscountResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /discounts/validate [post]
func (h *DiscountHandler) ValidateDiscountCode(c *gin.Context) {
	var req dto.ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ValidateDiscountCode(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Record a discount usage
// @Tags Discounts
// @Accept json
// @Produce json
// @Param id path string true "Discount ID"
// @Param request body dto.ApplyDiscountRequest true "Usage"
// @Success 201 {object} dto.DiscountUsageResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /discounts/{id}/apply [post]
func (h *DiscountHandler) ApplyDiscountCode(c *gin.Context) {
	var req dto.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ApplyDiscountCode(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
