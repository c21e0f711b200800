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

type SubscriptionHandler struct {
	service        service.SubscriptionService
	invoiceService service.InvoiceService
	log            *logger.Logger
}

func NewSubscriptionHandler(
	service service.SubscriptionService,
	invoiceService service.InvoiceService,
	log *logger.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:        service,
		invoiceService: invoiceService,
		log:            log,
	}
}

// @Summary Create a subscription
// @Description Create a draft subscription with its lines
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param subscription body dto.CreateSubscriptionRequest true "Subscription"
// @Success 201 {object} dto.SubscriptionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSubscription(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a subscription with its lines
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	resp, err := h.service.GetSubscription(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List subscriptions
// @Tags Subscriptions
// @Produce json
// @Param filter query types.SubscriptionFilter false "Filter"
// @Success 200 {object} dto.ListSubscriptionsResponse
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	filter := types.NewSubscriptionFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListSubscriptions(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Add a line to a draft or quoted subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param line body dto.CreateSubscriptionLineRequest true "Line"
// @Success 201 {object} dto.SubscriptionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/lines [post]
func (h *SubscriptionHandler) AddSubscriptionLine(c *gin.Context) {
	var req dto.CreateSubscriptionLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.AddSubscriptionLine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Send a quotation
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param request body dto.QuoteSubscriptionRequest false "Quotation"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/quote [post]
func (h *SubscriptionHandler) QuoteSubscription(c *gin.Context) {
	var req dto.QuoteSubscriptionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.QuoteSubscription(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Confirm a quoted subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param request body dto.ConfirmSubscriptionRequest false "Confirmation"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/confirm [post]
func (h *SubscriptionHandler) ConfirmSubscription(c *gin.Context) {
	var req dto.ConfirmSubscriptionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.ConfirmSubscription(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Activate a confirmed subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/activate [post]
func (h *SubscriptionHandler) ActivateSubscription(c *gin.Context) {
	resp, err := h.service.ActivateSubscription(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Close an active subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param request body dto.CloseSubscriptionRequest false "Close"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/close [post]
func (h *SubscriptionHandler) CloseSubscription(c *gin.Context) {
	var req dto.CloseSubscriptionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.CloseSubscription(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Generate the invoice for a billing period
// @Description Idempotent per subscription and period start, a retry returns the existing invoice
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param request body dto.GenerateInvoiceRequest true "Period"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/invoices [post]
func (h *SubscriptionHandler) GenerateInvoice(c *gin.Context) {
	var req dto.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.GenerateInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
