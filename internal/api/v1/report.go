package v1

import (
	"net/http"

	"github.com/flexprice/subscriptions/internal/api/dto"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service service.ReportService
	log     *logger.Logger
}

func NewReportHandler(service service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{service: service, log: log}
}

// @Summary Billing summary
// @Description Computed live on every call. Invoices are windowed by issue date, payments by payment date.
// @Tags Reports
// @Produce json
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {object} dto.ReportSummaryResponse
// @Router /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	var req dto.ReportSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid report window").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetSummary(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Overdue invoices
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.ListOverdueInvoicesResponse
// @Router /reports/overdue-invoices [get]
func (h *ReportHandler) ListOverdueInvoices(c *gin.Context) {
	resp, err := h.service.ListOverdueInvoices(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
