package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flexprice/subscriptions/internal/api/dto"
	v1 "github.com/flexprice/subscriptions/internal/api/v1"
	"github.com/flexprice/subscriptions/internal/rest/middleware"
	"github.com/flexprice/subscriptions/internal/service"
	"github.com/flexprice/subscriptions/internal/testutil"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := service.NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		s.GetCache(),
		s.GetMetrics(),
		s.GetSentry(),
		stores.PlanRepo,
		stores.TaxRateRepo,
		stores.DiscountRepo,
		stores.SubscriptionRepo,
		stores.InvoiceRepo,
		stores.PaymentRepo,
	)

	log := s.GetLogger()
	invoiceService := service.NewInvoiceService(params)
	paymentService := service.NewPaymentService(params)

	s.router = NewRouter(Handlers{
		Health:       v1.NewHealthHandler(log),
		Plan:         v1.NewPlanHandler(service.NewPlanService(params), log),
		TaxRate:      v1.NewTaxRateHandler(service.NewTaxRateService(params), log),
		Discount:     v1.NewDiscountHandler(service.NewDiscountService(params), log),
		Subscription: v1.NewSubscriptionHandler(service.NewSubscriptionService(params), invoiceService, log),
		Invoice:      v1.NewInvoiceHandler(invoiceService, paymentService, log),
		Payment:      v1.NewPaymentHandler(paymentService, log),
		Report:       v1.NewReportHandler(service.NewReportService(params), log),
	}, s.GetConfig(), log, s.GetMetrics())
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		s.Require().NoError(json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/health", nil)

	w := s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "subscriptions_http_requests_total")
}

func (s *RouterSuite) TestErrorMapping() {
	s.Run("not found", func() {
		w := s.do(http.MethodGet, "/v1/plans/plan_missing", nil)
		s.Equal(http.StatusNotFound, w.Code)

		var resp middleware.ErrorResponse
		s.decode(w, &resp)
		s.False(resp.Success)
		s.NotEmpty(resp.Error.Display)
	})

	s.Run("malformed body", func() {
		w := s.do(http.MethodPost, "/v1/plans", "{")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("validation", func() {
		w := s.do(http.MethodPost, "/v1/plans", map[string]any{
			"name":           "Broken",
			"billing_period": "MONTHLY",
			"interval_count": 0,
		})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("invalid report window", func() {
		w := s.do(http.MethodGet, "/v1/reports/summary?from=2024-02-01T00:00:00Z&to=2024-01-01T00:00:00Z", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *RouterSuite) TestBillingFlow() {
	w := s.do(http.MethodPost, "/v1/plans", map[string]any{
		"name":           "Monthly",
		"billing_period": "MONTHLY",
		"interval_count": 1,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var plan dto.PlanResponse
	s.decode(w, &plan)

	w = s.do(http.MethodPost, "/v1/tax-rates", map[string]any{
		"name":       "GST",
		"percentage": "18",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var tax dto.TaxRateResponse
	s.decode(w, &tax)

	w = s.do(http.MethodPost, "/v1/subscriptions", map[string]any{
		"customer_id": "cust_1",
		"plan_id":     plan.ID,
		"lines": []map[string]any{{
			"variant_id":  "var_1",
			"quantity":    2,
			"unit_price":  "999",
			"tax_rate_id": tax.ID,
		}},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var sub dto.SubscriptionResponse
	s.decode(w, &sub)
	s.Equal(types.SubscriptionStatusDraft, sub.SubscriptionStatus)

	// draft cannot be activated directly
	w = s.do(http.MethodPost, "/v1/subscriptions/"+sub.ID+"/activate", nil)
	s.Equal(http.StatusConflict, w.Code)

	for _, action := range []string{"quote", "confirm", "activate"} {
		w = s.do(http.MethodPost, "/v1/subscriptions/"+sub.ID+"/"+action, nil)
		s.Require().Equal(http.StatusOK, w.Code, action+": "+w.Body.String())
	}
	s.decode(w, &sub)
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)

	period := map[string]any{"period_start": "2024-01-01T00:00:00Z"}
	w = s.do(http.MethodPost, "/v1/subscriptions/"+sub.ID+"/invoices", period)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var inv dto.InvoiceResponse
	s.decode(w, &inv)
	s.True(decimal.RequireFromString("2357.64").Equal(inv.Total), inv.Total.String())
	s.Equal(types.InvoiceStatusDraft, inv.InvoiceStatus)

	w = s.do(http.MethodPost, "/v1/subscriptions/"+sub.ID+"/invoices", period)
	s.Require().Equal(http.StatusOK, w.Code)
	var again dto.InvoiceResponse
	s.decode(w, &again)
	s.Equal(inv.ID, again.ID)

	w = s.do(http.MethodPost, "/v1/invoices/"+inv.ID+"/confirm", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/v1/invoices/"+inv.ID+"/payments", map[string]any{
		"amount":         "2357.64",
		"payment_method": "CASH",
		"reference":      "rcpt-1",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var paid dto.RecordPaymentResponse
	s.decode(w, &paid)
	s.Equal(types.InvoiceStatusPaid, paid.Invoice.InvoiceStatus)
	s.True(paid.Invoice.AmountRemaining.IsZero())

	// paid invoices accept no further payments
	w = s.do(http.MethodPost, "/v1/invoices/"+inv.ID+"/payments", map[string]any{
		"amount":         "1",
		"payment_method": "CASH",
	})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/v1/payments?invoice_id="+inv.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var payments dto.ListPaymentsResponse
	s.decode(w, &payments)
	s.Len(payments.Items, 1)

	w = s.do(http.MethodGet, "/v1/reports/summary", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var summary dto.ReportSummaryResponse
	s.decode(w, &summary)
	s.True(decimal.RequireFromString("2357.64").Equal(summary.TotalPaid))
	s.True(summary.Outstanding.IsZero())
	s.Equal(1, summary.SubscriptionsByStatus[types.SubscriptionStatusActive])

	w = s.do(http.MethodGet, "/v1/reports/overdue-invoices", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var overdue dto.ListOverdueInvoicesResponse
	s.decode(w, &overdue)
	s.Empty(overdue.Items)
}

func (s *RouterSuite) TestListSubscriptionsByStatus() {
	w := s.do(http.MethodPost, "/v1/plans", map[string]any{
		"name":           "Weekly",
		"billing_period": "WEEKLY",
		"interval_count": 2,
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var plan dto.PlanResponse
	s.decode(w, &plan)

	for i := 0; i < 3; i++ {
		w = s.do(http.MethodPost, "/v1/subscriptions", map[string]any{
			"customer_id": "cust_list",
			"plan_id":     plan.ID,
		})
		s.Require().Equal(http.StatusCreated, w.Code)
	}

	w = s.do(http.MethodGet, "/v1/subscriptions?subscription_status=DRAFT&limit=2", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var list dto.ListSubscriptionsResponse
	s.decode(w, &list)
	s.Len(list.Items, 2)
	s.Equal(3, list.Pagination.Total)
	s.True(strings.HasPrefix(list.Items[0].ID, types.UUID_PREFIX_SUBSCRIPTION))
}
