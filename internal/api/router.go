package api

import (
	v1 "github.com/flexprice/subscriptions/internal/api/v1"
	"github.com/flexprice/subscriptions/internal/config"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/metrics"
	"github.com/flexprice/subscriptions/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Plan         *v1.PlanHandler
	TaxRate      *v1.TaxRateHandler
	Discount     *v1.DiscountHandler
	Subscription *v1.SubscriptionHandler
	Invoice      *v1.InvoiceHandler
	Payment      *v1.PaymentHandler
	Report       *v1.ReportHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, m *metrics.Metrics) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.TenantContextMiddleware,
		middleware.SentryScopeMiddleware,
		m.GinMiddleware(),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	plans := router.Group("/plans")
	{
		plans.POST("", handlers.Plan.CreatePlan)
		plans.GET("", handlers.Plan.GetPlans)
		plans.GET("/:id", handlers.Plan.GetPlan)
	}

	taxRates := router.Group("/tax-rates")
	{
		taxRates.POST("", handlers.TaxRate.CreateTaxRate)
		taxRates.GET("", handlers.TaxRate.ListTaxRates)
		taxRates.GET("/:id", handlers.TaxRate.GetTaxRate)
		taxRates.POST("/:id/active", handlers.TaxRate.SetTaxRateActive)
	}

	discounts := router.Group("/discounts")
	{
		discounts.POST("", handlers.Discount.CreateDiscount)
		discounts.GET("", handlers.Discount.ListDiscounts)
		discounts.POST("/validate", handlers.Discount.ValidateDiscountCode)
		discounts.GET("/:id", handlers.Discount.GetDiscount)
		discounts.POST("/:id/active", handlers.Discount.SetDiscountActive)
		discounts.POST("/:id/apply", handlers.Discount.ApplyDiscountCode)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("", handlers.Subscription.ListSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("/:id/lines", handlers.Subscription.AddSubscriptionLine)
		subscriptions.POST("/:id/quote", handlers.Subscription.QuoteSubscription)
		subscriptions.POST("/:id/confirm", handlers.Subscription.ConfirmSubscription)
		subscriptions.POST("/:id/activate", handlers.Subscription.ActivateSubscription)
		subscriptions.POST("/:id/close", handlers.Subscription.CloseSubscription)
		subscriptions.POST("/:id/invoices", handlers.Subscription.GenerateInvoice)
	}

	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/confirm", handlers.Invoice.ConfirmInvoice)
		invoices.POST("/:id/cancel", handlers.Invoice.CancelInvoice)
		invoices.POST("/:id/payments", handlers.Invoice.RecordPayment)
	}

	payments := router.Group("/payments")
	{
		payments.GET("", handlers.Payment.ListPayments)
		payments.GET("/:id", handlers.Payment.GetPayment)
	}

	reports := router.Group("/reports")
	{
		reports.GET("/summary", handlers.Report.GetSummary)
		reports.GET("/overdue-invoices", handlers.Report.ListOverdueInvoices)
	}
}
