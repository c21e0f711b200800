package service

import (
	"github.com/flexprice/subscriptions/internal/cache"
	"github.com/flexprice/subscriptions/internal/config"
	"github.com/flexprice/subscriptions/internal/domain/billing"
	"github.com/flexprice/subscriptions/internal/domain/discount"
	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/domain/payment"
	"github.com/flexprice/subscriptions/internal/domain/plan"
	"github.com/flexprice/subscriptions/internal/domain/subscription"
	"github.com/flexprice/subscriptions/internal/domain/taxrate"
	"github.com/flexprice/subscriptions/internal/idempotency"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/metrics"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	DB      postgres.IClient
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Sentry  *sentry.Service

	Calculator  billing.Calculator
	Idempotency *idempotency.Generator

	// Repositories
	PlanRepo     plan.Repository
	TaxRateRepo  taxrate.Repository
	DiscountRepo discount.Repository
	SubRepo      subscription.Repository
	InvoiceRepo  invoice.Repository
	PaymentRepo  payment.Repository
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	metrics *metrics.Metrics,
	sentry *sentry.Service,
	planRepo plan.Repository,
	taxRateRepo taxrate.Repository,
	discountRepo discount.Repository,
	subRepo subscription.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:       logger,
		Config:       config,
		DB:           db,
		Cache:        cache,
		Metrics:      metrics,
		Sentry:       sentry,
		Calculator:   billing.NewCalculator(),
		Idempotency:  idempotency.NewGenerator(),
		PlanRepo:     planRepo,
		TaxRateRepo:  taxRateRepo,
		DiscountRepo: discountRepo,
		SubRepo:      subRepo,
		InvoiceRepo:  invoiceRepo,
		PaymentRepo:  paymentRepo,
	}
}
