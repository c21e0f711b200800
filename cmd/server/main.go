package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/subscriptions/internal/api"
	v1 "github.com/flexprice/subscriptions/internal/api/v1"
	"github.com/flexprice/subscriptions/internal/cache"
	"github.com/flexprice/subscriptions/internal/config"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/metrics"
	"github.com/flexprice/subscriptions/internal/postgres"
	"github.com/flexprice/subscriptions/internal/repository"
	"github.com/flexprice/subscriptions/internal/sentry"
	"github.com/flexprice/subscriptions/internal/service"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/flexprice/subscriptions/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Metrics
			provideMetrics,

			// Cache
			cache.ProvideCache,

			// Repositories
			repository.NewPlanRepository,
			repository.NewTaxRateRepository,
			repository.NewDiscountRepository,
			repository.NewSubscriptionRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
		),
		sentry.Module(),
		postgres.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewPlanService,
			service.NewTaxRateService,
			service.NewDiscountService,
			service.NewSubscriptionService,
			service.NewInvoiceService,
			service.NewPaymentService,
			service.NewReportService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

// provideMetrics returns nil when metrics are disabled, a nil *Metrics records nothing
func provideMetrics(cfg *config.Configuration) *metrics.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewMetrics(metrics.NewRegistry())
}

func provideHandlers(
	logger *logger.Logger,
	planService service.PlanService,
	taxRateService service.TaxRateService,
	discountService service.DiscountService,
	subscriptionService service.SubscriptionService,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	reportService service.ReportService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(logger),
		Plan:         v1.NewPlanHandler(planService, logger),
		TaxRate:      v1.NewTaxRateHandler(taxRateService, logger),
		Discount:     v1.NewDiscountHandler(discountService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, invoiceService, logger),
		Invoice:      v1.NewInvoiceHandler(invoiceService, paymentService, logger),
		Payment:      v1.NewPaymentHandler(paymentService, logger),
		Report:       v1.NewReportHandler(reportService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, m *metrics.Metrics) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, m)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
