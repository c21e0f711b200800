package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "subscriptions"

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business metrics
	SubscriptionTransitionsTotal *prometheus.CounterVec
	InvoicesGeneratedTotal       *prometheus.CounterVec
	InvoiceTransitionsTotal      *prometheus.CounterVec
	PaymentsRecordedTotal        *prometheus.CounterVec
	DiscountValidationsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of lookup cache hits",
			},
			[]string{"entity"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of lookup cache misses",
			},
			[]string{"entity"},
		),
		SubscriptionTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscription_transitions_total",
				Help:      "Subscription state machine actions by outcome",
			},
			[]string{"action", "result"},
		),
		InvoicesGeneratedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invoices_generated_total",
				Help:      "Invoice generation calls by outcome (created, existing, recovered)",
			},
			[]string{"result"},
		),
		InvoiceTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invoice_transitions_total",
				Help:      "Invoice status actions by outcome",
			},
			[]string{"action", "result"},
		),
		PaymentsRecordedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_recorded_total",
				Help:      "Payments recorded by method",
			},
			[]string{"method"},
		),
		DiscountValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "discount_validations_total",
				Help:      "Discount code validations by result code",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SubscriptionTransitionsTotal,
		m.InvoicesGeneratedTotal,
		m.InvoiceTransitionsTotal,
		m.PaymentsRecordedTotal,
		m.DiscountValidationsTotal,
	)

	return m
}

// NewRegistry returns a registry preloaded with the go and process collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency. The route template is used
// as the path label to keep cardinality bounded.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveDBQuery(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(resultLabel(err)).Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(entity string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(entity).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(entity).Inc()
}

func (m *Metrics) SubscriptionTransition(action string, err error) {
	if m == nil {
		return
	}
	m.SubscriptionTransitionsTotal.WithLabelValues(action, resultLabel(err)).Inc()
}

func (m *Metrics) InvoiceTransition(action string, err error) {
	if m == nil {
		return
	}
	m.InvoiceTransitionsTotal.WithLabelValues(action, resultLabel(err)).Inc()
}

// InvoiceGenerated counts generation calls, result is created, existing or recovered
func (m *Metrics) InvoiceGenerated(result string) {
	if m == nil {
		return
	}
	m.InvoicesGeneratedTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) PaymentRecorded(method string) {
	if m == nil {
		return
	}
	m.PaymentsRecordedTotal.WithLabelValues(method).Inc()
}

func (m *Metrics) DiscountValidated(result string) {
	if m == nil {
		return
	}
	m.DiscountValidationsTotal.WithLabelValues(result).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
