package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SubscriptionTransition("close", nil)
	m.SubscriptionTransition("close", errors.New("illegal"))
	m.InvoiceGenerated("created")
	m.InvoiceGenerated("existing")
	m.InvoiceGenerated("existing")
	m.CacheLookup("plan", true)
	m.CacheLookup("plan", false)
	m.ObserveDBQuery(time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubscriptionTransitionsTotal.WithLabelValues("close", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubscriptionTransitionsTotal.WithLabelValues("close", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InvoicesGeneratedTotal.WithLabelValues("existing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("plan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("plan")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SubscriptionTransition("quote", nil)
		m.PaymentRecorded("CASH")
		m.ObserveDBQuery(time.Second, nil)
	})
}

func TestMetrics_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/v1/plans/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/plans/plan_1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/plans/:id", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "subscriptions_http_requests_total"))
}
