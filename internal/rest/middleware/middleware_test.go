package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorHandler(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(logger.NewNoopLogger()))
	router.GET("/conflict", func(c *gin.Context) {
		c.Error(ierr.NewError("cannot pay invoice inv_1 in status DRAFT").
			WithHint("Invoice in status DRAFT does not allow pay").
			WithReportableDetails(map[string]any{
				"invoice_id":     "inv_1",
				"current_status": "DRAFT",
			}).
			Mark(ierr.ErrIllegalTransition))
	})
	router.GET("/internal", func(c *gin.Context) {
		c.Error(ierr.NewError("connection refused").Mark(ierr.ErrDatabase))
	})

	t.Run("marked error keeps hint and details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conflict", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "Invoice in status DRAFT does not allow pay", body.Error.Display)
		assert.Equal(t, "inv_1", body.Error.Details["invoice_id"])
		assert.Equal(t, "DRAFT", body.Error.Details["current_status"])
	})

	t.Run("error without hint gets a generic message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware)
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, types.GetRequestID(c.Request.Context()))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(types.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(types.HeaderRequestID, "req-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Body.String())
}

func TestTenantContextMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(TenantContextMiddleware)
	router.GET("/", func(c *gin.Context) {
		ctx := c.Request.Context()
		c.String(http.StatusOK, types.GetTenantID(ctx)+"/"+types.GetUserID(ctx))
	})

	tests := []struct {
		name   string
		tenant string
		user   string
		want   string
	}{
		{name: "headers set", tenant: "tenant_a", user: "user_a", want: "tenant_a/user_a"},
		{name: "headers missing", want: types.DefaultTenantID + "/" + types.DefaultUserID},
		{name: "blank tenant", tenant: "  ", user: "user_a", want: types.DefaultTenantID + "/user_a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.tenant != "" {
				req.Header.Set(types.HeaderTenantID, tt.tenant)
			}
			if tt.user != "" {
				req.Header.Set(types.HeaderUserID, tt.user)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}
