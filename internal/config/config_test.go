package config

import (
	"testing"

	"github.com/flexprice/subscriptions/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, types.InvoiceDefaultDueDays, cfg.Billing.DefaultDueDays)
}

func TestValidate_SentryRequiresDSN(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Sentry.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg.Sentry.DSN = "https://public@sentry.example.com/1"
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SUBSCRIPTIONS_SERVER_ADDRESS", ":9090")
	t.Setenv("SUBSCRIPTIONS_BILLING_DEFAULT_DUE_DAYS", "15")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 15, cfg.Billing.DefaultDueDays)
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	c := PostgresConfig{
		Host:     "db",
		Port:     5433,
		User:     "u",
		Password: "p",
		DBName:   "billing",
		SSLMode:  "require",
	}
	assert.Equal(t, "user=u password=p dbname=billing host=db port=5433 sslmode=require", c.GetDSN())
}
