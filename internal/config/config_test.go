package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	env := map[string]string{
		"COMMERCE_PRIMARY__ENV":                 "local",
		"COMMERCE_SERVER__PORT":                 "8080",
		"COMMERCE_SERVER__READ_TIMEOUT":         "30",
		"COMMERCE_SERVER__WRITE_TIMEOUT":        "30",
		"COMMERCE_SERVER__IDLE_TIMEOUT":         "60",
		"COMMERCE_SERVER__CORS_ALLOWED_ORIGINS": "http://localhost:3000,https://admin.example.com",
		"COMMERCE_DATABASE__HOST":               "localhost",
		"COMMERCE_DATABASE__PORT":               "5432",
		"COMMERCE_DATABASE__USER":               "commerce",
		"COMMERCE_DATABASE__PASSWORD":           "p@ss:word",
		"COMMERCE_DATABASE__NAME":               "commerce",
		"COMMERCE_DATABASE__SSL_MODE":           "disable",
		"COMMERCE_DATABASE__MAX_OPEN_CONNS":     "25",
		"COMMERCE_DATABASE__MAX_IDLE_CONNS":     "25",
		"COMMERCE_DATABASE__CONN_MAX_LIFETIME":  "300",
		"COMMERCE_DATABASE__CONN_MAX_IDLE_TIME": "300",
		"COMMERCE_REDIS__ADDRESS":               "localhost:6379",
		"COMMERCE_AUTH__SECRET_KEY":             "sk_test_123",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Primary.Env)
	assert.Equal(t, []string{"http://localhost:3000", "https://admin.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "commerce", cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
	assert.Equal(t, "X-Admin-Session", cfg.Session.Header)
	assert.Equal(t, 10*time.Minute, cfg.Session.FlashTTL)
	assert.Equal(t, 24*time.Hour, cfg.Session.QuoteTTL)
	assert.Equal(t, 10, cfg.Jobs.Concurrency)
	assert.True(t, cfg.Observability.HasCheck("redis"))
}

func TestLoad_PartialSessionKeepsDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COMMERCE_SESSION__HEADER", "X-Custom-Session")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "X-Custom-Session", cfg.Session.Header)
	assert.Equal(t, 10*time.Minute, cfg.Session.FlashTTL)
	assert.Equal(t, 24*time.Hour, cfg.Session.QuoteTTL)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COMMERCE_DATABASE__HOST", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss:word", Name: "shop", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p%40ss%3Aword@db:5432/shop?sslmode=disable", d.DSN())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	c := DefaultObservabilityConfig()
	require.NoError(t, c.Validate())

	c.Logging.Level = "verbose"
	assert.Error(t, c.Validate())
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	c := DefaultObservabilityConfig()
	c.Logging.Level = ""

	c.Environment = "development"
	assert.Equal(t, "debug", c.GetLogLevel())

	c.Environment = "production"
	assert.Equal(t, "info", c.GetLogLevel())
	assert.True(t, c.IsProduction())
}
