package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 500.0, cfg.Pricing.DiscountThreshold)
	assert.Equal(t, 0.10, cfg.Pricing.DiscountRate)
	assert.Equal(t, 99.0, cfg.Pricing.ShippingFee)
	assert.Equal(t, 5, cfg.Pricing.FreeShippingOrderLimit)
	assert.Equal(t, 3, cfg.Backend.MaxRetries)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.shop.test/api")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("STATE_STORE", "redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test,https://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.shop.test/api", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "cache:6379", cfg.GetRedisAddr())
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Security.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "relative backend url",
			mutate: func(c *Config) { c.Backend.BaseURL = "/api" },
			errMsg: "BACKEND_BASE_URL",
		},
		{
			name:   "unknown state store",
			mutate: func(c *Config) { c.Storage.Driver = "etcd" },
			errMsg: "unsupported STATE_STORE",
		},
		{
			name:   "discount rate above one",
			mutate: func(c *Config) { c.Pricing.DiscountRate = 1.5 },
			errMsg: "PRICING_DISCOUNT_RATE",
		},
		{
			name:   "wildcard cors origin",
			mutate: func(c *Config) { c.Security.CORSAllowedOrigins = []string{"https://a.test", "*"} },
			errMsg: "CORS_ALLOWED_ORIGINS",
		},
		{
			name: "production without google client",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Google.ClientID = ""
			},
			errMsg: "GOOGLE_CLIENT_ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
