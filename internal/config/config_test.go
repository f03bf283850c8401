package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipping-rules/core/types"
	"shipping-rules/internal/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server.Address, cfg.Server.Address)
	assert.Equal(t, types.CurrencyUSD, cfg.Pricing.Currency)
	assert.Equal(t, "default", cfg.Pricing.DefaultInstance)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Webhook.Endpoint)
	assert.Equal(t, 3, cfg.Webhook.RetryCount)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":9090"
  read_timeout: 5s
pricing:
  currency: EUR
store:
  backend: memory
webhook:
  endpoint: https://hooks.example.com/shipping
  format: slack
  retry_delay: 250ms
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, types.CurrencyEUR, cfg.Pricing.Currency)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "https://hooks.example.com/shipping", cfg.Webhook.Endpoint)
	assert.Equal(t, "slack", cfg.Webhook.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Webhook.RetryDelay)
	// untouched keys keep their defaults
	assert.Equal(t, "cli", cfg.Output.DefaultFormat)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SHIPPING_RULES_SERVER_ADDRESS", ":7070")
	t.Setenv("SHIPPING_RULES_PRICING_CURRENCY", "GBP")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, types.CurrencyGBP, cfg.Pricing.Currency)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown currency", "pricing:\n  currency: XYZ\n"},
		{"unknown backend", "store:\n  backend: redis\n"},
		{"malformed yaml", "server: [\n"},
		{"unknown webhook format", "webhook:\n  format: teams\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig))
		})
	}
}

func TestGlobalConfig(t *testing.T) {
	prev := Get()
	defer Set(prev)

	cfg := Default()
	cfg.Pricing.DefaultInstance = "zone-eu"
	Set(cfg)
	assert.Equal(t, "zone-eu", Get().Pricing.DefaultInstance)
}
