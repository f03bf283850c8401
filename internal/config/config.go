// Package config provides configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"shipping-rules/core/types"
	"shipping-rules/internal/errors"
	"shipping-rules/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. SHIPPING_RULES_SERVER_ADDRESS
const EnvPrefix = "SHIPPING_RULES"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `mapstructure:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `mapstructure:"pricing"`

	// Store contains settings storage configuration
	Store StoreConfig `mapstructure:"store"`

	// Output contains output configuration
	Output OutputConfig `mapstructure:"output"`

	// Metrics contains metrics configuration
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Webhook contains settings change notification configuration
	Webhook WebhookConfig `mapstructure:"webhook"`

	// Logging contains logging configuration
	Logging logging.Config `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Currency is the currency every rate is quoted in
	Currency types.Currency `mapstructure:"currency"`

	// DefaultInstance is used when a request names no method instance
	DefaultInstance string `mapstructure:"default_instance"`
}

// StoreConfig selects where method instance settings live
type StoreConfig struct {
	// Backend is "file" or "memory"
	Backend string `mapstructure:"backend"`

	// Directory holds one JSON document per instance (file backend)
	Directory string `mapstructure:"directory"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `mapstructure:"default_format"`
}

// MetricsConfig contains prometheus settings
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// WebhookConfig configures notifications sent when instance settings change.
// Notifications are disabled while Endpoint is empty.
type WebhookConfig struct {
	Endpoint   string            `mapstructure:"endpoint"`
	Format     string            `mapstructure:"format"`
	Secret     string            `mapstructure:"secret"`
	Headers    map[string]string `mapstructure:"headers"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	RetryCount int               `mapstructure:"retry_count"`
	RetryDelay time.Duration     `mapstructure:"retry_delay"`

	// BreakerFailures consecutive failed deliveries open the circuit
	BreakerFailures uint32 `mapstructure:"breaker_failures"`

	// BreakerCooldown is how long an open circuit rejects deliveries
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	storeDir := filepath.Join(homeDir, ".shipping-rules", "instances")

	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Address:      ":8080",
			Mode:         "release",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Pricing: PricingConfig{
			Currency:        types.CurrencyUSD,
			DefaultInstance: "default",
		},
		Store: StoreConfig{
			Backend:   "file",
			Directory: storeDir,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "shipping_rules",
		},
		Webhook: WebhookConfig{
			Format:     "json",
			Timeout:    10 * time.Second,
			RetryCount: 3,
			RetryDelay: time.Second,

			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file (yaml, json or toml) and the environment.
// A missing file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Config("read config", err)
			}
		case !os.IsNotExist(err):
			return nil, errors.Config("stat config", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Config("unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that the rest of the program relies on
func (c *Config) Validate() error {
	if !c.Pricing.Currency.IsValid() {
		return errors.Config(fmt.Sprintf("unsupported currency %q", c.Pricing.Currency), nil)
	}
	switch c.Store.Backend {
	case "file":
		if c.Store.Directory == "" {
			return errors.Config("store.directory is required for the file backend", nil)
		}
	case "memory":
	default:
		return errors.Config(fmt.Sprintf("unknown store backend %q", c.Store.Backend), nil)
	}
	if c.Pricing.DefaultInstance == "" {
		return errors.Config("pricing.default_instance must not be empty", nil)
	}
	switch c.Webhook.Format {
	case "json", "slack":
	default:
		return errors.Config(fmt.Sprintf("unknown webhook format %q", c.Webhook.Format), nil)
	}
	if c.Webhook.RetryCount < 0 {
		return errors.Config("webhook.retry_count must not be negative", nil)
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)

	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("pricing.currency", string(d.Pricing.Currency))
	v.SetDefault("pricing.default_instance", d.Pricing.DefaultInstance)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.directory", d.Store.Directory)

	v.SetDefault("output.default_format", d.Output.DefaultFormat)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetDefault("webhook.endpoint", d.Webhook.Endpoint)
	v.SetDefault("webhook.format", d.Webhook.Format)
	v.SetDefault("webhook.secret", d.Webhook.Secret)
	v.SetDefault("webhook.timeout", d.Webhook.Timeout)
	v.SetDefault("webhook.retry_count", d.Webhook.RetryCount)
	v.SetDefault("webhook.retry_delay", d.Webhook.RetryDelay)
	v.SetDefault("webhook.breaker_failures", d.Webhook.BreakerFailures)
	v.SetDefault("webhook.breaker_cooldown", d.Webhook.BreakerCooldown)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.development", d.Logging.Development)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
