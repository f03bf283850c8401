// Package engine provides the API-primary quoting engine.
// CLI and HTTP are thin wrappers around it.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shipping-rules/core/method"
	"shipping-rules/core/output"
	"shipping-rules/core/pricing"
	"shipping-rules/core/settings"
	"shipping-rules/core/types"
	"shipping-rules/internal/logging"
)

// SettingsProvider supplies the saved settings of a method instance.
// Unset instances resolve to defaults rather than an error.
type SettingsProvider interface {
	InstanceSettings(ctx context.Context, instanceID string) (settings.Instance, error)
}

// QuoteObserver is notified of every computed quote
type QuoteObserver interface {
	RecordQuote(methodID string, quote types.Quote)
}

// Config configures the engine
type Config struct {
	// Currency every rate is quoted in
	Currency types.Currency

	// DefaultInstance is used when a request names none
	DefaultInstance string

	// DefaultMethod is used when a request names none
	DefaultMethod string
}

// Engine turns a cart package into priced shipping rates
type Engine struct {
	settings SettingsProvider
	registry *method.Registry
	observer QuoteObserver
	config   Config
	now      func() time.Time
}

// New creates an engine. A nil registry uses the default method registry.
func New(provider SettingsProvider, registry *method.Registry, cfg Config) *Engine {
	if registry == nil {
		registry = method.GetDefaultRegistry()
	}
	if cfg.Currency == "" {
		cfg.Currency = types.CurrencyUSD
	}
	if cfg.DefaultInstance == "" {
		cfg.DefaultInstance = "default"
	}
	if cfg.DefaultMethod == "" {
		cfg.DefaultMethod = method.CustomRulesID
	}
	return &Engine{
		settings: provider,
		registry: registry,
		config:   cfg,
		now:      time.Now,
	}
}

// WithObserver attaches a quote observer
func (e *Engine) WithObserver(o QuoteObserver) *Engine {
	e.observer = o
	return e
}

// Registry returns the method registry in use
func (e *Engine) Registry() *method.Registry {
	return e.registry
}

// QuoteRequest is one request for shipping rates
type QuoteRequest struct {
	RequestID  string
	MethodID   string
	InstanceID string
	Package    types.Package
}

// Quote prices a package with the requested method instance
func (e *Engine) Quote(ctx context.Context, req QuoteRequest) (*output.QuoteResult, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if req.InstanceID == "" {
		req.InstanceID = e.config.DefaultInstance
	}
	if req.MethodID == "" {
		req.MethodID = e.config.DefaultMethod
	}

	inst, err := e.settings.InstanceSettings(ctx, req.InstanceID)
	if err != nil {
		return nil, fmt.Errorf("load settings of %s: %w", req.InstanceID, err)
	}

	m, err := e.registry.Instantiate(req.MethodID, req.InstanceID, inst, e.config.Currency)
	if err != nil {
		return nil, err
	}

	rates := m.CalculateShipping(req.Package)
	if e.observer != nil {
		for _, rate := range rates {
			e.observer.RecordQuote(rate.MethodID, rate.Quote)
		}
	}

	logging.Info("quote computed",
		zap.String("request_id", req.RequestID),
		zap.String("method", req.MethodID),
		zap.String("instance", req.InstanceID),
		zap.Int("rates", len(rates)),
	)

	return &output.QuoteResult{
		RequestID:   req.RequestID,
		InstanceID:  req.InstanceID,
		Items:       req.Package.Items,
		TotalWeight: pricing.TotalWeight(req.Package.Contents()),
		Rates:       rates,
		Currency:    e.config.Currency,
		Timestamp:   e.now().UTC().Format(time.RFC3339),
	}, nil
}
