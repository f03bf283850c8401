// Package method provides shipping methods and the registry they are looked up in.
package method

import (
	"go.uber.org/zap"

	"shipping-rules/core/pricing"
	"shipping-rules/core/settings"
	"shipping-rules/core/types"
	"shipping-rules/internal/logging"
)

// Feature flags a method can declare
const (
	SupportsShippingZones         = "shipping-zones"
	SupportsInstanceSettings      = "instance-settings"
	SupportsInstanceSettingsModal = "instance-settings-modal"
)

// Method is one configured shipping method instance
type Method interface {
	// ID returns the method identifier
	ID() string

	// InstanceID returns the configured instance
	InstanceID() string

	// Title returns the label buyers see
	Title() string

	// CalculateShipping prices a package
	CalculateShipping(pkg types.Package) []types.Rate
}

// CustomRulesID identifies the flat weight + per kilo method
const CustomRulesID = "custom_rules_shipping"

// CustomRules charges a fixed price up to a flat weight, then a price per extra kilo
type CustomRules struct {
	instanceID string
	settings   settings.Instance
	currency   types.Currency
}

// NewCustomRules creates a custom rules method for one instance
func NewCustomRules(instanceID string, inst settings.Instance, currency types.Currency) *CustomRules {
	if currency == "" {
		currency = types.CurrencyUSD
	}
	return &CustomRules{
		instanceID: instanceID,
		settings:   inst,
		currency:   currency,
	}
}

// ID implements Method
func (m *CustomRules) ID() string { return CustomRulesID }

// InstanceID implements Method
func (m *CustomRules) InstanceID() string { return m.instanceID }

// Title implements Method
func (m *CustomRules) Title() string { return m.settings.Title() }

// PricingConfig returns the pricing snapshot for this instance
func (m *CustomRules) PricingConfig() types.PricingConfig {
	return m.settings.PricingConfig()
}

// CalculateShipping returns exactly one rate for the package
func (m *CustomRules) CalculateShipping(pkg types.Package) []types.Rate {
	cfg := m.PricingConfig()
	quote := pricing.ComputeQuote(pkg.Contents(), cfg)

	logging.Debug("custom rules quote",
		zap.String("instance", m.instanceID),
		zap.Int("items", len(pkg.Items)),
		zap.String("total_weight", quote.TotalWeight.String()),
		zap.String("cost", quote.Cost.String()),
	)

	return []types.Rate{{
		ID:         CustomRulesID + ":" + m.instanceID,
		MethodID:   CustomRulesID,
		InstanceID: m.instanceID,
		Label:      m.Title(),
		Cost:       quote.Cost,
		Taxable:    m.settings.TaxStatus() == types.TaxStatusTaxable,
		Currency:   m.currency,
		Quote:      quote,
	}}
}

// CustomRulesDefinition is the registry entry for CustomRules
func CustomRulesDefinition() Definition {
	return Definition{
		ID:          CustomRulesID,
		Title:       settings.DefaultTitle,
		Description: "Shipping method to be used with custom weight and price: fixed price plus price per kilo",
		Supports: []string{
			SupportsShippingZones,
			SupportsInstanceSettings,
			SupportsInstanceSettingsModal,
		},
		Fields: settings.Fields(),
		New: func(instanceID string, inst settings.Instance, currency types.Currency) Method {
			return NewCustomRules(instanceID, inst, currency)
		},
	}
}
