// Package types - Pricing configuration
package types

import "github.com/shopspring/decimal"

// Default pricing parameters applied when a setting is absent
var (
	DefaultFixedPrice   = decimal.NewFromInt(10)
	DefaultFlatWeight   = decimal.NewFromInt(10)
	DefaultPricePerKilo = decimal.NewFromInt(2)
)

// PricingConfig is a read-only snapshot of the administrator's pricing settings.
// All values are expected to be non-negative.
type PricingConfig struct {
	// FixedPrice is charged for any package up to FlatWeight
	FixedPrice decimal.Decimal `json:"fixed_price"`

	// FlatWeight is the threshold (kg) covered by FixedPrice
	FlatWeight decimal.Decimal `json:"flat_weight"`

	// PricePerKilo is charged for every kg above FlatWeight
	PricePerKilo decimal.Decimal `json:"price_per_kilo"`
}

// DefaultPricingConfig returns the configuration used when nothing is set
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		FixedPrice:   DefaultFixedPrice,
		FlatWeight:   DefaultFlatWeight,
		PricePerKilo: DefaultPricePerKilo,
	}
}

// TaxStatus controls whether a shipping rate is taxable
type TaxStatus string

const (
	TaxStatusTaxable TaxStatus = "taxable"
	TaxStatusNone    TaxStatus = "none"
)

// IsValid reports whether the tax status is known
func (s TaxStatus) IsValid() bool {
	return s == TaxStatusTaxable || s == TaxStatusNone
}

// Rate is a priced shipping option handed to the presentation layer
type Rate struct {
	// ID uniquely identifies this rate
	ID string `json:"id"`

	// MethodID is the shipping method that produced the rate
	MethodID string `json:"method_id"`

	// InstanceID is the configured method instance
	InstanceID string `json:"instance_id"`

	// Label is the title the buyer sees
	Label string `json:"label"`

	// Cost is the numeric shipping fee
	Cost decimal.Decimal `json:"cost"`

	// Taxable indicates whether taxes apply to Cost
	Taxable bool `json:"taxable"`

	// Currency is the cost currency
	Currency Currency `json:"currency"`

	// Quote carries the calculation details
	Quote Quote `json:"quote"`
}
