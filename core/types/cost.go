// Package types - Shipping cost types
package types

import "github.com/shopspring/decimal"

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Symbol returns the display symbol, falling back to the code itself
func (c Currency) Symbol() string {
	switch c {
	case CurrencyUSD:
		return "$"
	case CurrencyEUR:
		return "€"
	case CurrencyGBP:
		return "£"
	}
	return string(c) + " "
}

// IsValid reports whether the currency is known
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

// Quote is the result of a single shipping fee calculation.
// It is produced fresh per call and never mutated afterwards.
type Quote struct {
	// Cost is the shipping fee, unrounded
	Cost decimal.Decimal `json:"cost"`

	// TotalWeight is the package weight the cost was derived from
	TotalWeight decimal.Decimal `json:"total_weight"`

	// ExtraWeight is the part of TotalWeight above the flat weight
	ExtraWeight decimal.Decimal `json:"extra_weight"`
}

// IsFlat reports whether only the fixed price applied
func (q Quote) IsFlat() bool {
	return !q.ExtraWeight.IsPositive()
}
