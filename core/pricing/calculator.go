// Package pricing computes shipping fees from package weight.
// Everything in this package is pure: no logging, no state, no errors.
package pricing

import (
	"github.com/shopspring/decimal"

	"shipping-rules/core/types"
)

// TotalWeight sums unit weight × quantity over all items.
// Negative weights and non-positive quantities contribute nothing.
func TotalWeight(items []types.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item == nil {
			continue
		}
		weight := item.UnitWeight()
		qty := item.Qty()
		if !weight.IsPositive() || qty <= 0 {
			continue
		}
		total = total.Add(weight.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// ComputeCost returns the shipping fee for the given items.
//
//	total <= flat weight: fixed price
//	total >  flat weight: fixed price + (total - flat weight) * price per kilo
func ComputeCost(items []types.Item, cfg types.PricingConfig) decimal.Decimal {
	return ComputeQuote(items, cfg).Cost
}

// ComputeQuote is ComputeCost with the intermediate weights attached
func ComputeQuote(items []types.Item, cfg types.PricingConfig) types.Quote {
	return QuoteWeight(TotalWeight(items), cfg)
}

// QuoteWeight prices an already summed weight
func QuoteWeight(total decimal.Decimal, cfg types.PricingConfig) types.Quote {
	if total.IsNegative() {
		total = decimal.Zero
	}

	quote := types.Quote{
		Cost:        cfg.FixedPrice,
		TotalWeight: total,
		ExtraWeight: decimal.Zero,
	}
	if total.LessThanOrEqual(cfg.FlatWeight) {
		return quote
	}

	extra := total.Sub(cfg.FlatWeight)
	quote.ExtraWeight = extra
	quote.Cost = cfg.FixedPrice.Add(extra.Mul(cfg.PricePerKilo))
	return quote
}
