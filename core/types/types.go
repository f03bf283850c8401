// Package types contains the shared domain types for shipping cost calculation.
package types

import "github.com/shopspring/decimal"

// Item is anything that exposes a unit weight and a quantity
type Item interface {
	UnitWeight() decimal.Decimal
	Qty() int
}

// LineItem is a single cart line
type LineItem struct {
	// ID identifies the line in the cart (optional)
	ID string `json:"id,omitempty"`

	// Weight is the weight of one unit in kg
	Weight decimal.Decimal `json:"weight"`

	// Quantity is the number of units
	Quantity int `json:"quantity"`
}

// UnitWeight implements Item
func (l LineItem) UnitWeight() decimal.Decimal {
	return l.Weight
}

// Qty implements Item
func (l LineItem) Qty() int {
	return l.Quantity
}

// Package is the set of line items shipped in one calculation
type Package struct {
	// Items are the cart lines
	Items []LineItem `json:"items"`

	// Destination is an optional shipping destination (informational)
	Destination string `json:"destination,omitempty"`
}

// Contents returns the package items as the Item capability
func (p Package) Contents() []Item {
	items := make([]Item, 0, len(p.Items))
	for _, li := range p.Items {
		items = append(items, li)
	}
	return items
}
