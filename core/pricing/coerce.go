package pricing

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"shipping-rules/core/types"
)

// leading numeric prefix, e.g. "2.5kg" -> "2.5"
var numericPrefix = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber converts loosely typed input to a decimal.
// Unparseable input, booleans, and magnitudes outside the float64 range yield zero.
// The sign is preserved.
func ParseNumber(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		return parseString(string(n))
	case string:
		return parseString(n)
	}
	return decimal.Zero
}

// CoerceDecimal converts loosely typed input to a non-negative decimal
func CoerceDecimal(v any) decimal.Decimal {
	d := ParseNumber(v)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// CoerceQuantity converts loosely typed input to a non-negative whole quantity.
// Fractions are truncated and quantities above math.MaxInt are capped there.
func CoerceQuantity(v any) int {
	d := CoerceDecimal(v).Truncate(0)
	if d.GreaterThan(maxQuantity) {
		return math.MaxInt
	}
	return int(d.IntPart())
}

var maxQuantity = decimal.NewFromInt(math.MaxInt)

// NewLineItem builds a line item from loosely typed weight and quantity
func NewLineItem(id string, weight, quantity any) types.LineItem {
	return types.LineItem{
		ID:       id,
		Weight:   CoerceDecimal(weight),
		Quantity: CoerceQuantity(quantity),
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parseString(s string) decimal.Decimal {
	m := strings.TrimSpace(numericPrefix.FindString(s))
	m = strings.TrimPrefix(m, "+")
	if m == "" {
		return decimal.Zero
	}
	// bound the exponent before decimal scales it: overflow and underflow are zero
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || f == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return fromFloat(f)
	}
	return d
}

