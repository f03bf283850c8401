package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"shipping-rules/core/types"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(weight string, qty int) types.Item {
	return types.LineItem{Weight: d(weight), Quantity: qty}
}

// TestComputeCostScenarios covers the documented pricing scenarios
func TestComputeCostScenarios(t *testing.T) {
	cfg := types.DefaultPricingConfig()

	tests := []struct {
		name       string
		items      []types.Item
		wantWeight string
		wantCost   string
	}{
		{
			name:       "over threshold charges extra kilos",
			items:      []types.Item{item("3", 2), item("5", 1)},
			wantWeight: "11",
			wantCost:   "12",
		},
		{
			name:       "under threshold is flat",
			items:      []types.Item{item("2", 1)},
			wantWeight: "2",
			wantCost:   "10",
		},
		{
			name:       "no items is flat",
			items:      nil,
			wantWeight: "0",
			wantCost:   "10",
		},
		{
			name:       "empty slice is flat",
			items:      []types.Item{},
			wantWeight: "0",
			wantCost:   "10",
		},
		{
			name:       "exactly at threshold is flat",
			items:      []types.Item{item("2.5", 4)},
			wantWeight: "10",
			wantCost:   "10",
		},
		{
			name:       "fractional extra weight is not rounded",
			items:      []types.Item{item("10.125", 1)},
			wantWeight: "10.125",
			wantCost:   "10.25",
		},
		{
			name:       "zero quantity contributes nothing",
			items:      []types.Item{item("50", 0), item("1", 1)},
			wantWeight: "1",
			wantCost:   "10",
		},
		{
			name:       "negative quantity contributes nothing",
			items:      []types.Item{item("50", -3)},
			wantWeight: "0",
			wantCost:   "10",
		},
		{
			name:       "negative weight is treated as zero",
			items:      []types.Item{item("-20", 2), item("12", 1)},
			wantWeight: "12",
			wantCost:   "14",
		},
		{
			name:       "nil entries are skipped",
			items:      []types.Item{nil, item("11", 1)},
			wantWeight: "11",
			wantCost:   "12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := ComputeQuote(tt.items, cfg)
			if !quote.TotalWeight.Equal(d(tt.wantWeight)) {
				t.Errorf("expected total weight %s, got %s", tt.wantWeight, quote.TotalWeight)
			}
			if !quote.Cost.Equal(d(tt.wantCost)) {
				t.Errorf("expected cost %s, got %s", tt.wantCost, quote.Cost)
			}
			if cost := ComputeCost(tt.items, cfg); !cost.Equal(quote.Cost) {
				t.Errorf("ComputeCost %s disagrees with ComputeQuote %s", cost, quote.Cost)
			}
		})
	}
}

// TestFlatRegion checks cost == fixed price for every weight up to the threshold
func TestFlatRegion(t *testing.T) {
	cfg := types.PricingConfig{
		FixedPrice:   d("7.5"),
		FlatWeight:   d("3"),
		PricePerKilo: d("1.2"),
	}

	for w := decimal.Zero; w.LessThanOrEqual(cfg.FlatWeight); w = w.Add(d("0.25")) {
		quote := QuoteWeight(w, cfg)
		if !quote.Cost.Equal(cfg.FixedPrice) {
			t.Fatalf("weight %s: expected fixed price %s, got %s", w, cfg.FixedPrice, quote.Cost)
		}
		if !quote.IsFlat() {
			t.Fatalf("weight %s: expected flat quote", w)
		}
	}
}

// TestLinearRegion checks the surcharge formula exactly above the threshold
func TestLinearRegion(t *testing.T) {
	cfg := types.PricingConfig{
		FixedPrice:   d("4.99"),
		FlatWeight:   d("2"),
		PricePerKilo: d("0.333"),
	}

	for _, w := range []string{"2.001", "3", "17.77", "1000"} {
		weight := d(w)
		want := cfg.FixedPrice.Add(weight.Sub(cfg.FlatWeight).Mul(cfg.PricePerKilo))
		quote := QuoteWeight(weight, cfg)
		if !quote.Cost.Equal(want) {
			t.Errorf("weight %s: expected %s, got %s", w, want, quote.Cost)
		}
		if !quote.ExtraWeight.Equal(weight.Sub(cfg.FlatWeight)) {
			t.Errorf("weight %s: unexpected extra weight %s", w, quote.ExtraWeight)
		}
	}
}

// TestCostMonotonic checks cost never decreases as weight grows
func TestCostMonotonic(t *testing.T) {
	configs := []types.PricingConfig{
		types.DefaultPricingConfig(),
		{FixedPrice: decimal.Zero, FlatWeight: decimal.Zero, PricePerKilo: d("3")},
		{FixedPrice: d("5"), FlatWeight: d("1"), PricePerKilo: decimal.Zero},
	}

	for _, cfg := range configs {
		prev := QuoteWeight(decimal.Zero, cfg).Cost
		for w := d("0.1"); w.LessThan(d("30")); w = w.Add(d("0.1")) {
			cost := QuoteWeight(w, cfg).Cost
			if cost.LessThan(prev) {
				t.Fatalf("cost decreased at weight %s: %s < %s", w, cost, prev)
			}
			if cost.LessThan(cfg.FixedPrice) {
				t.Fatalf("cost %s below fixed price %s", cost, cfg.FixedPrice)
			}
			prev = cost
		}
	}
}

func TestQuoteWeightClampsNegative(t *testing.T) {
	quote := QuoteWeight(d("-5"), types.DefaultPricingConfig())
	if !quote.TotalWeight.IsZero() {
		t.Errorf("expected zero weight, got %s", quote.TotalWeight)
	}
	if !quote.Cost.Equal(types.DefaultFixedPrice) {
		t.Errorf("expected fixed price, got %s", quote.Cost)
	}
}

func TestZeroConfig(t *testing.T) {
	// a zero-value config never fails; any weight above zero is billed at zero per kilo
	quote := ComputeQuote([]types.Item{item("4", 1)}, types.PricingConfig{})
	if !quote.Cost.IsZero() {
		t.Errorf("expected zero cost, got %s", quote.Cost)
	}
	if !quote.ExtraWeight.Equal(d("4")) {
		t.Errorf("expected extra weight 4, got %s", quote.ExtraWeight)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, "0"},
		{"int", 3, "3"},
		{"int64", int64(-2), "-2"},
		{"float", 2.5, "2.5"},
		{"nan", math.NaN(), "0"},
		{"inf", math.Inf(1), "0"},
		{"bool true", true, "0"},
		{"bool false", false, "0"},
		{"json number", json.Number("1.75"), "1.75"},
		{"plain string", "4.2", "4.2"},
		{"padded string", "  7 ", "7"},
		{"unit suffix", "2.5kg", "2.5"},
		{"leading dot", ".5", "0.5"},
		{"plus sign", "+3", "3"},
		{"exponent", "1e2", "100"},
		{"exponent overflow", "1e900000000", "0"},
		{"exponent underflow", "1e-900000000", "0"},
		{"huge json number", json.Number("9e999999999"), "0"},
		{"tiny json number", json.Number("-2.5e-400000"), "0"},
		{"float64 max magnitude", "1e308", "1e308"},
		{"zero with exponent", "0e900000000", "0"},
		{"negative string", "-3", "-3"},
		{"garbage", "abc", "0"},
		{"empty", "", "0"},
		{"decimal", d("9.99"), "9.99"},
		{"unsupported type", []int{1}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.input)
			if !got.Equal(d(tt.want)) {
				t.Errorf("ParseNumber(%v) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	if got := CoerceDecimal("-3"); !got.IsZero() {
		t.Errorf("negative weight should coerce to 0, got %s", got)
	}
	if got := CoerceDecimal("abc"); !got.IsZero() {
		t.Errorf("non-numeric weight should coerce to 0, got %s", got)
	}
	if got := CoerceQuantity("2.9"); got != 2 {
		t.Errorf("expected quantity 2, got %d", got)
	}
	if got := CoerceQuantity(-1); got != 0 {
		t.Errorf("expected quantity 0, got %d", got)
	}
	if got := CoerceQuantity(nil); got != 0 {
		t.Errorf("expected quantity 0, got %d", got)
	}
	if got := CoerceQuantity("1e900000000"); got != 0 {
		t.Errorf("out of range quantity should coerce to 0, got %d", got)
	}
	if got := CoerceQuantity("1e30"); got != math.MaxInt {
		t.Errorf("expected quantity capped at MaxInt, got %d", got)
	}
	if got := CoerceQuantity(int64(math.MaxInt32) + 1); int64(got) != int64(math.MaxInt32)+1 {
		t.Errorf("expected quantity above MaxInt32 to be kept, got %d", got)
	}
	if got := CoerceDecimal("1e-900000000"); !got.IsZero() {
		t.Errorf("underflowing weight should coerce to 0, got %s", got)
	}
}

// TestOutOfRangeWeightsQuoteFlat prices exponent-bomb weights without scaling them
func TestOutOfRangeWeightsQuoteFlat(t *testing.T) {
	items := []types.Item{
		NewLineItem("a", "1e900000000", 1),
		NewLineItem("b", json.Number("1e900000000"), "1e900000000"),
		NewLineItem("c", "1e-900000000", 3),
	}

	quote := ComputeQuote(items, types.DefaultPricingConfig())
	if !quote.TotalWeight.IsZero() {
		t.Errorf("expected total weight 0, got %s", quote.TotalWeight)
	}
	if !quote.Cost.Equal(d("10")) {
		t.Errorf("expected fixed price 10, got %s", quote.Cost)
	}
}

// TestConcurrentQuotes shares one config across goroutines; run with -race
func TestConcurrentQuotes(t *testing.T) {
	cfg := types.DefaultPricingConfig()

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			items := []types.Item{NewLineItem("x", strconv.Itoa(n), 1)}
			want := d("10")
			if n > 10 {
				want = d("10").Add(d(strconv.Itoa(n - 10)).Mul(d("2")))
			}
			if got := ComputeCost(items, cfg); !got.Equal(want) {
				errs <- fmt.Sprintf("weight %d: got %s, want %s", n, got, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
	if !cfg.FixedPrice.Equal(d("10")) || !cfg.FlatWeight.Equal(d("10")) || !cfg.PricePerKilo.Equal(d("2")) {
		t.Errorf("config mutated: %+v", cfg)
	}
}

// TestLooseItemsNeverFail runs the calculator over loosely typed cart input
func TestLooseItemsNeverFail(t *testing.T) {
	raw := []struct {
		weight   any
		quantity any
	}{
		{"3", "2"},
		{5, 1},
		{"heavy", 4},
		{nil, nil},
		{-8.0, 3},
	}

	var items []types.Item
	for i, r := range raw {
		items = append(items, NewLineItem(string(rune('a'+i)), r.weight, r.quantity))
	}

	quote := ComputeQuote(items, types.DefaultPricingConfig())
	if !quote.TotalWeight.Equal(d("11")) {
		t.Errorf("expected total weight 11, got %s", quote.TotalWeight)
	}
	if !quote.Cost.Equal(d("12")) {
		t.Errorf("expected cost 12, got %s", quote.Cost)
	}
}
