package settings

import (
	"maps"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"shipping-rules/core/pricing"
	"shipping-rules/core/types"
	"shipping-rules/internal/errors"
)

// Instance holds the raw saved values of one method instance.
// Values are kept as the administrator typed them (after normalization).
// A missing or empty value means "use the field default".
type Instance struct {
	Values map[string]string `json:"values"`
}

// Defaults returns an instance with every field set to its default
func Defaults() Instance {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Key] = f.Default
	}
	return Instance{Values: values}
}

// Get returns the saved value of key, or the field default when unset
func (i Instance) Get(key string) string {
	if v := strings.TrimSpace(i.Values[key]); v != "" {
		return v
	}
	if f, ok := Lookup(key); ok {
		return f.Default
	}
	return ""
}

// Resolved returns every field's effective value
func (i Instance) Resolved() map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Key] = i.Get(f.Key)
	}
	return out
}

// Title returns the label buyers see
func (i Instance) Title() string {
	return i.Get(KeyTitle)
}

// TaxStatus returns the configured tax status, taxable when unrecognised
func (i Instance) TaxStatus() types.TaxStatus {
	s := types.TaxStatus(i.Get(KeyTaxStatus))
	if !s.IsValid() {
		return types.TaxStatusTaxable
	}
	return s
}

// PricingConfig resolves the numeric settings into a pricing snapshot.
// It never fails: non-numeric or negative values resolve to zero.
func (i Instance) PricingConfig() types.PricingConfig {
	return types.PricingConfig{
		FixedPrice:   pricing.CoerceDecimal(i.Get(KeyFixedPrice)),
		FlatWeight:   pricing.CoerceDecimal(i.Get(KeyFlatWeight)),
		PricePerKilo: pricing.CoerceDecimal(i.Get(KeyPriceKilo)),
	}
}

// Apply validates values and returns a copy of the instance with them merged in.
// The receiver is left untouched.
func (i Instance) Apply(values map[string]string) (Instance, error) {
	normalized, err := Validate(values)
	if err != nil {
		return i, err
	}

	merged := make(map[string]string, len(i.Values)+len(normalized))
	maps.Copy(merged, i.Values)
	maps.Copy(merged, normalized)
	return Instance{Values: merged}, nil
}

var strictNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// Validate checks an admin update and returns the normalized values.
// Decimal commas are accepted for numeric fields ("2,5" becomes "2.5").
// An empty value clears the setting back to its default.
func Validate(values map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for key, raw := range values {
		f, ok := Lookup(key)
		if !ok {
			return nil, errors.Inputf("unknown setting %q", key).WithContext("field", key)
		}

		v := strings.TrimSpace(raw)
		if v == "" {
			out[key] = ""
			continue
		}

		switch {
		case f.Type.Numeric():
			v = strings.ReplaceAll(v, ",", ".")
			if !strictNumber.MatchString(v) {
				return nil, errors.Inputf("%s must be a number, got %q", f.Title, raw).WithContext("field", key)
			}
			d, err := decimal.NewFromString(strings.TrimPrefix(v, "+"))
			if err != nil {
				return nil, errors.Inputf("%s must be a number, got %q", f.Title, raw).WithContext("field", key)
			}
			if d.IsNegative() {
				return nil, errors.Inputf("%s must not be negative", f.Title).WithContext("field", key)
			}
			v = d.String()
		case f.Type == FieldSelect:
			if !f.HasOption(v) {
				return nil, errors.Inputf("%s must be one of %s", f.Title, optionList(f)).WithContext("field", key)
			}
		}
		out[key] = v
	}
	return out, nil
}

func optionList(f Field) string {
	vals := make([]string, 0, len(f.Options))
	for _, o := range f.Options {
		vals = append(vals, o.Value)
	}
	return strings.Join(vals, ", ")
}
