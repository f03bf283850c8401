// Package settings defines the administrator-facing settings of the
// custom rules shipping method and resolves them into pricing snapshots.
package settings

// Field keys
const (
	KeyTitle      = "title"
	KeyTaxStatus  = "tax_status"
	KeyPriceKilo  = "price_kilo"
	KeyFlatWeight = "flat_weight"
	KeyFixedPrice = "fixed_price"
)

// DefaultTitle is shown to buyers when no title is configured
const DefaultTitle = "Shipping custom rules"

// FieldType is the kind of form control
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldSelect FieldType = "select"
	FieldPrice  FieldType = "price"
	FieldNumber FieldType = "number"
)

// Numeric reports whether values of this type are numbers
func (t FieldType) Numeric() bool {
	return t == FieldPrice || t == FieldNumber
}

// Option is one choice of a select field
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one instance setting
type Field struct {
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Type        FieldType `json:"type"`
	Description string    `json:"description,omitempty"`
	Default     string    `json:"default"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
}

// HasOption reports whether v is one of the select options
func (f Field) HasOption(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

var fields = []Field{
	{
		Key:         KeyTitle,
		Title:       "Method Title",
		Type:        FieldText,
		Description: "This controls the title which the user sees during checkout.",
		Default:     DefaultTitle,
	},
	{
		Key:     KeyTaxStatus,
		Title:   "Tax status",
		Type:    FieldSelect,
		Default: "taxable",
		Options: []Option{
			{Value: "taxable", Label: "Taxable"},
			{Value: "none", Label: "None"},
		},
	},
	{
		Key:         KeyPriceKilo,
		Title:       "Price of extra kilo",
		Type:        FieldPrice,
		Description: "Enter a price for all extra kilo (kg)",
		Default:     "2",
		Placeholder: "0",
	},
	{
		Key:         KeyFlatWeight,
		Title:       "Flat weight",
		Type:        FieldNumber,
		Description: "Enter a flat weight",
		Default:     "10",
	},
	{
		Key:         KeyFixedPrice,
		Title:       "Price for flat weight",
		Type:        FieldPrice,
		Description: "Enter a fixed price for flat weight",
		Default:     "10",
		Placeholder: "0",
	},
}

// Fields returns the instance form schema in display order
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup returns the field with the given key
func Lookup(key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}
