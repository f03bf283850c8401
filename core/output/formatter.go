// Package output renders shipping quotes for people and machines.
// Display rounding and currency symbols are applied here and nowhere else.
package output

import (
	"io"

	"github.com/shopspring/decimal"

	"shipping-rules/core/types"
	"shipping-rules/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *QuoteResult) error
}

// QuoteResult is everything a presentation sink needs about one quote request
type QuoteResult struct {
	// RequestID identifies the request
	RequestID string `json:"request_id"`

	// InstanceID is the method instance whose settings were used
	InstanceID string `json:"instance_id"`

	// Items are the normalized line items
	Items []types.LineItem `json:"items"`

	// TotalWeight is the package weight in kg
	TotalWeight decimal.Decimal `json:"total_weight"`

	// Rates are the priced shipping options
	Rates []types.Rate `json:"rates"`

	// Currency is the quote currency
	Currency types.Currency `json:"currency"`

	// Timestamp is when the quote was computed (RFC 3339)
	Timestamp string `json:"timestamp"`
}

var formatters = map[Format]Formatter{
	FormatCLI:      &CLIFormatter{},
	FormatJSON:     &JSONFormatter{Indent: "  "},
	FormatMarkdown: &MarkdownFormatter{},
}

// Get returns the formatter for a format name
func Get(format string) (Formatter, error) {
	f, ok := formatters[Format(format)]
	if !ok {
		return nil, errors.NotSupported("output format " + format)
	}
	return f, nil
}

// Money renders an amount for display, rounded to cents
func Money(amount decimal.Decimal, currency types.Currency) string {
	return currency.Symbol() + amount.StringFixed(2)
}

// Weight renders a weight for display
func Weight(w decimal.Decimal) string {
	return w.String() + " kg"
}
