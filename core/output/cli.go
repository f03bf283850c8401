package output

import (
	"fmt"
	"io"
	"strings"
)

// CLIFormatter renders a boxed table
type CLIFormatter struct{}

// Format implements Formatter
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render implements Formatter
func (f *CLIFormatter) Render(w io.Writer, result *QuoteResult) error {
	var b strings.Builder

	b.WriteString("┌─────────────────────────────────────────────────────────────────────────┐\n")
	b.WriteString("│                          SHIPPING QUOTE                                 │\n")
	b.WriteString("├─────────────────────────────────────────────────────────────────────────┤\n")

	for _, item := range result.Items {
		label := item.ID
		if label == "" {
			label = "item"
		}
		fmt.Fprintf(&b, "│ %-50s %20s │\n",
			truncate(fmt.Sprintf("%s × %d", label, item.Quantity), 50),
			Weight(item.Weight))
	}
	fmt.Fprintf(&b, "│ %-50s %20s │\n", "TOTAL WEIGHT", Weight(result.TotalWeight))

	b.WriteString("├─────────────────────────────────────────────────────────────────────────┤\n")
	for _, rate := range result.Rates {
		fmt.Fprintf(&b, "│ %-50s %20s │\n", truncate(rate.Label, 50), Money(rate.Cost, rate.Currency))
		if !rate.Taxable {
			fmt.Fprintf(&b, "│   └─ %-66s │\n", "tax: none")
		}
	}
	b.WriteString("└─────────────────────────────────────────────────────────────────────────┘\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
