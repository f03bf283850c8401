package output

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter renders a markdown table, suitable for tickets and PR comments
type MarkdownFormatter struct{}

// Format implements Formatter
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render implements Formatter
func (f *MarkdownFormatter) Render(w io.Writer, result *QuoteResult) error {
	var b strings.Builder

	b.WriteString("## Shipping quote\n\n")
	fmt.Fprintf(&b, "Package weight: **%s**\n\n", Weight(result.TotalWeight))
	b.WriteString("| Method | Cost | Taxable |\n")
	b.WriteString("|---|---:|---|\n")
	for _, rate := range result.Rates {
		taxable := "no"
		if rate.Taxable {
			taxable = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", escapePipes(rate.Label), Money(rate.Cost, rate.Currency), taxable)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
