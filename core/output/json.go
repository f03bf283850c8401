package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders the result as JSON with exact decimal amounts
type JSONFormatter struct {
	Indent string
}

// Format implements Formatter
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render implements Formatter
func (f *JSONFormatter) Render(w io.Writer, result *QuoteResult) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(result)
}
