// Package api - API types for shipping quotes and method settings
package api

import (
	"shipping-rules/core/types"
)

// QuoteRequest is the input to POST /v1/quote
type QuoteRequest struct {
	// InstanceID selects the configured method instance (optional)
	InstanceID string `json:"instance_id,omitempty"`

	// MethodID selects the shipping method (optional)
	MethodID string `json:"method_id,omitempty"`

	// Destination is informational
	Destination string `json:"destination,omitempty"`

	// Items are the cart lines
	Items []ItemRequest `json:"items"`
}

// ItemRequest is one cart line as sent by the storefront.
// Weight and quantity may be numbers or numeric strings.
type ItemRequest struct {
	ID       string `json:"id,omitempty"`
	Weight   any    `json:"weight"`
	Quantity any    `json:"quantity"`
}

// SettingsUpdate is the input to PUT /v1/instances/:id/settings
type SettingsUpdate struct {
	Values map[string]any `json:"values"`
}

// SettingsResponse describes one instance's settings
type SettingsResponse struct {
	InstanceID string              `json:"instance_id"`
	Saved      bool                `json:"saved"`
	Revision   string              `json:"revision,omitempty"`
	UpdatedAt  string              `json:"updated_at,omitempty"`
	Values     map[string]string   `json:"values"`
	Pricing    types.PricingConfig `json:"pricing"`
	Title      string              `json:"title"`
	TaxStatus  types.TaxStatus     `json:"tax_status"`
}

// ErrorDetail describes a single error
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorResponse wraps an error for the client
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}
