// Package webhook notifies external systems when instance settings change.
// Payloads are JSON (optionally Slack attachments) and HMAC-SHA256 signed.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"shipping-rules/adapters/storage"
	"shipping-rules/core/types"
	"shipping-rules/internal/config"
	"shipping-rules/internal/logging"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body
const SignatureHeader = "X-Signature"

// EventType names a settings change
type EventType string

const (
	EventSettingsUpdated EventType = "settings.updated"
	EventSettingsReset   EventType = "settings.reset"
)

// Event is the webhook payload
type Event struct {
	// Type of the change
	Type EventType `json:"event"`

	// InstanceID is the changed method instance
	InstanceID string `json:"instance_id"`

	// Revision of the saved record, empty on reset
	Revision string `json:"revision,omitempty"`

	// Title is the rate label now in effect
	Title string `json:"title"`

	// Values are the effective settings
	Values map[string]string `json:"values"`

	// Pricing is the pricing rule now in effect
	Pricing types.PricingConfig `json:"pricing"`

	// Timestamp of the change
	Timestamp time.Time `json:"timestamp"`
}

// SettingsUpdated builds the event for a saved record
func SettingsUpdated(r *storage.Record) *Event {
	return &Event{
		Type:       EventSettingsUpdated,
		InstanceID: r.InstanceID,
		Revision:   r.Revision,
		Title:      r.Settings.Title(),
		Values:     r.Settings.Resolved(),
		Pricing:    r.Settings.PricingConfig(),
		Timestamp:  r.UpdatedAt,
	}
}

// SettingsReset builds the event for an instance whose saved settings were dropped
func SettingsReset(instanceID string) *Event {
	r := &storage.Record{InstanceID: instanceID, UpdatedAt: time.Now().UTC()}
	e := SettingsUpdated(r)
	e.Type = EventSettingsReset
	return e
}

// Adapter is the webhook adapter
type Adapter struct {
	config     config.WebhookConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[any]
}

// New creates a webhook adapter, or nil when no endpoint is configured
func New(cfg config.WebhookConfig) *Adapter {
	if cfg.Endpoint == "" {
		return nil
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Endpoint,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("webhook circuit state changed",
				zap.String("endpoint", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Adapter{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: breaker,
	}
}

// Notify sends the event, retrying failed deliveries
func (a *Adapter) Notify(ctx context.Context, event *Event) error {
	body, err := a.formatPayload(event)
	if err != nil {
		return fmt.Errorf("failed to format payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.config.RetryDelay):
			}
		}

		_, err := a.breaker.Execute(func() (any, error) {
			return nil, a.sendOnce(ctx, body)
		})
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("webhook endpoint unavailable: %w", err)
		}
		if err != nil {
			lastErr = err
			logging.Debug("webhook delivery failed",
				zap.String("event", string(event.Type)),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}
		return nil
	}

	return fmt.Errorf("webhook failed after %d attempts: %w", a.config.RetryCount+1, lastErr)
}

func (a *Adapter) sendOnce(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}
	if a.config.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(body, a.config.Secret))
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

func (a *Adapter) formatPayload(event *Event) ([]byte, error) {
	if a.config.Format == "slack" {
		return formatSlack(event)
	}
	return json.Marshal(event)
}

func formatSlack(event *Event) ([]byte, error) {
	text := fmt.Sprintf("Shipping rules of %s reset to defaults", event.InstanceID)
	if event.Type == EventSettingsUpdated {
		text = fmt.Sprintf("Shipping rules of %s updated", event.InstanceID)
	}

	slack := map[string]any{
		"attachments": []map[string]any{
			{
				"title": text,
				"fields": []map[string]any{
					{"title": "Label", "value": event.Title, "short": true},
					{"title": "Fixed price", "value": event.Pricing.FixedPrice.String(), "short": true},
					{"title": "Flat weight (kg)", "value": event.Pricing.FlatWeight.String(), "short": true},
					{"title": "Price per kilo", "value": event.Pricing.PricePerKilo.String(), "short": true},
				},
				"ts": event.Timestamp.Unix(),
			},
		},
	}
	return json.Marshal(slack)
}

// Sign returns the hex HMAC-SHA256 of payload
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an incoming webhook signature
func VerifySignature(payload []byte, signature, secret string) bool {
	return hmac.Equal([]byte(signature), []byte(Sign(payload, secret)))
}
