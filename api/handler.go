package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shipping-rules/adapters/storage"
	"shipping-rules/adapters/webhook"
	"shipping-rules/core/engine"
	"shipping-rules/core/pricing"
	"shipping-rules/core/settings"
	"shipping-rules/core/types"
	"shipping-rules/internal/errors"
)

// handleQuote handles POST /v1/quote
func (s *Server) handleQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     ErrorDetail{Code: "INVALID_JSON", Message: err.Error()},
			RequestID: c.GetString(requestIDKey),
		})
		return
	}

	result, err := s.quoter.Quote(c.Request.Context(), engine.QuoteRequest{
		RequestID:  c.GetString(requestIDKey),
		MethodID:   req.MethodID,
		InstanceID: req.InstanceID,
		Package: types.Package{
			Items:       toLineItems(req.Items),
			Destination: req.Destination,
		},
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// toLineItems normalizes storefront input. A missing quantity means one unit;
// anything unparseable becomes zero.
func toLineItems(items []ItemRequest) []types.LineItem {
	out := make([]types.LineItem, 0, len(items))
	for _, it := range items {
		qty := it.Quantity
		if qty == nil {
			qty = 1
		}
		out = append(out, pricing.NewLineItem(it.ID, it.Weight, qty))
	}
	return out
}

// handleListMethods handles GET /v1/methods
func (s *Server) handleListMethods(c *gin.Context) {
	defs := s.registry.List()
	c.JSON(http.StatusOK, gin.H{
		"methods": defs,
		"count":   len(defs),
	})
}

// handleFields handles GET /v1/fields
func (s *Server) handleFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": settings.Fields()})
}

// handleListInstances handles GET /v1/instances
func (s *Server) handleListInstances(c *gin.Context) {
	records, err := s.store.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	instances := make([]SettingsResponse, 0, len(records))
	for _, r := range records {
		instances = append(instances, settingsResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{
		"instances": instances,
		"count":     len(instances),
	})
}

// handleGetSettings handles GET /v1/instances/:id/settings
func (s *Server) handleGetSettings(c *gin.Context) {
	record, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsResponse(record))
}

// handlePutSettings handles PUT /v1/instances/:id/settings
func (s *Server) handlePutSettings(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     ErrorDetail{Code: "INVALID_JSON", Message: err.Error()},
			RequestID: c.GetString(requestIDKey),
		})
		return
	}

	values, err := stringValues(req.Values)
	if err != nil {
		s.recordSettingsUpdate("rejected")
		s.writeError(c, err)
		return
	}

	record, err := s.store.Update(ctx, id, func(current settings.Instance) (settings.Instance, error) {
		return current.Apply(values)
	})
	if err != nil {
		if errors.IsType(err, errors.TypeInput) {
			s.recordSettingsUpdate("rejected")
		} else {
			s.recordSettingsUpdate("failed")
		}
		s.writeError(c, err)
		return
	}

	s.recordSettingsUpdate("saved")
	s.notify(ctx, webhook.SettingsUpdated(record))
	c.JSON(http.StatusOK, settingsResponse(record))
}

// handleDeleteSettings handles DELETE /v1/instances/:id/settings
func (s *Server) handleDeleteSettings(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	s.notify(c.Request.Context(), webhook.SettingsReset(id))
	c.Status(http.StatusNoContent)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /version
func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":     s.version,
		"engine":      "shipping-rules",
		"api_version": "v1",
	})
}

// notify delivers in the background; a failed delivery never fails the request
func (s *Server) notify(ctx context.Context, event *webhook.Event) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.Notify(ctx, event); err != nil {
			s.logger.Warn("settings notification failed",
				zap.String("instance_id", event.InstanceID),
				zap.String("event", string(event.Type)),
				zap.Error(err),
			)
		}
	}()
}

func (s *Server) recordSettingsUpdate(result string) {
	if s.metrics != nil {
		s.metrics.RecordSettingsUpdate(result)
	}
}

func settingsResponse(r *storage.Record) SettingsResponse {
	resp := SettingsResponse{
		InstanceID: r.InstanceID,
		Saved:      r.Saved,
		Revision:   r.Revision,
		Values:     r.Settings.Resolved(),
		Pricing:    r.Settings.PricingConfig(),
		Title:      r.Settings.Title(),
		TaxStatus:  r.Settings.TaxStatus(),
	}
	if !r.UpdatedAt.IsZero() {
		resp.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// stringValues accepts form values sent as strings or JSON numbers
func stringValues(in map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			return nil, errors.Inputf("setting %s has unsupported type %T", k, v).WithContext("field", k)
		}
	}
	return out, nil
}
