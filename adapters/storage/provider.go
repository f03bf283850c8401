package storage

import (
	"context"

	"shipping-rules/core/settings"
)

// Provider exposes a Store as the engine's settings source
type Provider struct {
	Store Store
}

// InstanceSettings returns the saved settings, or defaults when none are saved
func (p Provider) InstanceSettings(ctx context.Context, instanceID string) (settings.Instance, error) {
	record, err := p.Store.Get(ctx, instanceID)
	if err != nil {
		return settings.Instance{}, err
	}
	return record.Settings, nil
}
