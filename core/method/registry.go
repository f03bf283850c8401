package method

import (
	"sort"
	"sync"

	"shipping-rules/core/settings"
	"shipping-rules/core/types"
	"shipping-rules/internal/errors"
)

// Constructor builds a method instance from its saved settings
type Constructor func(instanceID string, inst settings.Instance, currency types.Currency) Method

// Definition describes a registrable shipping method
type Definition struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Supports    []string         `json:"supports"`
	Fields      []settings.Field `json:"fields,omitempty"`
	New         Constructor      `json:"-"`
}

// Registry manages shipping method registration
type Registry struct {
	mu      sync.RWMutex
	methods map[string]Definition
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		methods: make(map[string]Definition),
	}
}

// Register adds a method definition
func (r *Registry) Register(def Definition) error {
	if def.ID == "" {
		return errors.Input("method id is required")
	}
	if def.New == nil {
		return errors.Inputf("method %s has no constructor", def.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[def.ID]; exists {
		return errors.Conflict("method", def.ID)
	}
	r.methods[def.ID] = def
	return nil
}

// Get returns a method definition by id
func (r *Registry) Get(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.methods[id]
	return def, ok
}

// List returns all definitions sorted by id
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.methods))
	for _, def := range r.methods {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Instantiate builds a configured method
func (r *Registry) Instantiate(id, instanceID string, inst settings.Instance, currency types.Currency) (Method, error) {
	def, ok := r.Get(id)
	if !ok {
		return nil, errors.NotFound("shipping method", id)
	}
	return def.New(instanceID, inst, currency), nil
}

// Global default registry
var defaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(CustomRulesDefinition())
	return r
}

// RegisterMethod adds a definition to the default registry
func RegisterMethod(def Definition) error {
	return defaultRegistry.Register(def)
}

// GetDefaultRegistry returns the default registry
func GetDefaultRegistry() *Registry {
	return defaultRegistry
}
