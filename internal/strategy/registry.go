package strategy

import (
	"sync"

	"github.com/tidemark/tidemark/internal/core"
)

// Factory builds a strategy from free-form parameters, validating them.
type Factory func(params map[string]any) (Strategy, error)

// Registry maps strategy names to factories so the CLI and API can
// construct strategies from configuration.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given name, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Build constructs the named strategy with the given parameters.
func (r *Registry) Build(name string, params map[string]any) (Strategy, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, core.ErrUnknownStrategy
	}
	return f(params)
}

// Names returns the registered strategy names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
