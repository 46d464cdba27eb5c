package adapter

import "sync"

// Registry holds the adapter instances for all known accounts, keyed by
// account id. Iteration order is registration order. A bulk configuration
// change is applied with Clear followed by re-registration; account counts
// are small enough that diffing would buy nothing.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Re-registering an existing id replaces the
// instance in place, keeping its position in iteration order.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[a.ID()]; !exists {
		r.order = append(r.order, a.ID())
	}
	r.adapters[a.ID()] = a
}

// Unregister removes the adapter for id, if present.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[id]; !exists {
		return
	}
	delete(r.adapters, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the adapter for id, nil when unknown.
func (r *Registry) Get(id string) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[id]
}

// GetAll returns every registered adapter in registration order.
func (r *Registry) GetAll() []Adapter {
	return r.filter(func(Adapter) bool { return true })
}

// GetConfigured returns adapters whose credentials are present.
func (r *Registry) GetConfigured() []Adapter {
	return r.filter(Adapter.IsConfigured)
}

// GetEnabled returns adapters whose user toggle is on.
func (r *Registry) GetEnabled() []Adapter {
	return r.filter(Adapter.IsEnabled)
}

// GetActive returns adapters that are both configured and enabled.
func (r *Registry) GetActive() []Adapter {
	return r.filter(func(a Adapter) bool { return a.IsConfigured() && a.IsEnabled() })
}

// Clear removes every adapter.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.adapters = make(map[string]Adapter)
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

func (r *Registry) filter(keep func(Adapter) bool) []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(r.order))
	for _, id := range r.order {
		if a := r.adapters[id]; a != nil && keep(a) {
			out = append(out, a)
		}
	}
	return out
}
