package plugins

import (
	"fmt"
	"sync"
)

// Entry is one named factory in a Registry
type Entry struct {
	Name    string
	Factory Factory
}

// Registry is an ordered table of plugin factories. Entries enumerate in
// registration order, which is the order plugins load in.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named factory
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("cannot register plugin with empty name")
	}
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for plugin %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(name) >= 0 {
		return fmt.Errorf("plugin already registered: %s", name)
	}

	r.entries = append(r.entries, Entry{Name: name, Factory: factory})
	return nil
}

// Unregister removes a factory by name
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("plugin not found: %s", name)
	}

	r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
	return nil
}

// Has checks if a factory is registered under name
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.indexLocked(name) >= 0
}

// Entries returns all entries in registration order
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Entry(nil), r.entries...)
}

// Count returns the number of registered factories
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Clear removes all factories
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
}

func (r *Registry) indexLocked(name string) int {
	for i, e := range r.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry populated by package-level Register
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a factory to the default registry.
// Register is designed to be called from package init funcs, so it panics if
// the name is empty or taken, or the factory is nil.
func Register(name string, factory Factory) {
	if err := defaultRegistry.Register(name, factory); err != nil {
		panic(err)
	}
}
