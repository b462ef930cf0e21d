package hooks

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/autograde/pkg/domain"
)

// Registry manages the named Go eject hooks a catalogue may reference.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]domain.EjectFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make(map[string]domain.EjectFunc),
	}
}

// Register adds a hook to the registry.
// If a hook with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn domain.EjectFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = fn
}

// Lookup returns the hook registered under name.
// Returns an error if the hook is not found. A nil registry has no hooks.
func (r *Registry) Lookup(name string) (domain.EjectFunc, error) {
	if r == nil {
		return nil, fmt.Errorf("hook not found: %s", name)
	}
	r.mu.RLock()
	fn, ok := r.hooks[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("hook not found: %s", name)
	}
	return fn, nil
}

// Names returns the registered hook names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
