package permission

import (
	"errors"
	"sync"
)

// Registry maps operation names to stable ordinals in registration order.
// Register everything up front, then Freeze before sharing.
type Registry struct {
	mu            sync.RWMutex
	nameToOrdinal map[string]int
	ordinalToName []string
	frozen        bool
}

// NewRegistry creates an empty, unfrozen [Registry].
func NewRegistry() *Registry {
	return &Registry{
		nameToOrdinal: make(map[string]int),
	}
}

// Register assigns the next ordinal to the named operation and returns it.
// Must be called before [Registry.Freeze].
func (r *Registry) Register(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return -1, errors.New("registry frozen")
	}

	if name == "" {
		return -1, errors.New("operation name cannot be empty")
	}

	if _, exists := r.nameToOrdinal[name]; exists {
		return -1, errors.New("operation already registered")
	}

	next := len(r.ordinalToName)
	r.nameToOrdinal[name] = next
	r.ordinalToName = append(r.ordinalToName, name)

	return next, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Ordinal(name)
	return ok
}

// Ordinal returns the ordinal for the named operation, or false if not registered.
func (r *Registry) Ordinal(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ord, ok := r.nameToOrdinal[name]
	return ord, ok
}

// Name returns the operation name for the given ordinal, or false if unassigned.
func (r *Registry) Name(ordinal int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ordinal < 0 || ordinal >= len(r.ordinalToName) {
		return "", false
	}
	return r.ordinalToName[ordinal], true
}

// Names returns every registered name in ordinal order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.ordinalToName))
	copy(out, r.ordinalToName)
	return out
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Count returns the number of registered operations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordinalToName)
}
