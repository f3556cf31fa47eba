package carriers

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps carrier names to adapters. It is filled at startup and read
// for the rest of the process lifetime.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register stores adapter under name, replacing any previous entry.
func (r *Registry) Register(name string, adapter Adapter) {
	key := normalizeName(name)
	if key == "" || adapter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[key] = adapter
}

func (r *Registry) Resolve(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[normalizeName(name)]
	return adapter, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
