package engine

import (
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Registry maps engine names to implementations.
type Registry struct {
	engines map[string]Engine
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// LoadDir registers a Process engine for each name, expecting an
// executable of the same name inside dir. Missing executables are still
// registered and fail with ErrNotFound when invoked.
func LoadDir(dir string, names []string) *Registry {
	r := NewRegistry()
	for _, name := range names {
		r.Register(name, NewProcess(filepath.Join(dir, name)))
	}
	return r
}

// Build registers every name from dir, then replaces the ones listed in
// remote with HTTP engines.
func Build(dir string, names []string, remote map[string]string, timeout time.Duration) *Registry {
	r := LoadDir(dir, names)
	for name, url := range remote {
		r.Register(name, NewRemote(url, timeout))
	}
	return r
}

// Register adds or replaces an engine.
func (r *Registry) Register(name string, e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[name] = e
}

func (r *Registry) Lookup(name string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[name]
	return e, ok
}

// Names returns the registered engine names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
