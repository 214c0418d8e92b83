package effect

import (
	"fmt"
	"sort"
	"sync"
)

type registryKey struct {
	id    string
	major int
}

// Registry holds the factories of a plugin bundle, keyed by identifier
// and major version.
type Registry struct {
	mu        sync.RWMutex
	factories map[registryKey]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[registryKey]Factory)}
}

// Register adds f. Registering the same identifier and major version
// twice returns ErrDuplicatePlugin.
func (r *Registry) Register(f Factory) error {
	major, _ := f.Version()
	k := registryKey{f.Identifier(), major}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[k]; dup {
		return fmt.Errorf("%w: %s v%d", ErrDuplicatePlugin, k.id, k.major)
	}
	r.factories[k] = f
	return nil
}

// Lookup finds a factory. A major of 0 selects the highest version.
func (r *Registry) Lookup(id string, major int) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if major > 0 {
		if f, ok := r.factories[registryKey{id, major}]; ok {
			return f, nil
		}
		return nil, fmt.Errorf("%w: %s v%d", ErrPluginNotFound, id, major)
	}
	var best Factory
	bestMajor := -1
	for k, f := range r.factories {
		if k.id == id && k.major > bestMajor {
			best, bestMajor = f, k.major
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, id)
	}
	return best, nil
}

// Factories returns every factory sorted by identifier, then version.
func (r *Registry) Factories() []Factory {
	r.mu.RLock()
	out := make([]Factory, 0, len(r.factories))
	for _, f := range r.factories {
		out = append(out, f)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Identifier() != out[j].Identifier() {
			return out[i].Identifier() < out[j].Identifier()
		}
		mi, ni := out[i].Version()
		mj, nj := out[j].Version()
		if mi != mj {
			return mi < mj
		}
		return ni < nj
	})
	return out
}

// IDs returns the distinct plugin identifiers, sorted.
func (r *Registry) IDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, f := range r.Factories() {
		if !seen[f.Identifier()] {
			seen[f.Identifier()] = true
			ids = append(ids, f.Identifier())
		}
	}
	return ids
}

// Len returns the number of registered factories.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}
