package algorithm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/me/godp/pkg/model"
)

// Factory constructs a fresh Algorithm instance. Every task gets its own
// instance; algorithms are never shared across tasks.
type Factory func() Algorithm

// Registry maps algorithm type names to their factories. Constructed
// explicitly and injected; there is no global instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry creates a Registry with the built-in algorithms
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("StatisticalAnalysis", func() Algorithm { return NewStatistical() })
	_ = r.Register("KMeansClustering", func() Algorithm { return NewKMeans() })
	_ = r.Register("TextAnalysis", func() Algorithm { return NewTextAnalysis() })
	return r
}

// Register adds a factory under the given type name. Registering a name
// twice is a hard error surfaced to the caller.
func (r *Registry) Register(typeName string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[typeName]; exists {
		return model.NewConflictError(fmt.Sprintf("algorithm type already registered: %s", typeName))
	}
	r.factories[typeName] = factory
	return nil
}

// Unregister removes a type name. Unknown names are a no-op.
func (r *Registry) Unregister(typeName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, typeName)
}

// New constructs an Algorithm of the given registered type.
func (r *Registry) New(typeName string) (Algorithm, error) {
	r.mu.RLock()
	factory, ok := r.factories[typeName]
	r.mu.RUnlock()

	if !ok {
		return nil, model.NewNotFoundError("algorithm type", typeName)
	}
	return factory(), nil
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
