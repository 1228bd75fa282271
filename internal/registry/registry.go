// Package registry holds the static mapping from logical remote names to
// their network-loadable module locators. The mapping is supplied by
// build-time configuration and is never mutated at runtime.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Descriptor identifies one remote module: where its entry manifest lives
// and which exposed export the shell should instantiate.
type Descriptor struct {
	// Name is the logical remote name, e.g. "userApp".
	Name string `json:"name" yaml:"name"`
	// Entry is the URL of the remote's entry manifest.
	Entry string `json:"entry" yaml:"entry"`
	// Expose is the exposed module path inside the manifest, e.g. "./UserApp".
	Expose string `json:"expose" yaml:"expose"`
	// Export is the named export to instantiate, e.g. "UserApp".
	Export string `json:"export" yaml:"export"`
}

// Validate reports whether the descriptor is complete enough to load.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("descriptor: name is required")
	}
	if strings.TrimSpace(d.Entry) == "" {
		return fmt.Errorf("descriptor %s: entry URL is required", d.Name)
	}
	if strings.TrimSpace(d.Expose) == "" {
		return fmt.Errorf("descriptor %s: expose path is required", d.Name)
	}
	if strings.TrimSpace(d.Export) == "" {
		return fmt.Errorf("descriptor %s: export name is required", d.Name)
	}
	return nil
}

// Registry is a read-only set of remote descriptors. Registration happens
// once during startup; afterwards the registry is safe for concurrent
// lookups without coordination.
type Registry struct {
	mu      sync.RWMutex
	remotes map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{remotes: make(map[string]Descriptor)}
}

// FromDescriptors builds a registry from a descriptor list.
// Invalid or duplicate descriptors are rejected.
func FromDescriptors(descriptors []Descriptor) (*Registry, error) {
	r := New()
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if err := r.register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a remote descriptor. Panics if the name is already taken —
// two remotes claiming the same name is a deployment bug.
func (r *Registry) Register(d Descriptor) {
	if err := d.Validate(); err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	if err := r.register(d); err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
}

func (r *Registry) register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.remotes[d.Name]; exists {
		return fmt.Errorf("remote %q already registered", d.Name)
	}
	r.remotes[d.Name] = d
	return nil
}

// Get returns the descriptor for a logical remote name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.remotes[name]
	return d, ok
}

// MustGet returns the descriptor or panics if the remote is unknown.
func (r *Registry) MustGet(name string) Descriptor {
	d, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("registry: remote %q not registered. Available: %v", name, r.List()))
	}
	return d
}

// List returns all registered remote names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.remotes))
	for name := range r.remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered remotes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.remotes)
}
