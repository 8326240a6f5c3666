package tool

import (
	"fmt"
	"sync"
)

// StaticRegistry is a map-backed Registry populated at construction or via
// Register. It is safe for concurrent access; registration during active
// dispatches is safe but not recommended.
type StaticRegistry struct {
	mu     sync.RWMutex
	byName map[string]Descriptor
	order  []string
}

// Compile-time assertion.
var _ Registry = (*StaticRegistry)(nil)

// NewStaticRegistry constructs a registry seeded with the given descriptors.
func NewStaticRegistry(descriptors ...Descriptor) (*StaticRegistry, error) {
	r := &StaticRegistry{byName: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustStaticRegistry is NewStaticRegistry that panics on invalid descriptors,
// for wiring done at program start.
func MustStaticRegistry(descriptors ...Descriptor) *StaticRegistry {
	r, err := NewStaticRegistry(descriptors...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a descriptor, rejecting invalid shapes and duplicate names.
func (r *StaticRegistry) Register(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("tool %q already registered", d.Name)
	}

	r.byName[d.Name] = d
	r.order = append(r.order, d.Name)

	return nil
}

// Resolve implements Registry.
func (r *StaticRegistry) Resolve(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Descriptors implements Registry, returning descriptors in registration
// order so tool schemas are presented to the model deterministically.
func (r *StaticRegistry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
