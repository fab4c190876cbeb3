package capability

import (
	"fmt"
	"sort"
)

// Registry is the read-only catalogue of capabilities. It is built once at
// process start and shared across pipelines without locking.
type Registry struct {
	caps  map[string]Capability
	names []string
}

// NewRegistry builds a registry from the given capabilities. Duplicate or
// empty names are a bootstrap error.
func NewRegistry(caps ...Capability) (*Registry, error) {
	r := &Registry{caps: make(map[string]Capability, len(caps))}
	for _, c := range caps {
		name := c.Descriptor().Name
		if name == "" {
			return nil, fmt.Errorf("capability with empty name")
		}
		if _, exists := r.caps[name]; exists {
			return nil, fmt.Errorf("capability already registered: %s", name)
		}
		r.caps[name] = c
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the named capability, if registered.
func (r *Registry) Lookup(name string) (Capability, bool) {
	c, ok := r.caps[name]
	return c, ok
}

// Names returns all registered names in sorted order; the intent resolver
// embeds this catalogue in its instruction.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.caps)
}
