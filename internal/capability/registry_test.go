package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCapability struct {
	name string
}

func (s *stubCapability) Execute(ctx context.Context, args map[string]any) (any, error) {
	return nil, nil
}

func (s *stubCapability) Descriptor() Descriptor {
	return Descriptor{Name: s.name}
}

func TestRegistryLookup(t *testing.T) {
	registry, err := NewRegistry(&stubCapability{name: "a"}, &stubCapability{name: "b"})
	require.NoError(t, err)

	got, ok := registry.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "a", got.Descriptor().Name)

	_, ok = registry.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry(&stubCapability{name: "dup"}, &stubCapability{name: "dup"})
	assert.Error(t, err)
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	_, err := NewRegistry(&stubCapability{name: ""})
	assert.Error(t, err)
}

func TestRegistryNamesAreSortedCopies(t *testing.T) {
	registry, err := NewRegistry(&stubCapability{name: "zeta"}, &stubCapability{name: "alpha"})
	require.NoError(t, err)

	names := registry.Names()
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	names[0] = "mutated"
	assert.Equal(t, []string{"alpha", "zeta"}, registry.Names())
	assert.Equal(t, 2, registry.Len())
}

func TestDescriptorIsPathParam(t *testing.T) {
	desc := Descriptor{Name: "x", PathParams: []string{"source", "output"}}
	assert.True(t, desc.IsPathParam("source"))
	assert.False(t, desc.IsPathParam("url"))
}
