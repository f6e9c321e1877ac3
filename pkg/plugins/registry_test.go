package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopFactory(host *Host) (Plugin, error) {
	return NewBase(host, nil)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("a", noopFactory))
	assert.True(t, r.Has("a"))
	assert.Equal(t, 1, r.Count())

	assert.Error(t, r.Register("a", noopFactory), "duplicate name")
	assert.Error(t, r.Register("", noopFactory), "empty name")
	assert.Error(t, r.Register("b", nil), "nil factory")
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_EntriesKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(name, noopFactory))
	}

	var names []string
	for _, e := range r.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", noopFactory))
	require.NoError(t, r.Register("b", noopFactory))

	require.NoError(t, r.Unregister("a"))
	assert.False(t, r.Has("a"))
	assert.Error(t, r.Unregister("a"))

	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Name)
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", noopFactory))

	r.Clear()
	assert.Zero(t, r.Count())
	assert.Empty(t, r.Entries())
}

func TestDefaultRegistry_RegisterPanics(t *testing.T) {
	name := "plugins-test-default"
	t.Cleanup(func() { _ = DefaultRegistry().Unregister(name) })

	assert.NotPanics(t, func() { Register(name, noopFactory) })
	assert.True(t, DefaultRegistry().Has(name))
	assert.Panics(t, func() { Register(name, noopFactory) })
	assert.Panics(t, func() { Register("plugins-test-nil", nil) })
}
