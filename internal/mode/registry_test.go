package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/api"
)

func TestGetReturnsSingletonController(t *testing.T) {
	r := newTestRegistry(t)
	registerFake(t, r, &fakeMode{id: "discovery"})

	first, err := r.Get("discovery")
	require.NoError(t, err)
	second, err := r.Get("discovery")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGetUnknownMode(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get("nonsense")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	r := newTestRegistry(t)
	registerFake(t, r, &fakeMode{id: "discovery"})

	err := r.Register(Descriptor{ID: "discovery", Enabled: true, New: func() Mode { return &fakeMode{id: "discovery"} }})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestRegistrationValidation(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Register(Descriptor{ID: "", New: func() Mode { return &fakeMode{} }})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))

	err = r.Register(Descriptor{ID: "discovery"})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestFrozenRegistryRejectsRegistration(t *testing.T) {
	r := newTestRegistry(t)
	registerFake(t, r, &fakeMode{id: "discovery"})
	r.Freeze()

	err := r.Register(Descriptor{ID: "planning", Enabled: true, New: func() Mode { return &fakeMode{id: "planning"} }})
	require.ErrorIs(t, err, api.ErrRegistryFrozen)

	// Lookups and construction still work after freezing.
	assert.True(t, r.Has("discovery"))
	_, err = r.Get("discovery")
	require.NoError(t, err)
}

func TestDescriptorsInCompositionOrder(t *testing.T) {
	r := newTestRegistry(t)
	registerFake(t, r, &fakeMode{id: "planning"}, func(d *Descriptor) {
		d.LoadPriority = 20
		d.Dependencies = []string{"discovery"}
	})
	registerFake(t, r, &fakeMode{id: "discovery"}, func(d *Descriptor) { d.LoadPriority = 10 })

	assert.Equal(t, []string{"discovery", "planning"}, r.IDs())

	descriptors := r.Descriptors()
	require.Len(t, descriptors, 2)
	assert.Equal(t, "discovery", descriptors[0].ID)
	assert.Equal(t, "planning", descriptors[1].ID)
}

func TestMissingDependencies(t *testing.T) {
	r := newTestRegistry(t)
	registerFake(t, r, &fakeMode{id: "planning"}, func(d *Descriptor) {
		d.Dependencies = []string{"discovery"}
	})

	assert.Equal(t, []string{"discovery"}, r.MissingDependencies("planning"))

	registerFake(t, r, &fakeMode{id: "discovery"})
	assert.Empty(t, r.MissingDependencies("planning"))
}
