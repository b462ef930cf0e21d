package registry_test

import (
	"testing"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, names ...string) *registry.Registry {
	t.Helper()
	exercises := make([]domain.Exercise, len(names))
	for i, n := range names {
		exercises[i] = domain.Exercise{Name: n, Sequence: i}
	}
	r, err := registry.New(exercises...)
	require.NoError(t, err)
	return r
}

func TestNew_OrdersBySequence(t *testing.T) {
	r, err := registry.New(
		domain.Exercise{Name: "c", Sequence: 3},
		domain.Exercise{Name: "a", Sequence: 1},
		domain.Exercise{Name: "b1", Sequence: 2},
		domain.Exercise{Name: "b2", Sequence: 2},
	)
	require.NoError(t, err)

	var names []string
	for _, ex := range r.All() {
		names = append(names, ex.Name)
	}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, names)

	_, idx, err := r.Find("b2")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestNew_RejectsDuplicatesAndEmptyNames(t *testing.T) {
	_, err := registry.New(domain.Exercise{Name: "a"}, domain.Exercise{Name: "a", Sequence: 1})
	assert.Error(t, err)

	_, err = registry.New(domain.Exercise{})
	assert.Error(t, err)
}

func TestNew_CopiesDefinitions(t *testing.T) {
	defs := []domain.Exercise{{Name: "a"}}
	r, err := registry.New(defs...)
	require.NoError(t, err)

	require.NoError(t, r.MarkComplete("a"))
	assert.False(t, defs[0].Complete, "registry must not mutate the caller's definitions")
}

func TestFind_NotFound(t *testing.T) {
	r := newRegistry(t, "a")
	_, idx, err := r.Find("missing")
	assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
	assert.Equal(t, registry.NoActive, idx)
	assert.False(t, domain.IsRejection(err))
}

func TestAll_IsStable(t *testing.T) {
	r := newRegistry(t, "a", "b", "c")
	first := r.All()
	second := r.All()
	assert.Equal(t, first, second)

	// Mutating the returned slice does not reorder the registry.
	first[0], first[1] = first[1], first[0]
	assert.Equal(t, "a", r.All()[0].Name)
}

func TestActive(t *testing.T) {
	r := newRegistry(t, "a", "b", "c")

	idx, ex, err := r.Active()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "a", ex.Name)

	require.NoError(t, r.MarkComplete("a"))
	idx, ex, err = r.Active()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "b", ex.Name)

	// Completing out of order leaves the lowest incomplete active.
	require.NoError(t, r.MarkComplete("c"))
	idx, _, err = r.Active()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestIsAllComplete(t *testing.T) {
	r := newRegistry(t, "a", "b", "c")
	require.NoError(t, r.MarkComplete("a"))
	require.NoError(t, r.MarkComplete("b"))
	assert.False(t, r.IsAllComplete())

	require.NoError(t, r.MarkComplete("c"))
	assert.True(t, r.IsAllComplete())

	idx, ex, err := r.Active()
	assert.ErrorIs(t, err, domain.ErrAllComplete)
	assert.Nil(t, ex)
	assert.Equal(t, registry.NoActive, idx)
}

func TestReset(t *testing.T) {
	r := newRegistry(t, "a", "b")
	require.NoError(t, r.MarkComplete("a"))
	require.NoError(t, r.MarkComplete("b"))

	assert.Equal(t, 0, r.Reset())
	for _, ex := range r.All() {
		assert.False(t, ex.Complete)
	}

	// Idempotent.
	assert.Equal(t, 0, r.Reset())
	assert.Empty(t, r.Completed())
}

func TestReset_Empty(t *testing.T) {
	r, err := registry.New()
	require.NoError(t, err)
	assert.Equal(t, registry.NoActive, r.Reset())
	assert.True(t, r.IsAllComplete())
}

func TestCompletedAndRestore(t *testing.T) {
	r := newRegistry(t, "a", "b", "c")
	require.NoError(t, r.MarkComplete("c"))
	require.NoError(t, r.MarkComplete("a"))
	assert.Equal(t, []string{"a", "c"}, r.Completed())

	other := newRegistry(t, "a", "b", "c")
	unknown := other.Restore([]string{"a", "c", "gone"})
	assert.Equal(t, []string{"gone"}, unknown)
	assert.Equal(t, []string{"a", "c"}, other.Completed())

	// Restore replaces, it does not merge.
	other.Restore([]string{"b"})
	assert.Equal(t, []string{"b"}, other.Completed())
}
