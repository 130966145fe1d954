package rng_test

import (
	"sort"
	"testing"

	"github.com/katalvlaran/eventcluster/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoice_DeterministicAndDistinct(t *testing.T) {
	pool := rng.Range(20)

	a, err := rng.Choice(pool, 7, rng.New(42))
	require.NoError(t, err)
	b, err := rng.Choice(pool, 7, rng.New(42))
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must give the same draw")

	seen := map[int]bool{}
	for _, v := range a {
		assert.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
	assert.Equal(t, rng.Range(20), pool, "pool must not be mutated")
}

func TestChoice_BadSize(t *testing.T) {
	_, err := rng.Choice([]int{1, 2}, 3, nil)
	assert.ErrorIs(t, err, rng.ErrSampleSize)
	_, err = rng.Choice([]int{1, 2}, -1, nil)
	assert.ErrorIs(t, err, rng.ErrSampleSize)
}

func TestShuffle_IsPermutation(t *testing.T) {
	a := rng.Range(50)
	rng.Shuffle(a, rng.Derive(rng.New(7), 3))
	sorted := append([]int(nil), a...)
	sort.Ints(sorted)
	assert.Equal(t, rng.Range(50), sorted)
}

func TestNew_ZeroSeedIsDefault(t *testing.T) {
	assert.Equal(t, rng.New(rng.DefaultSeed).Int63(), rng.New(0).Int63())
}
