// SPDX-License-Identifier: MIT

package matrix_test

import (
	"os"
	"testing"

	"github.com/katalvlaran/eventcluster/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompactIndex_RoundTrip checks that every unordered pair maps to a unique
// flat index and CompactPair recovers it.
func TestCompactIndex_RoundTrip(t *testing.T) {
	for _, n := range []int{2, 3, 4, 7, 50} {
		seen := make(map[int]bool)
		for a := 0; a < n; a++ {
			for b := a + 1; b < n; b++ {
				k := matrix.CompactIndex(n, a, b)
				assert.False(t, seen[k], "n=%d index %d reused", n, k)
				seen[k] = true
				assert.Equal(t, k, matrix.CompactIndex(n, b, a), "index must be order independent")

				ga, gb := matrix.CompactPair(n, k)
				assert.Equal(t, [2]int{a, b}, [2]int{ga, gb}, "n=%d k=%d", n, k)
			}
		}
		assert.Len(t, seen, matrix.CompactLen(n))
	}
}

// TestCompactIndex_Order verifies the row-major upper triangle layout.
func TestCompactIndex_Order(t *testing.T) {
	want := [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	for k, p := range want {
		assert.Equal(t, k, matrix.CompactIndex(4, p[0], p[1]))
	}
}

// TestCompact_AtSymmetricWithDiagonal checks the accessor contract.
func TestCompact_AtSymmetricWithDiagonal(t *testing.T) {
	c, err := matrix.NewCompactFrom(3, []float64{1, 2, 3}, 0)
	require.NoError(t, err)

	v, err := c.At(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = c.At(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = c.At(3, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)

	_, err = matrix.NewCompactFrom(3, []float64{1, 2}, 0)
	assert.ErrorIs(t, err, matrix.ErrBadShape)
}

// TestCompact_ToDense expands into a symmetric dense matrix.
func TestCompact_ToDense(t *testing.T) {
	c, err := matrix.NewCompactFrom(3, []float64{1, 2, 3}, 9)
	require.NoError(t, err)

	d := c.ToDense()
	assert.Equal(t, []float64{
		9, 1, 2,
		1, 9, 3,
		2, 3, 9,
	}, d.Values())
}

// TestMappedCompact_WriteFlushClose ensures the mapped buffer is usable and
// its backing file disappears on Close.
func TestMappedCompact_WriteFlushClose(t *testing.T) {
	dir := t.TempDir()
	c, err := matrix.NewMappedCompact(5, 0, dir)
	if err == matrix.ErrMmapUnsupported {
		t.Skip("mmap not supported")
	}
	require.NoError(t, err)
	assert.True(t, c.Mapped())

	for k := range c.Values() {
		c.Values()[k] = float64(k)
	}
	require.NoError(t, c.Flush())

	v, err := c.At(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "second Close is a no-op")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file must be removed")

	_, err = c.At(0, 1)
	assert.ErrorIs(t, err, matrix.ErrClosed)
}
