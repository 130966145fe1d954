// SPDX-License-Identifier: MIT

package matrix_test

import (
	"testing"

	"github.com/katalvlaran/eventcluster/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDense_SymmetricAtLower reads a lower-triangle matrix from both sides.
func TestDense_SymmetricAtLower(t *testing.T) {
	d, err := matrix.NewDenseFrom(3, []float64{
		1, 0, 0,
		4, 1, 0,
		5, 6, 1,
	}, matrix.Lower)
	require.NoError(t, err)

	raw, _ := d.At(0, 1)
	assert.Equal(t, 0.0, raw, "raw accessor exposes the empty triangle")

	v, err := matrix.SymmetricAt(d, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	v, _ = matrix.SymmetricAt(d, 1, 2)
	assert.Equal(t, 6.0, v)

	cond, err := matrix.Condensed(d)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, cond)
}

// TestDense_Mirror fills the empty triangle.
func TestDense_Mirror(t *testing.T) {
	d, err := matrix.NewDenseFrom(2, []float64{0, 0, 3, 0}, matrix.Lower)
	require.NoError(t, err)
	d.MirrorLower()
	assert.Equal(t, matrix.Full, d.Triangle())
	assert.Equal(t, []float64{0, 3, 3, 0}, d.Values())
}

// TestDense_Bounds checks index validation.
func TestDense_Bounds(t *testing.T) {
	d, err := matrix.NewDense(2)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Set(2, 0, 1), matrix.ErrOutOfRange)
	_, err = d.At(-1, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)

	_, err = matrix.NewDense(-1)
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	_, err = matrix.NewDenseRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrBadShape)
}

// TestMap_PreservesEncoding applies a transform to both encodings.
func TestMap_PreservesEncoding(t *testing.T) {
	c, _ := matrix.NewCompactFrom(2, []float64{2}, 0)
	out, err := matrix.Map(c, func(v float64) float64 { return v + 1 })
	require.NoError(t, err)
	assert.Equal(t, matrix.EncodingCompact, out.Encoding())
	v, _ := out.At(0, 0)
	assert.Equal(t, 1.0, v, "diagonal is transformed too")
	v, _ = out.At(1, 0)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, []float64{2}, c.Values(), "input untouched")
}

func TestSnapshot_RoundTrip(t *testing.T) {
	d, err := matrix.NewDenseFrom(2, []float64{1, 0, 0.5, 1}, matrix.Lower)
	require.NoError(t, err)
	s, err := matrix.Snap(d)
	require.NoError(t, err)
	back, err := s.Restore()
	require.NoError(t, err)
	assert.Equal(t, matrix.EncodingDense, back.Encoding())
	assert.Equal(t, matrix.Lower, back.(*matrix.Dense).Triangle())
	assert.Equal(t, d.Values(), back.Values())

	c, err := matrix.NewCompactFrom(3, []float64{1, 2, 3}, 7)
	require.NoError(t, err)
	s, err = matrix.Snap(c)
	require.NoError(t, err)
	c.Values()[0] = 99
	back, err = s.Restore()
	require.NoError(t, err)
	v, err := back.At(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	v, err = back.At(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "snapshot must not alias the source buffer")
}

func TestSnapshot_RestoreOwnsValues(t *testing.T) {
	s := matrix.Snapshot{N: 3, Encoding: matrix.EncodingCompact, Values: []float64{1, 2, 3}}
	a, err := s.Restore()
	require.NoError(t, err)
	b, err := s.Restore()
	require.NoError(t, err)

	a.Values()[0] = 42
	assert.Equal(t, []float64{1, 2, 3}, s.Values)
	assert.Equal(t, []float64{1, 2, 3}, b.Values())
}
