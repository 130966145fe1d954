package dtw_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/eventcluster/dtw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Dissimilarities(t *testing.T) {
	x := []float64{1, 0}
	y := []float64{0, 1}

	tests := []struct {
		name dtw.Dissimilarity
		want float64
	}{
		{dtw.Norm1, 2},
		{dtw.Cityblock, 2},
		{dtw.Norm2, math.Sqrt2},
		{dtw.EuclideanDist, math.Sqrt2},
		{dtw.Minkowski, math.Sqrt2},
		{dtw.SquareEuclidean, 2},
		{dtw.SqEuclidean, 2},
		{dtw.Chebyshev, 1},
		{dtw.BrayCurtis, 1},
		{dtw.Canberra, 2},
		{dtw.Cosine, 1},
		{dtw.Correlation, 2},
		{dtw.Gower, 1},
		{dtw.JensenShannon, math.Sqrt(math.Ln2)},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			f, err := dtw.Local(tt.name)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, f(x, y), 1e-12)
			assert.InDelta(t, 0.0, f(x, x), 1e-12)
		})
	}

	_, err := dtw.Local("hamming")
	assert.ErrorIs(t, err, dtw.ErrUnknownDissimilarity)
	assert.Len(t, dtw.Dissimilarities(), len(tests))
}

func TestDTWMulti_Schemes(t *testing.T) {
	a := [][]float64{{0, 1, 2, 1}, {1, 1, 0, 0}}
	b := [][]float64{{0, 1, 1, 2, 1}, {1, 1, 1, 0, 0}}

	for _, scheme := range []dtw.Scheme{dtw.Dependent, dtw.Independent} {
		d, err := dtw.DTWMulti(a, a, scheme, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d, "scheme %s", scheme)

		d, err = dtw.DTWMulti(a, b, scheme, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d, "stretched copy aligns for free under %s", scheme)
	}

	// a single channel reduces to the univariate absolute DTW
	l1, err := dtw.Local(dtw.Norm1)
	require.NoError(t, err)
	got, err := dtw.DTWMulti([][]float64{{1, 2, 3}}, [][]float64{{1, 2, 3, 4}}, dtw.Dependent, l1, nil)
	require.NoError(t, err)
	want, _, err := dtw.DTW([]float64{1, 2, 3}, []float64{1, 2, 3, 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDTWMulti_Errors(t *testing.T) {
	_, err := dtw.DTWMulti([][]float64{{1}}, [][]float64{{1}, {2}}, dtw.Dependent, nil, nil)
	assert.ErrorIs(t, err, dtw.ErrDimensionMismatch)

	_, err = dtw.DTWMulti([][]float64{{1, 2}, {1}}, [][]float64{{1}, {2}}, dtw.Dependent, nil, nil)
	assert.ErrorIs(t, err, dtw.ErrDimensionMismatch)

	_, err = dtw.DTWMulti([][]float64{{1}}, [][]float64{{1}}, "crosswise", nil, nil)
	assert.ErrorIs(t, err, dtw.ErrBadInput)

	_, err = dtw.DTWMulti(nil, [][]float64{{1}}, dtw.Dependent, nil, nil)
	assert.ErrorIs(t, err, dtw.ErrEmptyInput)
}

func TestMultiDistanceMatrix(t *testing.T) {
	series := [][][]float64{
		{{0, 1, 0}},
		{{0, 1, 1, 0}},
		{{5, 5, 5}},
	}
	out, err := dtw.MultiDistanceMatrix(series, dtw.Dependent, nil, nil, true)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 0.0, out[0])
	assert.Greater(t, out[1], 0.0)
	assert.Greater(t, out[2], 0.0)
}
