package dtw_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/eventcluster/dtw"
	"github.com/katalvlaran/eventcluster/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDTW_OptionErrors covers input and option validation.
func TestDTW_OptionErrors(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []float64
		mutate func(o *dtw.Options)
		want   error
	}{
		{"empty a", nil, []float64{1}, func(*dtw.Options) {}, dtw.ErrEmptyInput},
		{"empty b", []float64{1}, []float64{}, func(*dtw.Options) {}, dtw.ErrEmptyInput},
		{"window below -1", []float64{1}, []float64{1}, func(o *dtw.Options) { o.Window = -2 }, dtw.ErrBadInput},
		{"flat itakura", []float64{1}, []float64{1}, func(o *dtw.Options) { o.ItakuraMaxSlope = 1 }, dtw.ErrBadInput},
		{"band and itakura", []float64{1}, []float64{1}, func(o *dtw.Options) { o.Window = 2; o.ItakuraMaxSlope = 2 }, dtw.ErrBadInput},
		{"negative psi", []float64{1}, []float64{1}, func(o *dtw.Options) { o.Psi = -1 }, dtw.ErrBadInput},
		{"path without matrix", []float64{1, 2}, []float64{1, 2}, func(o *dtw.Options) { o.ReturnPath = true }, dtw.ErrPathNeedsMatrix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := dtw.DefaultOptions()
			tt.mutate(&opts)
			_, _, err := dtw.DTW(tt.a, tt.b, &opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestDTW_StretchedTraceAlignsForFree checks that a trace with a repeated
// sample aligns with zero cost and yields the expected path.
func TestDTW_StretchedTraceAlignsForFree(t *testing.T) {
	opts := dtw.DefaultOptions()
	opts.ReturnPath = true
	opts.MemoryMode = dtw.FullMatrix

	dist, path, err := dtw.DTW([]float64{1, 2, 3}, []float64{1, 2, 2, 3}, &opts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, dist)
	assert.Equal(t, []dtw.Coord{{I: 0, J: 0}, {I: 1, J: 1}, {I: 1, J: 2}, {I: 2, J: 3}}, path)
}

// TestDTW_IdenticalTraces verifies zero distance and no path by default.
func TestDTW_IdenticalTraces(t *testing.T) {
	dist, path, err := dtw.DTW([]float64{0, 1, 2}, []float64{0, 1, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, dist)
	assert.Nil(t, path)
}

// TestDTW_Window checks the diagonal band and the unconstrained default.
func TestDTW_Window(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 2, 3, 4}

	opts := dtw.DefaultOptions()
	opts.Window = 0
	dist, _, err := dtw.DTW(a, b, &opts)
	require.NoError(t, err)
	assert.True(t, math.IsInf(dist, 1), "diagonal band cannot align unequal lengths")

	opts.Window = -1
	dist, _, err = dtw.DTW(a, b, &opts)
	require.NoError(t, err)
	assert.Equal(t, 1.0, dist)
}

// TestDTW_SlopePenalty ensures one forced stretch costs exactly the penalty.
func TestDTW_SlopePenalty(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 1, 2, 3}
	opts := dtw.DefaultOptions()

	d0, _, err := dtw.DTW(a, b, &opts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d0)

	opts.SlopePenalty = 1
	d1, _, err := dtw.DTW(a, b, &opts)
	require.NoError(t, err)
	assert.Equal(t, 1.0, d1)
}

// TestDTW_MemoryModesAgree compares every memory mode and metric.
func TestDTW_MemoryModesAgree(t *testing.T) {
	a := []float64{0, 1, 2, 3, 2.5, 0.5}
	b := []float64{0, 1, 1, 2, 3, 1}
	for _, metric := range []dtw.Metric{dtw.Absolute, dtw.Euclidean} {
		for _, psi := range []int{0, 2} {
			ref := dtw.DefaultOptions()
			ref.MemoryMode = dtw.FullMatrix
			ref.Metric = metric
			ref.Psi = psi
			want, _, err := dtw.DTW(a, b, &ref)
			require.NoError(t, err)

			for _, mode := range []dtw.MemoryMode{dtw.TwoRows, dtw.NoMemory} {
				opts := ref
				opts.MemoryMode = mode
				got, path, err := dtw.DTW(a, b, &opts)
				require.NoError(t, err)
				assert.InDelta(t, want, got, 1e-12, "metric=%d psi=%d mode=%d", metric, psi, mode)
				assert.Nil(t, path)
			}
		}
	}
}

// TestDTW_EuclideanMetric checks the square-rooted accumulated cost.
func TestDTW_EuclideanMetric(t *testing.T) {
	opts := dtw.DefaultOptions()
	opts.Metric = dtw.Euclidean

	dist, _, err := dtw.DTW([]float64{0, 0}, []float64{3, 4}, &opts)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, dist, 1e-12)
}

// TestDTW_PsiSkipsLeadingSamples checks the free start of psi relaxation.
func TestDTW_PsiSkipsLeadingSamples(t *testing.T) {
	a := []float64{0, 0, 1, 2, 3}
	b := []float64{1, 2, 3}

	opts := dtw.DefaultOptions()
	strict, _, err := dtw.DTW(a, b, &opts)
	require.NoError(t, err)
	assert.Greater(t, strict, 0.0)

	opts.Psi = 2
	opts.MemoryMode = dtw.FullMatrix
	opts.ReturnPath = true
	relaxed, path, err := dtw.DTW(a, b, &opts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, relaxed)
	assert.Equal(t, []dtw.Coord{{I: 2, J: 0}, {I: 3, J: 1}, {I: 4, J: 2}}, path)
}

// TestDTW_ItakuraNeverBeatsUnconstrained checks the parallelogram only
// removes alignments.
func TestDTW_ItakuraNeverBeatsUnconstrained(t *testing.T) {
	a := []float64{0, 0, 0, 1, 5, 1, 0, 0}
	b := []float64{0, 1, 5, 1, 0, 0, 0, 0}

	free, _, err := dtw.DTW(a, b, nil)
	require.NoError(t, err)

	opts := dtw.DefaultOptions()
	opts.ItakuraMaxSlope = 2
	constrained, _, err := dtw.DTW(a, b, &opts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, constrained, free)

	same, _, err := dtw.DTW(a, a, &opts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, same, "the diagonal is always admissible")
}

// TestDistanceMatrix_BlocksConcatenate checks the compact layout and that
// row blocks reproduce the full matrix.
func TestDistanceMatrix_BlocksConcatenate(t *testing.T) {
	series := [][]float64{
		{0, 1, 2, 1},
		{0, 1, 1, 2, 1},
		{3, 3, 3},
		{1, 0, 1},
		{2, 4, 2, 0},
	}
	n := len(series)

	full, err := dtw.DistanceMatrix(series, nil, false)
	require.NoError(t, err)
	require.Len(t, full, matrix.CompactLen(n))

	par, err := dtw.DistanceMatrix(series, nil, true)
	require.NoError(t, err)
	assert.Equal(t, full, par)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			want, _, err := dtw.DTW(series[i], series[j], nil)
			require.NoError(t, err)
			assert.Equal(t, want, full[matrix.CompactIndex(n, i, j)], "pair (%d,%d)", i, j)
		}
	}

	var joined []float64
	for _, blk := range [][2]int{{0, 2}, {2, 3}, {3, 5}} {
		part, err := dtw.DistanceMatrixBlock(series, blk[0], blk[1], nil, true)
		require.NoError(t, err)
		assert.Len(t, part, dtw.BlockLen(n, blk[0], blk[1]))
		joined = append(joined, part...)
	}
	assert.Equal(t, full, joined)

	_, err = dtw.DistanceMatrixBlock(series, 3, 9, nil, false)
	assert.ErrorIs(t, err, dtw.ErrBadInput)
	_, err = dtw.DistanceMatrix([][]float64{{1}, {}}, nil, false)
	assert.ErrorIs(t, err, dtw.ErrEmptyInput)
}
