package linkage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/katalvlaran/eventcluster/linkage"
)

// singleZ is the single linkage of points 0, 1, 3, 7.
var singleZ = linkage.Matrix{
	{A: 0, B: 1, Distance: 1, Size: 2},
	{A: 2, B: 4, Distance: 2, Size: 3},
	{A: 3, B: 5, Distance: 4, Size: 4},
}

func TestFlat_Criteria(t *testing.T) {
	tests := []struct {
		name      string
		cutoff    float64
		criterion linkage.Criterion
		opts      linkage.CutOptions
		want      linkage.Assignment
	}{
		{"distance", 1.5, linkage.Distance, linkage.DefaultCutOptions(), linkage.Assignment{3, 3, 2, 1}},
		{"distance all", 10, linkage.Distance, linkage.DefaultCutOptions(), linkage.Assignment{1, 1, 1, 1}},
		{"distance none", 0.5, linkage.Distance, linkage.DefaultCutOptions(), linkage.Assignment{3, 4, 2, 1}},
		{"maxclust 2", 2, linkage.MaxClust, linkage.DefaultCutOptions(), linkage.Assignment{2, 2, 2, 1}},
		{"maxclust n", 4, linkage.MaxClust, linkage.DefaultCutOptions(), linkage.Assignment{3, 4, 2, 1}},
		{"monocrit", 2, linkage.Monocrit, linkage.CutOptions{Monocrit: []float64{0, 3, 5}}, linkage.Assignment{3, 3, 2, 1}},
		{"maxclust monocrit", 1, linkage.MaxClustMonocrit, linkage.DefaultCutOptions(), linkage.Assignment{1, 1, 1, 1}},
		{"inconsistent", 1, linkage.Inconsistent, linkage.DefaultCutOptions(), linkage.Assignment{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := linkage.Flat(singleZ, tt.cutoff, tt.criterion, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlat_Errors(t *testing.T) {
	_, err := linkage.Flat(singleZ, 1, "elbow", linkage.DefaultCutOptions())
	assert.ErrorIs(t, err, linkage.ErrUnknownCriterion)

	_, err = linkage.Flat(singleZ, 1, linkage.Monocrit, linkage.CutOptions{Monocrit: []float64{1}})
	assert.ErrorIs(t, err, linkage.ErrInvalidInput)
}

func TestInconsistencyOf(t *testing.T) {
	r, err := linkage.InconsistencyOf(singleZ, 2)
	require.NoError(t, err)
	require.Len(t, r, 3)

	assert.Equal(t, 1, r[0].Count)
	assert.Equal(t, 0.0, r[0].Coefficient)

	assert.Equal(t, 2, r[1].Count)
	assert.InDelta(t, 1.5, r[1].Mean, 1e-12)
	assert.InDelta(t, 0.7071067811865476, r[1].Coefficient, 1e-12)

	assert.Equal(t, 2, r[2].Count, "depth 2 stops above the grandchild link")
	assert.InDelta(t, 3.0, r[2].Mean, 1e-12)

	_, err = linkage.InconsistencyOf(singleZ, 0)
	assert.ErrorIs(t, err, linkage.ErrInvalidInput)
}

func TestCut_SizeFilters(t *testing.T) {
	l := linkage.New(linkage.WithLogger(zap.NewNop().Sugar()))

	labels, sizes, err := l.Cut(singleZ, 1.5, linkage.Distance, linkage.DefaultCutOptions())
	require.NoError(t, err)
	assert.Equal(t, linkage.Assignment{3, 3, 2, 1}, labels)
	assert.Equal(t, []linkage.ClusterSize{{Cluster: 1, Count: 1}, {Cluster: 2, Count: 1}, {Cluster: 3, Count: 2}}, sizes)

	tests := []struct {
		name string
		opts linkage.CutOptions
		want []linkage.ClusterSize
	}{
		{"absolute min", linkage.CutOptions{MinClusterSize: 2}, []linkage.ClusterSize{{Cluster: 3, Count: 2}}},
		{"fraction min", linkage.CutOptions{MinClusterSize: 0.5}, []linkage.ClusterSize{{Cluster: 3, Count: 2}}},
		{"negative min ignored", linkage.CutOptions{MinClusterSize: -3}, sizes},
		{"max", linkage.CutOptions{MinClusterSize: 1, MaxClusterSize: 1}, []linkage.ClusterSize{{Cluster: 1, Count: 1}, {Cluster: 2, Count: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, filtered, err := l.Cut(singleZ, 1.5, linkage.Distance, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, labels, got, "labels survive filtering")
			assert.Equal(t, tt.want, filtered)
		})
	}
}

func TestRetentionFraction(t *testing.T) {
	got, err := linkage.RetentionFraction(singleZ, []float64{1.5, 5}, []float64{0, 1}, linkage.Distance)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{100, 100}, {50, 100}}, got)

	minSizes, cutoffs := linkage.DefaultRetentionGrid()
	assert.Len(t, minSizes, 20)
	assert.InDelta(t, 2.0, minSizes[0], 1e-9)
	assert.InDelta(t, 10.0, cutoffs[19], 1e-9)
}
