package dtw_test

import (
	"testing"

	"github.com/katalvlaran/eventcluster/dtw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBA_SingletonIsItsOwnBarycenter(t *testing.T) {
	in := []float64{1, 4, 2}
	res, err := dtw.DBA([][]float64{in}, dtw.DefaultDBAOptions())
	require.NoError(t, err)
	assert.Equal(t, in, res.Barycenter)
	assert.Equal(t, 0, res.Iterations)
	assert.True(t, res.Converged)

	res.Barycenter[0] = 9
	assert.Equal(t, 1.0, in[0], "barycenter must not alias the input")
}

func TestDBA_AveragesAlignedPeaks(t *testing.T) {
	res, err := dtw.DBA([][]float64{{0, 2, 0}, {0, 4, 0}}, dtw.DefaultDBAOptions())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 3, 0}, res.Barycenter, 1e-12)
	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.Iterations)
}

func TestDBA_IdenticalMembers(t *testing.T) {
	tr := []float64{0, 1, 3, 1, 0}
	seqs := make([][]float64, 12)
	for i := range seqs {
		seqs[i] = tr
	}
	res, err := dtw.DBA(seqs, dtw.DefaultDBAOptions())
	require.NoError(t, err)
	assert.Equal(t, tr, res.Barycenter)
	assert.Equal(t, 1, res.Iterations)
}

func TestDBA_Errors(t *testing.T) {
	_, err := dtw.DBA(nil, dtw.DefaultDBAOptions())
	assert.ErrorIs(t, err, dtw.ErrEmptyInput)

	_, err = dtw.DBA([][]float64{{1}, {}}, dtw.DefaultDBAOptions())
	assert.ErrorIs(t, err, dtw.ErrEmptyInput)

	opts := dtw.DefaultDBAOptions()
	opts.Threshold = -1
	_, err = dtw.DBA([][]float64{{1}, {2}}, opts)
	assert.ErrorIs(t, err, dtw.ErrBadInput)
}
