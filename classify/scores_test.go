package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/eventcluster/classify"
)

func TestComputeScores_Classification(t *testing.T) {
	s, err := classify.ComputeScores([]float64{0, 0, 1, 1}, []float64{0, 1, 1, 1}, classify.Classification)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, s[classify.ScoreAccuracy], 1e-12)
	assert.InDelta(t, 5.0/6, s[classify.ScorePrecision], 1e-12)
	assert.InDelta(t, 0.75, s[classify.ScoreRecall], 1e-12)
	assert.InDelta(t, 11.0/15, s[classify.ScoreF1], 1e-12)
}

func TestComputeScores_Clustering(t *testing.T) {
	t.Run("permutation", func(t *testing.T) {
		s, err := classify.ComputeScores([]float64{0, 0, 1, 1, 2, 2}, []float64{1, 1, 2, 2, 0, 0}, classify.Clustering)
		require.NoError(t, err)
		for _, k := range []string{classify.ScoreAMI, classify.ScoreARI, classify.ScoreHomogeneity, classify.ScoreRand} {
			assert.InDelta(t, 1.0, s[k], 1e-9, k)
		}
	})

	t.Run("single cluster", func(t *testing.T) {
		s, err := classify.ComputeScores([]float64{0, 0, 1, 1}, []float64{0, 0, 0, 0}, classify.Clustering)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, s[classify.ScoreHomogeneity], 1e-12)
		assert.InDelta(t, 0.0, s[classify.ScoreARI], 1e-12)
		assert.InDelta(t, 1.0/3, s[classify.ScoreRand], 1e-12)
		assert.InDelta(t, 0.0, s[classify.ScoreAMI], 1e-12)
	})
}

func TestComputeScores_Errors(t *testing.T) {
	_, err := classify.ComputeScores([]float64{0}, []float64{0, 1}, classify.Classification)
	assert.ErrorIs(t, err, classify.ErrLengthMismatch)
	_, err = classify.ComputeScores([]float64{0}, []float64{0}, classify.Scoring("regression"))
	assert.ErrorIs(t, err, classify.ErrUnknownScoring)
}

func TestConfusionMatrix(t *testing.T) {
	truth, pred := []float64{0, 0, 1, 1}, []float64{0, 1, 1, 1}

	cm, labels, err := classify.ConfusionMatrix(truth, pred, classify.NormalizeNone)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, labels)
	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 1, 0, 2}), cm))

	cm, _, err = classify.ConfusionMatrix(truth, pred, classify.NormalizeTrue)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{0.5, 0.5, 0, 1}), cm, 1e-12))

	cm, _, err = classify.ConfusionMatrix(truth, pred, classify.NormalizePred)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{1, 1.0 / 3, 0, 2.0 / 3}), cm, 1e-12))

	cm, _, err = classify.ConfusionMatrix(truth, pred, classify.NormalizeAll)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{0.25, 0.25, 0, 0.5}), cm, 1e-12))

	_, _, err = classify.ConfusionMatrix(truth, pred, "rows")
	assert.ErrorIs(t, err, classify.ErrInvalidInput)
}

func TestNormalize(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 10, 3, 10})
	require.NoError(t, classify.Normalize(X, classify.Normalization{classify.Standard}))
	assert.Equal(t, []float64{-1, 0, 1, 0}, X.RawMatrix().Data)

	X = mat.NewDense(3, 1, []float64{2, 4, 6})
	require.NoError(t, classify.Normalize(X, classify.Normalization{classify.MinMax}))
	assert.Equal(t, []float64{0, 0.5, 1}, X.RawMatrix().Data)

	X = mat.NewDense(3, 1, []float64{2, 4, 6})
	require.NoError(t, classify.Normalize(X, classify.Normalization{classify.Mean}))
	assert.Equal(t, []float64{-2, 0, 2}, X.RawMatrix().Data)

	X = mat.NewDense(2, 2, []float64{3, 4, 0, 0})
	require.NoError(t, classify.Normalize(X, classify.Normalization{classify.L2}))
	assert.InDeltaSlice(t, []float64{0.6, 0.8, 0, 0}, X.RawMatrix().Data, 1e-12)

	assert.ErrorIs(t, classify.Normalize(X, classify.Normalization{"max_abs"}), classify.ErrUnknownNormalization)
}
