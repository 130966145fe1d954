package classify_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/eventcluster/classify"
	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/internal/log"
)

// column returns an n×1 embedding whose row i holds i.
func column(n int) *mat.Dense {
	X := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
	}
	return X
}

func traces(n int) *events.Events {
	tr := make([][]float64, n)
	for i := range tr {
		tr[i] = []float64{0, 1}
	}
	return events.FromTraces(tr)
}

func TestSplitDataset_Positional(t *testing.T) {
	d := classify.New(traces(10), classify.WithLogger(log.Nop()))
	labels := classify.Ints{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}
	require.NoError(t, d.SplitDataset(column(10), labels, classify.SplitOptions{}))

	s := d.Dataset()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, s.IdxTrain)
	assert.Equal(t, []int{8, 9}, s.IdxTest)
	assert.Equal(t, []float64{0, 1}, s.YTest)
	r, _ := s.XTrain.Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, classify.StateSplit, d.State())
}

func TestSplitDataset_Balance(t *testing.T) {
	d := classify.New(nil, classify.WithLogger(log.Nop()), classify.WithSeed(4))
	y := classify.Ints{0, 0, 0, 0, 0, 0, 1, 1, 1, 1}
	ids := []int{100, 101, 102, 103, 104, 105, 106, 107, 108, 109}
	require.NoError(t, d.SplitDataset(column(10), y, classify.SplitOptions{
		Indices:      ids,
		Fraction:     0.8,
		BalanceTrain: true,
		BalanceTest:  true,
	}))

	s := d.Dataset()
	assert.Equal(t, []float64{0, 0, 1, 1}, s.YTrain)
	require.Len(t, s.IdxTrain, 4)
	for k, id := range s.IdxTrain {
		assert.Equal(t, float64(id-100), s.XTrain.At(k, 0))
		assert.Equal(t, float64(y[id-100]), s.YTrain[k])
	}
	assert.ElementsMatch(t, []int{108, 109}, s.IdxTest)
}

func TestSplitDataset_Errors(t *testing.T) {
	d := classify.New(nil, classify.WithLogger(log.Nop()))

	err := d.SplitDataset(column(4), classify.Ints{0, 1, 0}, classify.SplitOptions{Indices: []int{0, 1, 2, 3}})
	assert.ErrorIs(t, err, classify.ErrLengthMismatch)

	err = d.SplitDataset(column(4), classify.Ints{0, 1, 0, 1}, classify.SplitOptions{})
	assert.ErrorIs(t, err, classify.ErrLengthMismatch, "no events and no indices")

	nan := column(4)
	nan.Set(2, 0, math.NaN())
	err = d.SplitDataset(nan, classify.Ints{0, 1, 0, 1}, classify.SplitOptions{Indices: []int{0, 1, 2, 3}})
	assert.ErrorIs(t, err, classify.ErrNaN)

	err = d.SplitDataset(column(4), classify.Ints{0, 1, 0, 1}, classify.SplitOptions{
		Indices: []int{0, 1, 2, 3}, Fraction: 1, BalanceTest: true,
	})
	assert.ErrorIs(t, err, classify.ErrBalanceInfeasible)

	err = d.SplitDataset(column(4), classify.Ints{0, 1, 0, 1}, classify.SplitOptions{
		Indices: []int{0, 1, 2, 3}, Normalization: classify.Normalization{"robust"},
	})
	assert.ErrorIs(t, err, classify.ErrUnknownNormalization)

	err = d.SplitDataset(column(4), classify.Column{Name: events.ColumnSubjectID}, classify.SplitOptions{})
	assert.ErrorIs(t, err, classify.ErrInvalidInput)
	assert.Equal(t, classify.StateUnsplit, d.State())
}

func TestSplitDataset_ColumnLabels(t *testing.T) {
	evs := events.New([]events.Event{
		{Index: 0, SubjectID: "b"},
		{Index: 1, SubjectID: "a"},
		{Index: 2, SubjectID: "b"},
		{Index: 3, SubjectID: "a"},
	})
	d := classify.New(evs, classify.WithLogger(log.Nop()))
	require.NoError(t, d.SplitDataset(column(4), classify.Column{Name: events.ColumnSubjectID},
		classify.SplitOptions{Fraction: 1}))
	assert.Equal(t, []float64{1, 0, 1, 0}, d.Dataset().YTrain)
	assert.Nil(t, d.Dataset().XTest)

	enc := &classify.LabelEncoder{Classes: []string{"a", "b", "c"}}
	require.NoError(t, d.SplitDataset(column(4), classify.Column{Name: events.ColumnSubjectID, Encoder: enc},
		classify.SplitOptions{Fraction: 1}))
	assert.Equal(t, []float64{1, 0, 1, 0}, d.Dataset().YTrain)

	err := d.SplitDataset(column(4), classify.Column{Name: "missing"}, classify.SplitOptions{})
	assert.ErrorIs(t, err, events.ErrUnknownColumn)
}

func TestLabelEncoder(t *testing.T) {
	enc := classify.NewLabelEncoder([]string{"wave", "blip", "wave", "arc"})
	assert.Equal(t, []string{"arc", "blip", "wave"}, enc.Classes)

	code, err := enc.Encode("wave")
	require.NoError(t, err)
	assert.Equal(t, 2.0, code)
	name, err := enc.Decode(1)
	require.NoError(t, err)
	assert.Equal(t, "blip", name)

	_, err = enc.Encode("spike")
	assert.ErrorIs(t, err, classify.ErrInvalidInput)
	_, err = enc.Decode(0.5)
	assert.ErrorIs(t, err, classify.ErrInvalidInput)
}

func TestDiscriminator_Lifecycle(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 4, 10, 11, 12})
	labels := classify.Bools{false, false, false, false, false, true, true, true}
	d := classify.New(nil, classify.WithLogger(log.Nop()))

	_, err := d.Predict(column(2), nil)
	assert.ErrorIs(t, err, classify.ErrInvalidState)
	_, err = d.Evaluate(classify.DefaultEvaluateOptions())
	assert.ErrorIs(t, err, classify.ErrInvalidState)

	m, err := d.TrainClassifier("DecisionTreeClassifier", nil, classify.TrainOptions{
		Embedding: X,
		Labels:    labels,
		Split:     classify.SplitOptions{Indices: []int{0, 1, 2, 3, 4, 5, 6, 7}, Fraction: 1},
	})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, classify.StateTrained, d.State())
	name, _ := d.Model()
	assert.Equal(t, "DecisionTreeClassifier", name)

	res, err := d.Evaluate(classify.DefaultEvaluateOptions())
	require.NoError(t, err)
	assert.Equal(t, classify.StateEvaluated, d.State())
	require.Contains(t, res, "train")
	assert.NotContains(t, res, "test")
	train := res["train"]
	assert.Equal(t, []float64{0, 1}, train.Labels)
	assert.Equal(t, []float64{5, 0, 0, 3}, train.Confusion.RawMatrix().Data)
	assert.Equal(t, 1.0, train.Scores[classify.ScoreAccuracy])

	pred, err := d.Predict(mat.NewDense(2, 1, []float64{-3, 20}), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, pred)

	require.NoError(t, d.SplitDataset(X, labels, classify.SplitOptions{Indices: []int{0, 1, 2, 3, 4, 5, 6, 7}}))
	assert.Equal(t, classify.StateSplit, d.State())
	_, m = d.Model()
	assert.Nil(t, m)
}

func TestEvaluate_Regression(t *testing.T) {
	X, y := plane()
	d := classify.New(nil, classify.WithLogger(log.Nop()))
	_, err := d.TrainClassifier("LinearRegression", nil, classify.TrainOptions{
		Embedding: X,
		Labels:    classify.Values(y),
		Split:     classify.SplitOptions{Indices: []int{0, 1, 2, 3, 4, 5}, Fraction: 1},
	})
	require.NoError(t, err)

	res, err := d.Evaluate(classify.EvaluateOptions{Regression: true})
	require.NoError(t, err)
	require.NotNil(t, res["train"].Score)
	assert.InDelta(t, 1.0, *res["train"].Score, 1e-9)
	assert.Nil(t, res["train"].Confusion)
}

func TestEvaluate_ThresholdsProbabilities(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	d := classify.New(nil, classify.WithLogger(log.Nop()))
	_, err := d.TrainClassifier("LinearRegression", nil, classify.TrainOptions{
		Embedding: X,
		Labels:    classify.Ints{0, 0, 1, 1},
		Split:     classify.SplitOptions{Indices: []int{0, 1, 2, 3}, Fraction: 1},
	})
	require.NoError(t, err)

	res, err := d.Evaluate(classify.DefaultEvaluateOptions())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, res["train"].Labels)
	assert.Equal(t, 1.0, res["train"].Scores[classify.ScoreAccuracy])
}

func TestSaveLoadModel(t *testing.T) {
	X, y := blobs()
	m, err := classify.Construct("NearestCentroid", nil)
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, y))

	dir := t.TempDir()
	require.NoError(t, classify.SaveModel(dir, "NearestCentroid", m))
	_, err = os.Stat(filepath.Join(dir, classify.ModelFile))
	require.NoError(t, err)

	name, loaded, err := classify.LoadModel(dir)
	require.NoError(t, err)
	assert.Equal(t, "NearestCentroid", name)
	assert.Equal(t, m, loaded)

	pred, err := loaded.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, pred)

	assert.ErrorIs(t, classify.SaveModel(dir, "NearestCentroid", m), classify.ErrFileExists)
}

func TestSaveLoadModel_Tree(t *testing.T) {
	X, y := plane()
	m, err := classify.Construct("DecisionTreeRegressor", classify.Hyper{"max_depth": 2})
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, y))

	path := filepath.Join(t.TempDir(), "tree.msgpack")
	require.NoError(t, classify.SaveModel(path, "DecisionTreeRegressor", m))
	_, loaded, err := classify.LoadModel(path)
	require.NoError(t, err)

	want, err := m.Predict(X)
	require.NoError(t, err)
	got, err := loaded.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
