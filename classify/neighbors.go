package classify

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// KNeighbors predicts from the k nearest training rows (Euclidean).
// With distance weights an exact match outvotes every other neighbour.
type KNeighbors struct {
	Classifier bool        `msgpack:"classifier"`
	NNeighbors int         `msgpack:"n_neighbors"`
	Weights    string      `msgpack:"weights"` // uniform | distance
	X          [][]float64 `msgpack:"x"`
	Y          []float64   `msgpack:"y"`
}

func newKNeighbors(classifier bool) Constructor {
	return func(h Hyper) (Model, error) {
		r := newHyperReader(h)
		m := &KNeighbors{
			Classifier: classifier,
			NNeighbors: r.int("n_neighbors", 5),
			Weights:    r.string("weights", "uniform", "uniform", "distance"),
		}
		if err := r.done(); err != nil {
			return nil, err
		}
		if m.NNeighbors < 1 {
			return nil, fmt.Errorf("%w: n_neighbors %d", ErrBadHyperparameter, m.NNeighbors)
		}
		return m, nil
	}
}

// Fit stores the training set.
func (m *KNeighbors) Fit(X *mat.Dense, y []float64) error {
	x, err := trainingRows(X, y)
	if err != nil {
		return err
	}
	m.X, m.Y = x, append([]float64(nil), y...)
	return nil
}

// Predict votes (classifier) or averages (regressor) over the neighbours.
func (m *KNeighbors) Predict(X *mat.Dense) ([]float64, error) {
	width := 0
	if len(m.X) > 0 {
		width = len(m.X[0])
	}
	x, err := predictRows(X, width)
	if err != nil {
		return nil, err
	}
	k := m.NNeighbors
	if k > len(m.X) {
		k = len(m.X)
	}

	out := make([]float64, len(x))
	order := make([]int, len(m.X))
	dist := make([]float64, len(m.X))
	for i, row := range x {
		for j, xj := range m.X {
			order[j] = j
			dist[j] = floats.Distance(row, xj, 2)
		}
		sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] < dist[order[b]] })

		labels := make([]float64, k)
		weights := make([]float64, k)
		exact := false
		for n := 0; n < k; n++ {
			j := order[n]
			labels[n] = m.Y[j]
			weights[n] = 1
			if dist[j] == 0 {
				exact = true
			}
		}
		if m.Weights == "distance" {
			for n := 0; n < k; n++ {
				d := dist[order[n]]
				switch {
				case exact && d == 0:
					weights[n] = 1
				case exact:
					weights[n] = 0
				default:
					weights[n] = 1 / d
				}
			}
		}

		if m.Classifier {
			out[i] = majority(labels, weights)
		} else {
			out[i] = stat.Mean(labels, weights)
		}
	}
	return out, nil
}

// NearestCentroid predicts the class whose mean training row is closest.
type NearestCentroid struct {
	Classes   []float64   `msgpack:"classes"`
	Centroids [][]float64 `msgpack:"centroids"`
}

func newNearestCentroid(h Hyper) (Model, error) {
	r := newHyperReader(h)
	if err := r.done(); err != nil {
		return nil, err
	}
	return &NearestCentroid{}, nil
}

// Fit computes one centroid per class.
func (m *NearestCentroid) Fit(X *mat.Dense, y []float64) error {
	x, err := trainingRows(X, y)
	if err != nil {
		return err
	}
	m.Classes = uniqueSorted(y)
	class := classIndex(m.Classes)
	m.Centroids = make([][]float64, len(m.Classes))
	counts := make([]float64, len(m.Classes))
	for c := range m.Centroids {
		m.Centroids[c] = make([]float64, len(x[0]))
	}
	for i, row := range x {
		c := class[y[i]]
		floats.Add(m.Centroids[c], row)
		counts[c]++
	}
	for c := range m.Centroids {
		floats.Scale(1/counts[c], m.Centroids[c])
	}
	return nil
}

// Predict returns the class of the nearest centroid.
func (m *NearestCentroid) Predict(X *mat.Dense) ([]float64, error) {
	width := 0
	if len(m.Centroids) > 0 {
		width = len(m.Centroids[0])
	}
	x, err := predictRows(X, width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	d := make([]float64, len(m.Centroids))
	for i, row := range x {
		for c, ctr := range m.Centroids {
			d[c] = floats.Distance(row, ctr, 2)
		}
		out[i] = m.Classes[floats.MinIdx(d)]
	}
	return out, nil
}
