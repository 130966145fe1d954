package classify

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/eventcluster/internal/rng"
)

// KMeans is Lloyd's algorithm with k-means++ seeding. Fit ignores y.
type KMeans struct {
	NClusters int         `msgpack:"n_clusters"`
	MaxIter   int         `msgpack:"max_iter"`
	Tol       float64     `msgpack:"tol"`
	Seed      int64       `msgpack:"seed"`
	Centers   [][]float64 `msgpack:"centers"`
}

func newKMeans(h Hyper) (Model, error) {
	r := newHyperReader(h)
	m := &KMeans{
		NClusters: r.int("n_clusters", 8),
		MaxIter:   r.int("max_iter", 300),
		Tol:       r.float("tol", 1e-4),
		Seed:      int64(r.int("random_state", 0)),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	if m.NClusters < 1 || m.MaxIter < 1 {
		return nil, fmt.Errorf("%w: n_clusters %d, max_iter %d", ErrBadHyperparameter, m.NClusters, m.MaxIter)
	}
	return m, nil
}

// Fit places NClusters centers on the rows of X.
func (m *KMeans) Fit(X *mat.Dense, _ []float64) error {
	x := rowsOf(X)
	if len(x) < m.NClusters {
		return fmt.Errorf("%w: %d samples for %d clusters", ErrInvalidInput, len(x), m.NClusters)
	}
	m.Centers = m.seed(x)

	labels := make([]int, len(x))
	for it := 0; it < m.MaxIter; it++ {
		for i, row := range x {
			labels[i] = nearest(m.Centers, row)
		}
		next := make([][]float64, m.NClusters)
		counts := make([]float64, m.NClusters)
		for c := range next {
			next[c] = make([]float64, len(x[0]))
		}
		for i, row := range x {
			floats.Add(next[labels[i]], row)
			counts[labels[i]]++
		}
		shift := 0.0
		for c := range next {
			if counts[c] == 0 {
				copy(next[c], m.Centers[c])
				continue
			}
			floats.Scale(1/counts[c], next[c])
			d := floats.Distance(next[c], m.Centers[c], 2)
			shift += d * d
		}
		m.Centers = next
		if shift <= m.Tol {
			break
		}
	}
	return nil
}

// seed draws the initial centers with the k-means++ rule.
func (m *KMeans) seed(x [][]float64) [][]float64 {
	r := rng.New(m.Seed)
	centers := [][]float64{append([]float64(nil), x[r.Intn(len(x))]...)}
	d2 := make([]float64, len(x))
	for len(centers) < m.NClusters {
		for i, row := range x {
			d := floats.Distance(row, centers[nearest(centers, row)], 2)
			d2[i] = d * d
		}
		total := floats.Sum(d2)
		pick := -1
		if total > 0 {
			target := r.Float64() * total
			for i, v := range d2 {
				target -= v
				if target < 0 {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			pick = floats.MaxIdx(d2)
		}
		centers = append(centers, append([]float64(nil), x[pick]...))
	}
	return centers
}

// Predict returns the index of the nearest center.
func (m *KMeans) Predict(X *mat.Dense) ([]float64, error) {
	width := 0
	if len(m.Centers) > 0 {
		width = len(m.Centers[0])
	}
	x, err := predictRows(X, width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = float64(nearest(m.Centers, row))
	}
	return out, nil
}

func nearest(centers [][]float64, row []float64) int {
	best, bestD := 0, floats.Distance(row, centers[0], 2)
	for c := 1; c < len(centers); c++ {
		if d := floats.Distance(row, centers[c], 2); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}
