package classify

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rowsOf copies X into one slice per row.
func rowsOf(X *mat.Dense) [][]float64 {
	if X == nil || X.IsEmpty() {
		return nil
	}
	r, _ := X.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, X)
	}
	return out
}

// fromRows builds a matrix from equal-length rows; nil for no rows.
func fromRows(rows [][]float64) *mat.Dense {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), c, data)
}

// trainingRows validates a design matrix against its targets.
func trainingRows(X *mat.Dense, y []float64) ([][]float64, error) {
	x := rowsOf(X)
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: empty training set", ErrInvalidInput)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows for %d targets", ErrLengthMismatch, len(x), len(y))
	}
	return x, nil
}

// predictRows validates X against the fitted width.
func predictRows(X *mat.Dense, width int) ([][]float64, error) {
	if width == 0 {
		return nil, fmt.Errorf("%w: model is not fitted", ErrInvalidState)
	}
	x := rowsOf(X)
	if len(x) > 0 && len(x[0]) != width {
		return nil, fmt.Errorf("%w: %d features, model expects %d", ErrInvalidInput, len(x[0]), width)
	}
	return x, nil
}

func hasNaN(X *mat.Dense) bool {
	for _, r := range rowsOf(X) {
		if floats.HasNaN(r) {
			return true
		}
	}
	return false
}

// uniqueSorted returns the distinct values of v in ascending order.
func uniqueSorted(v []float64) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, x := range v {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Float64s(out)
	return out
}

// majority returns the most frequent label; ties go to the smallest.
func majority(labels []float64, weights []float64) float64 {
	votes := map[float64]float64{}
	for i, l := range labels {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		votes[l] += w
	}
	best, bestVotes := math.NaN(), math.Inf(-1)
	for _, l := range uniqueSorted(labels) {
		if votes[l] > bestVotes {
			best, bestVotes = l, votes[l]
		}
	}
	return best
}

func integral(v []float64) bool {
	for _, x := range v {
		if x != math.Trunc(x) {
			return false
		}
	}
	return true
}

func argmax(v []float64) int {
	if len(v) == 0 {
		return -1
	}
	return floats.MaxIdx(v)
}
