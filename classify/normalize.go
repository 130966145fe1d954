package classify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Normalization steps, applied in order.
const (
	Standard = "standard" // z-score per column (population std)
	MinMax   = "min_max"  // (x-min)/(max-min) per column
	Mean     = "mean"     // subtract the column mean
	L2       = "l2"       // scale every row to unit length
)

// Normalization is an ordered list of steps.
type Normalization []string

// Normalize applies the steps of n to X in place. Constant columns (and
// zero rows for l2) are only shifted, never divided by zero.
func Normalize(X *mat.Dense, n Normalization) error {
	for _, step := range n {
		switch step {
		case Standard, MinMax, Mean, L2:
		default:
			return fmt.Errorf("%w %q: choose from %v", ErrUnknownNormalization, step, []string{Standard, MinMax, Mean, L2})
		}
	}
	if X == nil || X.IsEmpty() {
		return nil
	}
	r, c := X.Dims()
	col := make([]float64, r)
	for _, step := range n {
		if step == L2 {
			for i := 0; i < r; i++ {
				row := X.RawRowView(i)
				if norm := floats.Norm(row, 2); norm > 0 {
					floats.Scale(1/norm, row)
				}
			}
			continue
		}
		for j := 0; j < c; j++ {
			mat.Col(col, j, X)
			var shift, scale float64 = 0, 1
			switch step {
			case Standard:
				mean, std := stat.PopMeanStdDev(col, nil)
				shift = mean
				if std > 0 && !math.IsNaN(std) {
					scale = std
				}
			case MinMax:
				lo, hi := floats.Min(col), floats.Max(col)
				shift = lo
				if hi > lo {
					scale = hi - lo
				}
			case Mean:
				shift = stat.Mean(col, nil)
			}
			for i := range col {
				col[i] = (col[i] - shift) / scale
			}
			X.SetCol(j, col)
		}
	}
	return nil
}
