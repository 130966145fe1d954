package linkage

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DefaultRetentionGrid returns 20 log-spaced minimum sizes in [2, 512] and
// 20 log-spaced cutoffs in [0.1, 10].
func DefaultRetentionGrid() (minSizes, cutoffs []float64) {
	minSizes = floats.LogSpan(make([]float64, 20), 2, 512)
	cutoffs = floats.LogSpan(make([]float64, 20), 0.1, 10)
	return minSizes, cutoffs
}

// RetentionFraction returns, for every minimum size (rows) and cutoff
// (columns), the percentage of events that fall into clusters larger than
// the minimum size.
func RetentionFraction(z Matrix, cutoffs, minSizes []float64, criterion Criterion) ([][]float64, error) {
	if err := criterion.Validate(); err != nil {
		return nil, err
	}
	if len(z) == 0 {
		return nil, fmt.Errorf("%w: empty linkage", ErrInvalidInput)
	}
	n := float64(z.Leaves())

	sizes := make([][]ClusterSize, len(cutoffs))
	for j, c := range cutoffs {
		labels, err := Flat(z, c, criterion, DefaultCutOptions())
		if err != nil {
			return nil, err
		}
		sizes[j] = Sizes(labels)
	}

	out := make([][]float64, len(minSizes))
	for i, mc := range minSizes {
		out[i] = make([]float64, len(cutoffs))
		for j := range cutoffs {
			kept := 0
			for _, cs := range sizes[j] {
				if float64(cs.Count) > mc {
					kept += cs.Count
				}
			}
			out[i][j] = float64(kept) / n * 100
		}
	}
	return out, nil
}
