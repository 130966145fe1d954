package dtw

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// PairFunc computes the distance between series i and j.
type PairFunc func(i, j int) (float64, error)

// rowStart is the compact offset of the first pair (i, i+1) of row i.
// Valid for 0 <= i <= n.
func rowStart(n, i int) int {
	return n*i - i*(i+1)/2
}

// BlockLen returns the number of compact entries covered by rows [x0,x1).
func BlockLen(n, x0, x1 int) int {
	return rowStart(n, x1) - rowStart(n, x0)
}

// PairwiseBlock fills the compact upper-triangle entries of rows [x0,x1)
// for an n-series collection, in row-major (i<j) order. Rows run on up to
// GOMAXPROCS goroutines when parallel is set.
func PairwiseBlock(n, x0, x1 int, fn PairFunc, parallel bool) ([]float64, error) {
	if x0 < 0 || x1 > n || x0 > x1 {
		return nil, fmt.Errorf("dtw: block [%d,%d) of %d: %w", x0, x1, n, ErrBadInput)
	}
	base := rowStart(n, x0)
	out := make([]float64, BlockLen(n, x0, x1))

	fillRow := func(i int) error {
		off := rowStart(n, i) - base
		for j := i + 1; j < n; j++ {
			d, err := fn(i, j)
			if err != nil {
				return fmt.Errorf("dtw: pair (%d,%d): %w", i, j, err)
			}
			out[off+j-i-1] = d
		}
		return nil
	}

	if !parallel {
		for i := x0; i < x1; i++ {
			if err := fillRow(i); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := x0; i < x1; i++ {
		g.Go(func() error { return fillRow(i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DistanceMatrix returns the compact (upper triangle, row-major) DTW
// distance matrix of series.
func DistanceMatrix(series [][]float64, opts *Options, parallel bool) ([]float64, error) {
	return DistanceMatrixBlock(series, 0, len(series), opts, parallel)
}

// DistanceMatrixBlock computes the compact entries of rows [x0,x1) only.
// Concatenating consecutive blocks yields DistanceMatrix.
func DistanceMatrixBlock(series [][]float64, x0, x1 int, opts *Options, parallel bool) ([]float64, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	o.ReturnPath = false
	if o.MemoryMode == FullMatrix {
		o.MemoryMode = TwoRows
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	for i, s := range series {
		if len(s) == 0 {
			return nil, fmt.Errorf("dtw: series %d: %w", i, ErrEmptyInput)
		}
	}

	return PairwiseBlock(len(series), x0, x1, func(i, j int) (float64, error) {
		d, _, err := DTW(series[i], series[j], &o)
		return d, err
	}, parallel)
}

// MultiDistanceMatrix returns the compact DTW distance matrix of
// multivariate series (series[k][channel][t]).
func MultiDistanceMatrix(series [][][]float64, scheme Scheme, local LocalFunc, opts *Options, parallel bool) ([]float64, error) {
	return PairwiseBlock(len(series), 0, len(series), func(i, j int) (float64, error) {
		return DTWMulti(series[i], series[j], scheme, local, opts)
	}, parallel)
}
