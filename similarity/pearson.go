package similarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/matrix"
)

// Pearson returns the pairwise Pearson correlation of the event traces.
//
// Equal-length traces give a Dense matrix holding only the lower triangle
// (upper part zero, diagonal one). Ragged traces fall back to an explicit
// pairwise loop and give a full symmetric Dense matrix; see raggedPearson.
func (e *Engine) Pearson(evs *events.Events) (matrix.DistanceMatrix, error) {
	tr, err := traces(evs)
	if err != nil {
		return nil, err
	}
	for i, t := range tr {
		if len(t) == 0 {
			return nil, fmt.Errorf("%w: row %d has an empty trace", ErrInvalidInput, i)
		}
	}

	return e.cached("pearson", []any{tr}, func() (matrix.DistanceMatrix, error) {
		var d *matrix.Dense
		if events.IsRagged(tr) {
			e.logger.Warnw("events are ragged (unequal length), using slow pairwise correlation", "events", len(tr))
			d = raggedPearson(tr)
		} else {
			d = densePearson(tr)
		}
		e.round(d.Values())
		return d, nil
	})
}

// densePearson stacks the traces as columns and keeps the lower triangle.
func densePearson(tr [][]float64) *matrix.Dense {
	n, t := len(tr), len(tr[0])
	x := mat.NewDense(t, n, nil)
	for j, s := range tr {
		x.SetCol(j, s)
	}
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, x, nil)

	out, _ := matrix.NewDense(n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			_ = out.Set(i, j, corr.At(i, j))
		}
	}
	out.SetTriangle(matrix.Lower)

	return out
}

// raggedPearson correlates every unordered pair once and mirrors it.
//
// For each pair both traces are mean-centred and cross-correlated in
// "valid" mode (every full-overlap lag); the maximum over lags is divided by
// max(len_a, len_b·std_a·std_b) with population standard deviations.
func raggedPearson(tr [][]float64) *matrix.Dense {
	n := len(tr)
	centred := make([][]float64, n)
	std := make([]float64, n)
	for i, s := range tr {
		mean, sd := stat.PopMeanStdDev(s, nil)
		c := make([]float64, len(s))
		copy(c, s)
		floats.AddConst(-mean, c)
		centred[i], std[i] = c, sd
	}

	out, _ := matrix.NewDense(n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a, b := centred[i], centred[j]
			c := maxValidLag(a, b) / math.Max(float64(len(a)), float64(len(b))*std[i]*std[j])
			_ = out.Set(i, j, c)
			_ = out.Set(j, i, c)
		}
	}

	return out
}

// maxValidLag is the maximum of the full-overlap cross-correlation.
func maxValidLag(a, b []float64) float64 {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	best := math.Inf(-1)
	for k := 0; k+len(short) <= len(long); k++ {
		if v := floats.Dot(short, long[k:k+len(short)]); v > best {
			best = v
		}
	}
	return best
}
