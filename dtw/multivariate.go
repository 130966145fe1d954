package dtw

import "math"

// Scheme selects how multivariate series are aligned.
type Scheme string

const (
	// Dependent warps all channels together; the local cost compares whole
	// observation vectors.
	Dependent Scheme = "dependent"

	// Independent warps each channel separately and sums the distances.
	Independent Scheme = "independent"
)

// DTWMulti aligns two multivariate series laid out channel-major
// (a[channel][t]). Every channel of a series must have the same length and
// both series the same channel count. The accumulated local cost is returned
// as is; opts.Metric is not applied. A nil local uses the Euclidean norm.
func DTWMulti(a, b [][]float64, scheme Scheme, local LocalFunc, opts *Options) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyInput
	}
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	n, err := channelLen(a)
	if err != nil {
		return 0, err
	}
	m, err := channelLen(b)
	if err != nil {
		return 0, err
	}
	if local == nil {
		local = locals[EuclideanDist]
	}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	o.ReturnPath = false
	if o.MemoryMode == FullMatrix {
		o.MemoryMode = TwoRows
	}
	o.Metric = Absolute
	if err := o.validate(); err != nil {
		return 0, err
	}

	switch scheme {
	case Independent:
		var total float64
		x, y := make([]float64, 1), make([]float64, 1)
		for c := range a {
			ac, bc := a[c], b[c]
			total += rollingDTW(n, m, func(i, j int) float64 {
				x[0], y[0] = ac[i], bc[j]
				return local(x, y)
			}, &o)
			if math.IsInf(total, 1) {
				break
			}
		}
		return total, nil
	case Dependent:
		d := len(a)
		x, y := make([]float64, d), make([]float64, d)
		return rollingDTW(n, m, func(i, j int) float64 {
			for c := 0; c < d; c++ {
				x[c], y[c] = a[c][i], b[c][j]
			}
			return local(x, y)
		}, &o), nil
	default:
		return 0, ErrBadInput
	}
}

// channelLen returns the common channel length of s.
func channelLen(s [][]float64) (int, error) {
	n := len(s[0])
	if n == 0 {
		return 0, ErrEmptyInput
	}
	for _, ch := range s[1:] {
		if len(ch) != n {
			return 0, ErrDimensionMismatch
		}
	}
	return n, nil
}
