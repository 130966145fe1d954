package similarity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/eventcluster/matrix"
)

// Method names a distance-to-similarity transform.
type Method string

// Supported transforms. All are monotonically decreasing in the distance.
const (
	Exponential Method = "exponential" // S = exp(-D/r), r = max(D)
	Gaussian    Method = "gaussian"    // S = exp(-D²/r²), r = max(D)
	Reciprocal  Method = "reciprocal"  // S = 1/(r + a·D), r = 1, a = 1
	Reverse     Method = "reverse"     // S = (r - D)/r, r = min(D) + max(D)
)

// Methods lists the supported transforms.
func Methods() []Method { return []Method{Exponential, Gaussian, Reciprocal, Reverse} }

// SimilarityOptions selects and tunes the transform. Nil fields take the
// method defaults.
//
// CoverQuantile q solves r (or a for reciprocal) so that the similarity at
// the q-quantile of the distances equals CoverTarget (default 1-q).
type SimilarityOptions struct {
	Method        Method   `yaml:"method"`
	R             *float64 `yaml:"r,omitempty"`
	A             *float64 `yaml:"a,omitempty"`
	CoverQuantile *float64 `yaml:"cover_quantile,omitempty"`
	CoverTarget   *float64 `yaml:"cover_target,omitempty"`
}

// TransformParams are the resolved transform parameters.
type TransformParams struct {
	Method Method
	R      float64
	A      float64
}

// Apply maps one distance to a similarity.
func (p TransformParams) Apply(d float64) float64 {
	switch p.Method {
	case Exponential:
		return math.Exp(-d / p.R)
	case Gaussian:
		return math.Exp(-(d * d) / (p.R * p.R))
	case Reciprocal:
		return 1 / (p.R + d*p.A)
	default:
		return (p.R - d) / p.R
	}
}

// FitTransform resolves the transform parameters over the distances in values.
func FitTransform(values []float64, o SimilarityOptions) (TransformParams, error) {
	method := Method(strings.ToLower(string(o.Method)))
	if method == "" {
		method = Exponential
	}
	p := TransformParams{Method: method, R: math.NaN(), A: math.NaN()}
	if o.R != nil {
		p.R = *o.R
	}
	if o.A != nil {
		p.A = *o.A
	}

	var q, target float64
	cover := o.CoverQuantile != nil
	if cover {
		q = *o.CoverQuantile
		if q < 0 || q > 1 {
			return p, fmt.Errorf("%w: cover quantile %v outside [0,1]", ErrInvalidInput, q)
		}
		target = 1 - q
		if o.CoverTarget != nil {
			target = *o.CoverTarget
		}
	}
	if len(values) == 0 && (o.R == nil || cover) {
		return p, fmt.Errorf("%w: empty distance matrix", ErrInvalidInput)
	}

	switch method {
	case Exponential:
		if o.R == nil {
			if cover {
				p.R = -quantile(values, q) / math.Log(target)
			} else {
				p.R = floats.Max(values)
			}
		}
	case Gaussian:
		if o.R == nil {
			if cover {
				qv := quantile(values, q)
				p.R = math.Sqrt(-(qv * qv) / math.Log(target))
			} else {
				p.R = floats.Max(values)
			}
		}
	case Reciprocal:
		if o.R == nil {
			p.R = 1
		}
		if o.A == nil {
			if cover {
				p.A = (1 - target*p.R) / (target * quantile(values, q))
			} else {
				p.A = 1
			}
		}
	case Reverse:
		if o.R == nil {
			p.R = floats.Min(values) + floats.Max(values)
		}
	default:
		return p, fmt.Errorf("%w %q: choose one of %v", ErrUnknownMethod, o.Method, Methods())
	}

	return p, nil
}

// DistanceToSimilarity transforms D into a similarity matrix of the same
// encoding. D is left untouched.
func (e *Engine) DistanceToSimilarity(D matrix.DistanceMatrix, o SimilarityOptions) (matrix.DistanceMatrix, TransformParams, error) {
	if D == nil {
		return nil, TransformParams{}, fmt.Errorf("%w: nil matrix", ErrInvalidInput)
	}
	p, err := FitTransform(D.Values(), o)
	if err != nil {
		return nil, p, err
	}
	S, err := matrix.Map(D, p.Apply)
	if err != nil {
		return nil, p, err
	}
	e.round(S.Values())

	return S, p, nil
}

// quantile is the linearly interpolated q-quantile (positions (n-1)·q).
func quantile(values []float64, q float64) float64 {
	x := append([]float64(nil), values...)
	sort.Float64s(x)
	h := float64(len(x)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(x)-1 {
		return x[len(x)-1]
	}
	return x[lo] + (h-float64(lo))*(x[lo+1]-x[lo])
}

// Histogram counts the values of m in bins equally spaced over
// [start, stop]; values outside the range are ignored and stop falls in the
// last bin. With density the counts are normalized to integrate to one.
func Histogram(m matrix.DistanceMatrix, start, stop float64, bins int, density bool) ([]float64, error) {
	if m == nil || bins < 1 || !(stop > start) {
		return nil, fmt.Errorf("%w: histogram range [%v,%v] bins=%d", ErrInvalidInput, start, stop, bins)
	}
	x := make([]float64, 0, len(m.Values()))
	for _, v := range m.Values() {
		if v >= start && v <= stop {
			x = append(x, v)
		}
	}
	sort.Float64s(x)

	dividers := floats.Span(make([]float64, bins+1), start, stop)
	dividers[bins] = math.Nextafter(stop, math.Inf(1))
	counts := stat.Histogram(nil, dividers, x, nil)

	if density && len(x) > 0 {
		width := (stop - start) / float64(bins)
		floats.Scale(1/(float64(len(x))*width), counts)
	}
	return counts, nil
}
