package dtw

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Dissimilarity names a local (per time step) distance between two
// observation vectors, used by multivariate DTW.
type Dissimilarity string

// Supported local dissimilarities.
const (
	SquareEuclidean Dissimilarity = "square_euclidean_distance"
	Gower           Dissimilarity = "gower"
	Norm1           Dissimilarity = "norm1"
	Norm2           Dissimilarity = "norm2"
	BrayCurtis      Dissimilarity = "braycurtis"
	Canberra        Dissimilarity = "canberra"
	Chebyshev       Dissimilarity = "chebyshev"
	Cityblock       Dissimilarity = "cityblock"
	Correlation     Dissimilarity = "correlation"
	Cosine          Dissimilarity = "cosine"
	EuclideanDist   Dissimilarity = "euclidean"
	JensenShannon   Dissimilarity = "jensenshannon"
	Minkowski       Dissimilarity = "minkowski"
	SqEuclidean     Dissimilarity = "sqeuclidean"
)

// LocalFunc is a local dissimilarity between two equal-length vectors.
type LocalFunc func(x, y []float64) float64

var locals = map[Dissimilarity]LocalFunc{
	SquareEuclidean: sqEuclidean,
	SqEuclidean:     sqEuclidean,
	Gower:           gower,
	Norm1:           func(x, y []float64) float64 { return floats.Distance(x, y, 1) },
	Cityblock:       func(x, y []float64) float64 { return floats.Distance(x, y, 1) },
	Norm2:           func(x, y []float64) float64 { return floats.Distance(x, y, 2) },
	EuclideanDist:   func(x, y []float64) float64 { return floats.Distance(x, y, 2) },
	Minkowski:       func(x, y []float64) float64 { return floats.Distance(x, y, 2) },
	Chebyshev:       func(x, y []float64) float64 { return floats.Distance(x, y, math.Inf(1)) },
	BrayCurtis:      brayCurtis,
	Canberra:        canberra,
	Cosine:          cosine,
	Correlation:     correlation,
	JensenShannon:   jensenShannon,
}

// ErrUnknownDissimilarity indicates an unsupported local dissimilarity name.
var ErrUnknownDissimilarity = errors.New("dtw: unknown local dissimilarity")

// Local resolves a dissimilarity name.
func Local(name Dissimilarity) (LocalFunc, error) {
	f, ok := locals[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (choose from %v)", ErrUnknownDissimilarity, name, Dissimilarities())
	}
	return f, nil
}

// Dissimilarities lists the supported names in sorted order.
func Dissimilarities() []Dissimilarity {
	out := make([]Dissimilarity, 0, len(locals))
	for k := range locals {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sqEuclidean(x, y []float64) float64 {
	var s float64
	for i := range x {
		d := x[i] - y[i]
		s += d * d
	}
	return s
}

// gower is the mean absolute difference (numeric attributes, unit range).
func gower(x, y []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Distance(x, y, 1) / float64(len(x))
}

func brayCurtis(x, y []float64) float64 {
	var num, den float64
	for i := range x {
		num += math.Abs(x[i] - y[i])
		den += math.Abs(x[i] + y[i])
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func canberra(x, y []float64) float64 {
	var s float64
	for i := range x {
		den := math.Abs(x[i]) + math.Abs(y[i])
		if den == 0 {
			continue
		}
		s += math.Abs(x[i]-y[i]) / den
	}
	return s
}

func cosine(x, y []float64) float64 {
	nx, ny := floats.Norm(x, 2), floats.Norm(y, 2)
	if nx == 0 && ny == 0 {
		return 0
	}
	if nx == 0 || ny == 0 {
		return 1
	}
	return 1 - floats.Dot(x, y)/(nx*ny)
}

func correlation(x, y []float64) float64 {
	cx := centered(x)
	cy := centered(y)
	return cosine(cx, cy)
}

func centered(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	mean := floats.Sum(x) / float64(len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}

// jensenShannon is the square root of the JS divergence of x and y
// normalized to probability vectors (natural log).
func jensenShannon(x, y []float64) float64 {
	sx, sy := floats.Sum(x), floats.Sum(y)
	if sx == 0 || sy == 0 {
		return 0
	}
	var js float64
	for i := range x {
		p, q := x[i]/sx, y[i]/sy
		m := (p + q) / 2
		js += relEntr(p, m) + relEntr(q, m)
	}
	if js < 0 {
		js = 0
	}
	return math.Sqrt(js / 2)
}

func relEntr(p, m float64) float64 {
	if p <= 0 || m <= 0 {
		return 0
	}
	return p * math.Log(p/m)
}
