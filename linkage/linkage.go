package linkage

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/eventcluster/matrix"
)

// Method is an agglomeration rule.
type Method string

// Supported methods.
const (
	Single   Method = "single"
	Complete Method = "complete"
	Average  Method = "average"
	Weighted Method = "weighted"
	Centroid Method = "centroid"
	Median   Method = "median"
	Ward     Method = "ward"
)

// Methods lists the supported methods.
func Methods() []Method {
	return []Method{Single, Complete, Average, Weighted, Centroid, Median, Ward}
}

// squared reports methods whose update rule works on squared distances.
func (m Method) squared() bool {
	return m == Centroid || m == Median || m == Ward
}

// Metric selects how the input matrix becomes pairwise distances.
type Metric string

const (
	// Euclidean treats each matrix row as an observation vector and
	// clusters on the Euclidean distance between rows.
	Euclidean Metric = "euclidean"

	// Precomputed uses the matrix values as the distances.
	Precomputed Metric = "precomputed"
)

// Merge is one agglomeration step: clusters A < B joined at Distance into a
// cluster of Size events. Ids below N are events, N+k is the cluster
// created by step k.
type Merge struct {
	A        int     `msgpack:"a"`
	B        int     `msgpack:"b"`
	Distance float64 `msgpack:"distance"`
	Size     int     `msgpack:"size"`
}

// Matrix is a linkage: N-1 merges ordered by distance.
type Matrix []Merge

// Leaves returns N, the number of clustered events.
func (z Matrix) Leaves() int { return len(z) + 1 }

// Heights returns the merge distances.
func (z Matrix) Heights() []float64 {
	out := make([]float64, len(z))
	for i, m := range z {
		out[i] = m.Distance
	}
	return out
}

// Build runs agglomerative clustering over D. Ties are broken by the lowest
// cluster slot, so identical input gives an identical linkage.
func Build(D matrix.DistanceMatrix, method Method, metric Metric) (Matrix, error) {
	if D == nil || D.Size() == 0 {
		return nil, fmt.Errorf("%w: empty distance matrix", ErrInvalidInput)
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("%w %q: choose one of %v", ErrUnknownMethod, method, Methods())
	}

	var (
		dist []float64
		err  error
	)
	switch metric {
	case Precomputed:
		dist, err = matrix.Condensed(D)
	case Euclidean, "":
		dist, err = rowDistances(D)
	default:
		return nil, fmt.Errorf("%w %q: choose %q or %q", ErrUnknownMetric, metric, Euclidean, Precomputed)
	}
	if err != nil {
		return nil, err
	}
	for k, v := range dist {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			a, b := matrix.CompactPair(D.Size(), k)
			return nil, fmt.Errorf("%w: non-finite distance at (%d,%d)", ErrInvalidInput, a, b)
		}
	}

	return agglomerate(D.Size(), dist, method), nil
}

func validMethod(m Method) bool {
	for _, v := range Methods() {
		if v == m {
			return true
		}
	}
	return false
}

// rowDistances is the condensed Euclidean distance between full rows.
func rowDistances(D matrix.DistanceMatrix) ([]float64, error) {
	rows, err := matrix.Rows(D)
	if err != nil {
		return nil, err
	}
	n := len(rows)
	out := make([]float64, matrix.CompactLen(n))
	k := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out[k] = floats.Distance(rows[i], rows[j], 2)
			k++
		}
	}
	return out, nil
}

// step is one merge recorded by representative leaves.
type step struct {
	a, b   int
	height float64
}

// agglomerate performs the merges on the condensed distances dist (consumed).
//
// Every active slot keeps its nearest neighbour among higher slots; the
// global minimum is the smallest cached row minimum. A merged cluster takes
// the lower slot. Distances are updated with the Lance–Williams formula of
// the method; centroid, median and ward run on squared distances.
func agglomerate(n int, dist []float64, method Method) Matrix {
	if n < 2 {
		return Matrix{}
	}
	if method.squared() {
		for i, v := range dist {
			dist[i] = v * v
		}
	}
	at := func(i, j int) float64 { return dist[matrix.CompactIndex(n, i, j)] }
	set := func(i, j int, v float64) { dist[matrix.CompactIndex(n, i, j)] = v }

	active := make([]bool, n)
	size := make([]int, n)
	nn := make([]int, n)
	nnd := make([]float64, n)
	for i := range active {
		active[i] = true
		size[i] = 1
	}
	nearest := func(i int) {
		nn[i], nnd[i] = -1, math.Inf(1)
		for j := i + 1; j < n; j++ {
			if active[j] {
				if d := at(i, j); d < nnd[i] {
					nn[i], nnd[i] = j, d
				}
			}
		}
	}
	for i := 0; i < n-1; i++ {
		nearest(i)
	}

	steps := make([]step, 0, n-1)
	for len(steps) < n-1 {
		i := -1
		for k := 0; k < n-1; k++ {
			if active[k] && nn[k] >= 0 && (i < 0 || nnd[k] < nnd[i]) {
				i = k
			}
		}
		j, dij := nn[i], nnd[i]
		ni, nj := float64(size[i]), float64(size[j])

		h := dij
		if method.squared() {
			h = math.Sqrt(dij)
		}
		steps = append(steps, step{a: i, b: j, height: h})

		for k := 0; k < n; k++ {
			if !active[k] || k == i || k == j {
				continue
			}
			dik, djk := at(i, k), at(j, k)
			nk := float64(size[k])
			var v float64
			switch method {
			case Single:
				v = math.Min(dik, djk)
			case Complete:
				v = math.Max(dik, djk)
			case Average:
				v = (ni*dik + nj*djk) / (ni + nj)
			case Weighted:
				v = (dik + djk) / 2
			case Centroid:
				v = (ni*dik+nj*djk)/(ni+nj) - ni*nj*dij/((ni+nj)*(ni+nj))
			case Median:
				v = dik/2 + djk/2 - dij/4
			case Ward:
				v = ((ni+nk)*dik + (nj+nk)*djk - nk*dij) / (ni + nj + nk)
			}
			set(i, k, v)
		}
		active[j] = false
		size[i] += size[j]

		nearest(i)
		for k := 0; k < j; k++ {
			if !active[k] || k == i {
				continue
			}
			switch {
			case nn[k] == i || nn[k] == j:
				nearest(k)
			case k < i:
				if d := at(k, i); d < nnd[k] || (d == nnd[k] && i < nn[k]) {
					nn[k], nnd[k] = i, d
				}
			}
		}
	}

	return dendrogram(n, steps)
}

// dendrogram sorts the steps by height (stable) and relabels the clusters
// in that order with a union-find over representative leaves.
func dendrogram(n int, steps []step) Matrix {
	sort.SliceStable(steps, func(a, b int) bool { return steps[a].height < steps[b].height })

	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	sizes := make([]int, 2*n-1)
	for i := 0; i < n; i++ {
		sizes[i] = 1
	}

	z := make(Matrix, len(steps))
	for k, s := range steps {
		a, b := find(s.a), find(s.b)
		if a > b {
			a, b = b, a
		}
		id := n + k
		parent[a], parent[b] = id, id
		sizes[id] = sizes[a] + sizes[b]
		z[k] = Merge{A: a, B: b, Distance: s.height, Size: sizes[id]}
	}
	return z
}
