package linkage

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Criterion selects how a linkage is cut into flat clusters.
type Criterion string

// Supported criteria.
const (
	// Distance: cophenetic distance inside a cluster is at most the cutoff.
	Distance Criterion = "distance"
	// Inconsistent: inconsistency of every link inside a cluster is at most the cutoff.
	Inconsistent Criterion = "inconsistent"
	// Monocrit: the monotone criterion of every cluster node is at most the cutoff.
	Monocrit Criterion = "monocrit"
	// MaxClust: at most cutoff clusters, smallest cophenetic threshold.
	MaxClust Criterion = "maxclust"
	// MaxClustMonocrit: at most cutoff clusters, smallest monocrit threshold.
	MaxClustMonocrit Criterion = "maxclust_monocrit"
)

// Criteria lists the supported criteria.
func Criteria() []Criterion {
	return []Criterion{Inconsistent, Distance, Monocrit, MaxClust, MaxClustMonocrit}
}

// Validate returns ErrUnknownCriterion for unsupported names.
func (c Criterion) Validate() error {
	for _, v := range Criteria() {
		if v == c {
			return nil
		}
	}
	return fmt.Errorf("%w %q: choose one of %v", ErrUnknownCriterion, c, Criteria())
}

// Assignment holds the 1-based flat cluster label of every event row.
type Assignment []int

// ClusterSize is one row of the cluster size table.
type ClusterSize struct {
	Cluster int `msgpack:"cluster"`
	Count   int `msgpack:"count"`
}

// CutOptions tunes Cut.
//
//   - MinClusterSize: clusters below it leave the size table. Values in
//     (0,1) are a fraction of all events, values <= 1 keep every cluster,
//     negative values are ignored with a warning.
//   - MaxClusterSize: clusters above it leave the size table; 0 disables.
//   - Depth:          inconsistency depth (default 2).
//   - Monocrit:       per-merge monotone criterion for the monocrit
//     criteria; nil uses the merge distances.
type CutOptions struct {
	MinClusterSize float64   `yaml:"min_cluster_size"`
	MaxClusterSize int       `yaml:"max_cluster_size"`
	Depth          int       `yaml:"depth"`
	Monocrit       []float64 `yaml:"-"`
}

// DefaultCutOptions keeps every cluster.
func DefaultCutOptions() CutOptions {
	return CutOptions{MinClusterSize: 1, Depth: 2}
}

// Flat cuts z into flat clusters without size filtering.
func Flat(z Matrix, cutoff float64, criterion Criterion, o CutOptions) (Assignment, error) {
	if err := criterion.Validate(); err != nil {
		return nil, err
	}
	n := z.Leaves()
	if n == 1 {
		return Assignment{1}, nil
	}

	var mc []float64
	switch criterion {
	case Distance, MaxClust:
		mc = maxOverSubtree(z, z.Heights())
	case Inconsistent:
		depth := o.Depth
		if depth <= 0 {
			depth = 2
		}
		r, err := InconsistencyOf(z, depth)
		if err != nil {
			return nil, err
		}
		coef := make([]float64, len(r))
		for i, s := range r {
			coef[i] = s.Coefficient
		}
		mc = maxOverSubtree(z, coef)
	case Monocrit, MaxClustMonocrit:
		mc = o.Monocrit
		if mc == nil {
			mc = z.Heights()
		}
		if len(mc) != len(z) {
			return nil, fmt.Errorf("%w: monocrit has %d values for %d merges", ErrInvalidInput, len(mc), len(z))
		}
	}

	if criterion == MaxClust || criterion == MaxClustMonocrit {
		return maxclust(z, mc, int(cutoff)), nil
	}
	return assign(z, mc, cutoff), nil
}

// maxOverSubtree lifts per-merge values to the maximum over each subtree.
func maxOverSubtree(z Matrix, v []float64) []float64 {
	n := z.Leaves()
	out := make([]float64, len(z))
	for k, m := range z {
		best := v[k]
		if m.A >= n {
			best = math.Max(best, out[m.A-n])
		}
		if m.B >= n {
			best = math.Max(best, out[m.B-n])
		}
		out[k] = best
	}
	return out
}

// assign labels the leaves, walking from the root left child first; a node
// with mc <= t becomes one cluster, leaves reached otherwise are singletons.
func assign(z Matrix, mc []float64, t float64) Assignment {
	n := z.Leaves()
	labels := make(Assignment, n)
	next := 0

	var fill func(node, label int)
	fill = func(node, label int) {
		if node < n {
			labels[node] = label
			return
		}
		fill(z[node-n].A, label)
		fill(z[node-n].B, label)
	}
	var walk func(node int)
	walk = func(node int) {
		if node < n {
			next++
			labels[node] = next
			return
		}
		if mc[node-n] <= t {
			next++
			fill(node, next)
			return
		}
		walk(z[node-n].A)
		walk(z[node-n].B)
	}
	walk(2*n - 2)

	return labels
}

// maxclust finds the smallest threshold among the monocrit values that
// yields at most k clusters.
func maxclust(z Matrix, mc []float64, k int) Assignment {
	n := z.Leaves()
	if k >= n {
		return assign(z, mc, math.Inf(-1))
	}
	if k < 1 {
		k = 1
	}

	thr := append([]float64(nil), mc...)
	sort.Float64s(thr)
	lo, hi := 0, len(thr)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if countClusters(assign(z, mc, thr[mid])) <= k {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return assign(z, mc, thr[lo])
}

func countClusters(a Assignment) int {
	m := 0
	for _, v := range a {
		if v > m {
			m = v
		}
	}
	return m
}

// Sizes counts members per cluster label, sorted by label.
func Sizes(a Assignment) []ClusterSize {
	counts := map[int]int{}
	for _, c := range a {
		counts[c]++
	}
	out := make([]ClusterSize, 0, len(counts))
	for c, cnt := range counts {
		out = append(out, ClusterSize{Cluster: c, Count: cnt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cluster < out[j].Cluster })
	return out
}

// Inconsistency holds the statistics of one link and the links below it.
type Inconsistency struct {
	Mean        float64
	Std         float64
	Count       int
	Coefficient float64
}

// InconsistencyOf computes, for every merge, the mean and sample standard
// deviation of the heights of the links up to depth levels below it
// (itself included), their count, and (height-mean)/std (0 when std is 0).
func InconsistencyOf(z Matrix, depth int) ([]Inconsistency, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidInput, depth)
	}
	n := z.Leaves()
	out := make([]Inconsistency, len(z))
	for k := range z {
		var heights []float64
		var collect func(node, level int)
		collect = func(node, level int) {
			if node < n || level > depth {
				return
			}
			m := z[node-n]
			heights = append(heights, m.Distance)
			collect(m.A, level+1)
			collect(m.B, level+1)
		}
		collect(n+k, 1)

		s := Inconsistency{Count: len(heights), Mean: stat.Mean(heights, nil)}
		if len(heights) > 1 {
			s.Std = stat.StdDev(heights, nil)
		}
		if s.Std > 0 {
			s.Coefficient = (z[k].Distance - s.Mean) / s.Std
		}
		out[k] = s
	}
	return out, nil
}
