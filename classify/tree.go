package classify

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/eventcluster/internal/rng"
)

// TreeNode is one node of a fitted decision tree. Samples with
// x[Feature] <= Threshold go Left.
type TreeNode struct {
	Leaf      bool      `msgpack:"leaf"`
	Value     float64   `msgpack:"value"`
	Feature   int       `msgpack:"feature"`
	Threshold float64   `msgpack:"threshold"`
	Left      *TreeNode `msgpack:"left,omitempty"`
	Right     *TreeNode `msgpack:"right,omitempty"`
}

// DecisionTree is a CART tree: Gini impurity for classification, squared
// error for regression.
type DecisionTree struct {
	Classifier      bool      `msgpack:"classifier"`
	MaxDepth        int       `msgpack:"max_depth"` // 0 grows until pure
	MinSamplesSplit int       `msgpack:"min_samples_split"`
	MaxFeatures     int       `msgpack:"max_features"` // 0 tries every feature
	Seed            int64     `msgpack:"seed"`
	Width           int       `msgpack:"width"`
	Root            *TreeNode `msgpack:"root"`
}

func newDecisionTree(classifier bool) Constructor {
	return func(h Hyper) (Model, error) {
		r := newHyperReader(h)
		t := &DecisionTree{
			Classifier:      classifier,
			MaxDepth:        r.int("max_depth", 0),
			MinSamplesSplit: r.int("min_samples_split", 2),
			MaxFeatures:     r.int("max_features", 0),
			Seed:            int64(r.int("random_state", 0)),
		}
		if err := r.done(); err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Fit grows the tree on X, y.
func (t *DecisionTree) Fit(X *mat.Dense, y []float64) error {
	x, err := trainingRows(X, y)
	if err != nil {
		return err
	}
	t.fitRows(x, y, rng.New(t.Seed))
	return nil
}

func (t *DecisionTree) fitRows(x [][]float64, y []float64, r *rand.Rand) {
	t.Width = len(x[0])
	t.Root = t.grow(x, y, rng.Range(len(y)), 0, r)
}

// Predict walks every row down to its leaf.
func (t *DecisionTree) Predict(X *mat.Dense) ([]float64, error) {
	x, err := predictRows(X, t.Width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = t.predictRow(row)
	}
	return out, nil
}

func (t *DecisionTree) predictRow(row []float64) float64 {
	n := t.Root
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

func (t *DecisionTree) leafValue(y []float64, idx []int) float64 {
	vals := make([]float64, len(idx))
	for k, i := range idx {
		vals[k] = y[i]
	}
	if t.Classifier {
		return majority(vals, nil)
	}
	return stat.Mean(vals, nil)
}

func (t *DecisionTree) grow(x [][]float64, y []float64, idx []int, depth int, r *rand.Rand) *TreeNode {
	leaf := &TreeNode{Leaf: true, Value: t.leafValue(y, idx)}
	minSplit := t.MinSamplesSplit
	if minSplit < 2 {
		minSplit = 2
	}
	if len(idx) < minSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) || pure(y, idx) {
		return leaf
	}

	f, thr, ok := t.bestSplit(x, y, idx, r)
	if !ok {
		return leaf
	}
	var left, right []int
	for _, i := range idx {
		if x[i][f] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &TreeNode{
		Feature:   f,
		Threshold: thr,
		Left:      t.grow(x, y, left, depth+1, r),
		Right:     t.grow(x, y, right, depth+1, r),
	}
}

func pure(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}

// bestSplit scans the candidate features for the threshold with the lowest
// weighted impurity. Thresholds sit halfway between distinct values.
func (t *DecisionTree) bestSplit(x [][]float64, y []float64, idx []int, r *rand.Rand) (int, float64, bool) {
	features := rng.Range(len(x[0]))
	if t.MaxFeatures > 0 && t.MaxFeatures < len(features) {
		features, _ = rng.Choice(features, t.MaxFeatures, r)
		sort.Ints(features)
	}

	bestF, bestThr, bestScore, found := -1, 0.0, math.Inf(1), false
	order := make([]int, len(idx))
	for _, f := range features {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return x[order[a]][f] < x[order[b]][f] })

		imp := newImpurity(t.Classifier, y, order)
		for k := 1; k < len(order); k++ {
			imp.move(y[order[k-1]])
			lo, hi := x[order[k-1]][f], x[order[k]][f]
			if lo == hi {
				continue
			}
			if s := imp.score(); s < bestScore {
				bestF, bestThr, bestScore, found = f, lo+(hi-lo)/2, s, true
			}
		}
	}
	return bestF, bestThr, found
}

// impurity tracks the left/right statistics of a sweep over sorted samples.
type impurity struct {
	classifier     bool
	nl, nr         float64
	countL, countR map[float64]float64
	sumL, sumR     float64
	sqL, sqR       float64
}

func newImpurity(classifier bool, y []float64, order []int) *impurity {
	imp := &impurity{classifier: classifier, countL: map[float64]float64{}, countR: map[float64]float64{}}
	for _, i := range order {
		v := y[i]
		imp.nr++
		imp.countR[v]++
		imp.sumR += v
		imp.sqR += v * v
	}
	return imp
}

// move shifts one sample with target v from the right to the left side.
func (p *impurity) move(v float64) {
	p.nl++
	p.nr--
	p.countL[v]++
	p.countR[v]--
	p.sumL += v
	p.sumR -= v
	p.sqL += v * v
	p.sqR -= v * v
}

func (p *impurity) score() float64 {
	if p.classifier {
		return p.nl*gini(p.countL, p.nl) + p.nr*gini(p.countR, p.nr)
	}
	return (p.sqL - p.sumL*p.sumL/p.nl) + (p.sqR - p.sumR*p.sumR/p.nr)
}

func gini(counts map[float64]float64, n float64) float64 {
	g := 1.0
	for _, c := range counts {
		q := c / n
		g -= q * q
	}
	return g
}

// RandomForest bags decision trees grown on bootstrap samples with random
// feature subsets.
type RandomForest struct {
	Classifier      bool            `msgpack:"classifier"`
	NEstimators     int             `msgpack:"n_estimators"`
	MaxDepth        int             `msgpack:"max_depth"`
	MinSamplesSplit int             `msgpack:"min_samples_split"`
	MaxFeatures     int             `msgpack:"max_features"` // 0: sqrt(width) for classifiers, width for regressors
	Seed            int64           `msgpack:"seed"`
	Width           int             `msgpack:"width"`
	Trees           []*DecisionTree `msgpack:"trees"`
}

func newRandomForest(classifier bool) Constructor {
	return func(h Hyper) (Model, error) {
		r := newHyperReader(h)
		f := &RandomForest{
			Classifier:      classifier,
			NEstimators:     r.int("n_estimators", 100),
			MaxDepth:        r.int("max_depth", 0),
			MinSamplesSplit: r.int("min_samples_split", 2),
			MaxFeatures:     r.int("max_features", 0),
			Seed:            int64(r.int("random_state", 0)),
		}
		if err := r.done(); err != nil {
			return nil, err
		}
		if f.NEstimators < 1 {
			return nil, ErrBadHyperparameter
		}
		return f, nil
	}
}

// Fit grows NEstimators trees.
func (f *RandomForest) Fit(X *mat.Dense, y []float64) error {
	x, err := trainingRows(X, y)
	if err != nil {
		return err
	}
	f.Width = len(x[0])
	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = f.Width
		if f.Classifier {
			maxFeatures = int(math.Max(1, math.Sqrt(float64(f.Width))))
		}
	}

	base := rng.New(f.Seed)
	n := len(y)
	f.Trees = make([]*DecisionTree, f.NEstimators)
	for k := range f.Trees {
		r := rng.Derive(base, uint64(k))
		bx := make([][]float64, n)
		by := make([]float64, n)
		for i := range bx {
			j := r.Intn(n)
			bx[i], by[i] = x[j], y[j]
		}
		tree := &DecisionTree{
			Classifier:      f.Classifier,
			MaxDepth:        f.MaxDepth,
			MinSamplesSplit: f.MinSamplesSplit,
			MaxFeatures:     maxFeatures,
		}
		tree.fitRows(bx, by, r)
		f.Trees[k] = tree
	}
	return nil
}

// Predict votes (classifier) or averages (regressor) over the trees.
func (f *RandomForest) Predict(X *mat.Dense) ([]float64, error) {
	x, err := predictRows(X, f.Width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	votes := make([]float64, len(f.Trees))
	for i, row := range x {
		for k, t := range f.Trees {
			votes[k] = t.predictRow(row)
		}
		if f.Classifier {
			out[i] = majority(votes, nil)
		} else {
			out[i] = stat.Mean(votes, nil)
		}
	}
	return out, nil
}
