package classify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Scoring selects the metric family of ComputeScores.
type Scoring string

const (
	// Classification: accuracy and macro-averaged precision, recall and F1.
	Classification Scoring = "classification"
	// Clustering: adjusted mutual information, adjusted Rand, homogeneity
	// and Rand index.
	Clustering Scoring = "clustering"
)

// Score names.
const (
	ScoreAccuracy    = "accuracy"
	ScorePrecision   = "precision"
	ScoreRecall      = "recall"
	ScoreF1          = "f1"
	ScoreAMI         = "adjusted_mutual_info_score"
	ScoreARI         = "adjusted_rand_score"
	ScoreHomogeneity = "homogeneity_score"
	ScoreRand        = "rand_score"
)

// ComputeScores compares true and predicted labels.
func ComputeScores(truth, pred []float64, scoring Scoring) (map[string]float64, error) {
	if len(truth) != len(pred) {
		return nil, fmt.Errorf("%w: %d true labels, %d predictions", ErrLengthMismatch, len(truth), len(pred))
	}
	switch scoring {
	case Classification:
		return classificationScores(truth, pred), nil
	case Clustering:
		return clusteringScores(truth, pred), nil
	}
	return nil, fmt.Errorf("%w %q: choose one of %q, %q", ErrUnknownScoring, scoring, Classification, Clustering)
}

// classificationScores macro-averages over every label present in truth
// or pred; an undefined ratio counts as 0.
func classificationScores(truth, pred []float64) map[string]float64 {
	labels := uniqueSorted(append(append([]float64(nil), truth...), pred...))
	correct := 0.0
	for i := range truth {
		if truth[i] == pred[i] {
			correct++
		}
	}
	var precision, recall, f1 float64
	for _, l := range labels {
		var tp, fp, fn float64
		for i := range truth {
			switch {
			case truth[i] == l && pred[i] == l:
				tp++
			case pred[i] == l:
				fp++
			case truth[i] == l:
				fn++
			}
		}
		p, r := ratio(tp, tp+fp), ratio(tp, tp+fn)
		precision += p
		recall += r
		f1 += ratio(2*p*r, p+r)
	}
	k := float64(len(labels))
	out := map[string]float64{
		ScoreAccuracy:  ratio(correct, float64(len(truth))),
		ScorePrecision: ratio(precision, k),
		ScoreRecall:    ratio(recall, k),
		ScoreF1:        ratio(f1, k),
	}
	return out
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// contingency counts co-occurrences of true (rows) and predicted (cols)
// labels.
type contingency struct {
	n    float64
	cell [][]float64
	rows []float64 // row sums
	cols []float64 // column sums
}

func newContingency(truth, pred []float64) contingency {
	tl, pl := uniqueSorted(truth), uniqueSorted(pred)
	ti, pi := classIndex(tl), classIndex(pl)
	c := contingency{n: float64(len(truth)), rows: make([]float64, len(tl)), cols: make([]float64, len(pl))}
	c.cell = make([][]float64, len(tl))
	for i := range c.cell {
		c.cell[i] = make([]float64, len(pl))
	}
	for k := range truth {
		i, j := ti[truth[k]], pi[pred[k]]
		c.cell[i][j]++
		c.rows[i]++
		c.cols[j]++
	}
	return c
}

func entropy(counts []float64, n float64) float64 {
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			p := c / n
			h -= p * math.Log(p)
		}
	}
	return h
}

func (c contingency) mutualInfo() float64 {
	mi := 0.0
	for i, row := range c.cell {
		for j, nij := range row {
			if nij > 0 {
				mi += nij / c.n * math.Log(c.n*nij/(c.rows[i]*c.cols[j]))
			}
		}
	}
	return math.Max(mi, 0)
}

// expectedMutualInfo is the mutual information expected under the
// hypergeometric model of random labelings with the same marginals.
func (c contingency) expectedMutualInfo() float64 {
	lg := func(x float64) float64 { v, _ := math.Lgamma(x + 1); return v }
	n := c.n
	emi := 0.0
	for _, a := range c.rows {
		for _, b := range c.cols {
			lo := math.Max(1, a+b-n)
			hi := math.Min(a, b)
			for nij := lo; nij <= hi; nij++ {
				term := nij / n * math.Log(n*nij/(a*b))
				logP := lg(a) + lg(b) + lg(n-a) + lg(n-b) -
					lg(n) - lg(nij) - lg(a-nij) - lg(b-nij) - lg(n-a-b+nij)
				emi += term * math.Exp(logP)
			}
		}
	}
	return emi
}

// pairs returns the pair confusion counts (tn, fp, fn, tp) over ordered
// sample pairs.
func (c contingency) pairs() (tn, fp, fn, tp float64) {
	var sumSq, rowSq, colSq float64
	for _, row := range c.cell {
		for _, v := range row {
			sumSq += v * v
		}
	}
	for _, v := range c.rows {
		rowSq += v * v
	}
	for _, v := range c.cols {
		colSq += v * v
	}
	tp = sumSq - c.n
	fp = colSq - sumSq
	fn = rowSq - sumSq
	tn = c.n*c.n - fp - fn - sumSq
	return tn, fp, fn, tp
}

func clusteringScores(truth, pred []float64) map[string]float64 {
	out := map[string]float64{ScoreAMI: 1, ScoreARI: 1, ScoreHomogeneity: 1, ScoreRand: 1}
	if len(truth) == 0 {
		return out
	}
	c := newContingency(truth, pred)

	tn, fp, fn, tp := c.pairs()
	if fn != 0 || fp != 0 {
		out[ScoreARI] = 2 * (tp*tn - fn*fp) / ((tp+fn)*(fn+tn) + (tp+fp)*(fp+tn))
	}
	if total := tn + fp + fn + tp; total != 0 && tn+tp != total {
		out[ScoreRand] = (tn + tp) / total
	}

	hTrue, hPred := entropy(c.rows, c.n), entropy(c.cols, c.n)
	mi := c.mutualInfo()
	if hTrue != 0 {
		out[ScoreHomogeneity] = mi / hTrue
	}

	if !(len(c.rows) == 1 && len(c.cols) == 1) {
		emi := c.expectedMutualInfo()
		den := (hTrue+hPred)/2 - emi
		eps := math.Nextafter(1, 2) - 1
		if den < 0 {
			den = math.Min(den, -eps)
		} else {
			den = math.Max(den, eps)
		}
		out[ScoreAMI] = (mi - emi) / den
	}
	return out
}

// Confusion normalization modes.
const (
	NormalizeNone = ""
	NormalizeTrue = "true" // rows sum to 1
	NormalizePred = "pred" // columns sum to 1
	NormalizeAll  = "all"  // all cells sum to 1
)

// ConfusionMatrix counts true labels (rows) against predictions (cols)
// over labels, the sorted union of both. Empty rows or columns normalize
// to zeros.
func ConfusionMatrix(truth, pred []float64, normalize string) (*mat.Dense, []float64, error) {
	if len(truth) != len(pred) {
		return nil, nil, fmt.Errorf("%w: %d true labels, %d predictions", ErrLengthMismatch, len(truth), len(pred))
	}
	if len(truth) == 0 {
		return nil, nil, fmt.Errorf("%w: no samples", ErrInvalidInput)
	}
	switch normalize {
	case NormalizeNone, NormalizeTrue, NormalizePred, NormalizeAll:
	default:
		return nil, nil, fmt.Errorf("%w: confusion normalization %q", ErrInvalidInput, normalize)
	}
	labels := uniqueSorted(append(append([]float64(nil), truth...), pred...))
	idx := classIndex(labels)
	k := len(labels)
	cm := mat.NewDense(k, k, nil)
	for i := range truth {
		a, b := idx[truth[i]], idx[pred[i]]
		cm.Set(a, b, cm.At(a, b)+1)
	}

	switch normalize {
	case NormalizeTrue:
		for i := 0; i < k; i++ {
			s := mat.Sum(cm.RowView(i))
			for j := 0; j < k; j++ {
				cm.Set(i, j, ratio(cm.At(i, j), s))
			}
		}
	case NormalizePred:
		for j := 0; j < k; j++ {
			s := mat.Sum(cm.ColView(j))
			for i := 0; i < k; i++ {
				cm.Set(i, j, ratio(cm.At(i, j), s))
			}
		}
	case NormalizeAll:
		cm.Scale(1/float64(len(truth)), cm)
	}
	return cm, labels, nil
}
