package classify

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/eventcluster/internal/rng"
)

// Split is a positional train/test split. XTest is nil when the test side
// is empty.
type Split struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest []float64
	IdxTrain      []int
	IdxTest       []int
}

// SplitOptions configures SplitDataset.
//
//   - Indices       event ids of the rows; nil takes the event indices.
//   - Fraction      share of rows in the training side, in (0,1]; 0 means 0.8.
//   - BalanceTrain  resample the training side to its minority class count.
//   - BalanceTest   the same for the test side.
//   - Normalization applied to the whole embedding before splitting.
type SplitOptions struct {
	Indices       []int         `yaml:"-"`
	Fraction      float64       `yaml:"fraction"`
	BalanceTrain  bool          `yaml:"balance_train"`
	BalanceTest   bool          `yaml:"balance_test"`
	Normalization Normalization `yaml:"normalization,omitempty"`
}

// DefaultSplitOptions trains on the first 80% of the rows.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{Fraction: 0.8}
}

// splitRows cuts x, y, idx at floor(len·fraction).
func splitRows(x [][]float64, y []float64, idx []int, fraction float64) Split {
	at := int(float64(len(x)) * fraction)
	return Split{
		XTrain:   fromRows(x[:at]),
		XTest:    fromRows(x[at:]),
		YTrain:   append([]float64(nil), y[:at]...),
		YTest:    append([]float64(nil), y[at:]...),
		IdxTrain: append([]int(nil), idx[:at]...),
		IdxTest:  append([]int(nil), idx[at:]...),
	}
}

// balanceSet keeps, for every class, minCount rows drawn without
// replacement, where minCount is the size of the smallest class. Output is
// grouped by class in ascending label order; rows, labels and ids stay
// aligned.
func balanceSet(X *mat.Dense, y []float64, idx []int, r *rand.Rand) (*mat.Dense, []float64, []int, error) {
	if len(y) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: one or more classes have zero samples", ErrBalanceInfeasible)
	}
	x := rowsOf(X)
	members := map[float64][]int{}
	for i, v := range y {
		members[v] = append(members[v], i)
	}
	classes := uniqueSorted(y)
	minCount := len(y)
	for _, c := range classes {
		if n := len(members[c]); n < minCount {
			minCount = n
		}
	}

	var (
		bx  [][]float64
		by  []float64
		bid []int
	)
	for _, c := range classes {
		chosen, err := rng.Choice(members[c], minCount, r)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %w", ErrBalanceInfeasible, err)
		}
		for _, i := range chosen {
			bx = append(bx, x[i])
			by = append(by, y[i])
			bid = append(bid, idx[i])
		}
	}
	return fromRows(bx), by, bid, nil
}
