package classify

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/internal/log"
	"github.com/katalvlaran/eventcluster/internal/rng"
)

// State is the lifecycle stage of a Discriminator.
type State int

const (
	StateUnsplit State = iota
	StateSplit
	StateTrained
	StateEvaluated
)

func (s State) String() string {
	switch s {
	case StateUnsplit:
		return "unsplit"
	case StateSplit:
		return "split"
	case StateTrained:
		return "trained"
	case StateEvaluated:
		return "evaluated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Discriminator trains one model on an embedding of a set of events.
// It is not safe for concurrent use.
type Discriminator struct {
	evs    *events.Events
	logger *zap.SugaredLogger
	seed   int64

	state State
	data  *Split
	name  string
	model Model
}

// Option configures a Discriminator.
type Option func(*Discriminator)

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Discriminator) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSeed seeds class balancing.
func WithSeed(seed int64) Option {
	return func(d *Discriminator) { d.seed = seed }
}

// New returns an unsplit Discriminator over evs (which may be nil when
// labels and indices are always passed explicitly).
func New(evs *events.Events, opts ...Option) *Discriminator {
	d := &Discriminator{evs: evs, logger: log.GetSugaredLogger()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// State reports the lifecycle stage.
func (d *Discriminator) State() State { return d.state }

// Dataset returns the current split, or nil before SplitDataset.
func (d *Discriminator) Dataset() *Split { return d.data }

// Model returns the trained model and its name.
func (d *Discriminator) Model() (string, Model) { return d.name, d.model }

// SplitDataset validates the embedding against the labels, normalizes it
// in place, cuts it by position at floor(N·Fraction) and balances the
// requested sides. A new split discards any trained model.
func (d *Discriminator) SplitDataset(X *mat.Dense, labels Labels, o SplitOptions) error {
	if X == nil || X.IsEmpty() {
		return fmt.Errorf("%w: empty embedding", ErrInvalidInput)
	}
	if labels == nil {
		return fmt.Errorf("%w: no labels", ErrInvalidInput)
	}
	y, err := labels.resolve(d.evs)
	if err != nil {
		return err
	}
	n, _ := X.Dims()
	if n != len(y) {
		return fmt.Errorf("%w: embedding has %d rows, labels %d", ErrLengthMismatch, n, len(y))
	}
	if hasNaN(X) {
		return ErrNaN
	}
	fraction := o.Fraction
	if fraction == 0 {
		fraction = DefaultSplitOptions().Fraction
	}
	if fraction < 0 || fraction > 1 {
		return fmt.Errorf("%w: split fraction %v", ErrInvalidInput, fraction)
	}

	if err := Normalize(X, o.Normalization); err != nil {
		return err
	}

	idx := o.Indices
	switch {
	case idx == nil:
		d.logger.Warnw("assuming indices from the events table")
		idx = d.evs.Indices()
		if len(idx) != n {
			return fmt.Errorf("%w: %d events for %d embedding rows", ErrLengthMismatch, len(idx), n)
		}
	case len(idx) != n:
		return fmt.Errorf("%w: %d indices for %d embedding rows", ErrLengthMismatch, len(idx), n)
	}

	s := splitRows(rowsOf(X), y, idx, fraction)
	r := rng.New(d.seed)
	if o.BalanceTrain {
		if s.XTrain, s.YTrain, s.IdxTrain, err = balanceSet(s.XTrain, s.YTrain, s.IdxTrain, r); err != nil {
			return fmt.Errorf("training set: %w", err)
		}
	}
	if o.BalanceTest {
		if s.XTest, s.YTest, s.IdxTest, err = balanceSet(s.XTest, s.YTest, s.IdxTest, r); err != nil {
			return fmt.Errorf("test set: %w", err)
		}
	}

	d.data = &s
	d.model, d.name = nil, ""
	d.state = StateSplit
	return nil
}

// TrainOptions feeds the implicit split of TrainClassifier.
type TrainOptions struct {
	Embedding *mat.Dense
	Labels    Labels
	Split     SplitOptions
}

// TrainClassifier builds the named model with hyper and fits it on the
// training side. An unsplit Discriminator is split first from o.
func (d *Discriminator) TrainClassifier(name string, hyper Hyper, o TrainOptions) (Model, error) {
	if d.state == StateUnsplit {
		d.logger.Warnw("training before splitting, splitting with the given options", "classifier", name)
		if err := d.SplitDataset(o.Embedding, o.Labels, o.Split); err != nil {
			return nil, err
		}
	}
	if d.data.XTrain == nil {
		return nil, fmt.Errorf("%w: empty training set", ErrInvalidInput)
	}

	m, err := Construct(name, hyper)
	if err != nil {
		return nil, err
	}
	if err := m.Fit(d.data.XTrain, d.data.YTrain); err != nil {
		return nil, fmt.Errorf("classify: fit %s: %w", name, err)
	}
	d.logger.Infow("trained classifier", "classifier", name, "samples", len(d.data.YTrain))

	d.model, d.name = m, name
	d.state = StateTrained
	return m, nil
}

// Predict normalizes X in place with n and predicts with the trained model.
func (d *Discriminator) Predict(X *mat.Dense, n Normalization) ([]float64, error) {
	if d.model == nil {
		return nil, fmt.Errorf("%w: predict before training", ErrInvalidState)
	}
	if err := Normalize(X, n); err != nil {
		return nil, err
	}
	return d.model.Predict(X)
}

// EvaluateOptions configures Evaluate.
//
//   - Regression  report the coefficient of determination only.
//   - Cutoff      threshold for non-integer predictions of a classifier;
//     nil leaves them as they are.
//   - Normalize   confusion matrix normalization ("", "true", "pred", "all").
type EvaluateOptions struct {
	Regression bool     `yaml:"regression"`
	Cutoff     *float64 `yaml:"cutoff"`
	Normalize  string   `yaml:"normalize"`
}

// DefaultEvaluateOptions thresholds at 0.5 and keeps raw counts.
func DefaultEvaluateOptions() EvaluateOptions {
	c := 0.5
	return EvaluateOptions{Cutoff: &c}
}

// Evaluation describes one side of the split.
type Evaluation struct {
	Score     *float64 // regression only
	Confusion *mat.Dense
	Labels    []float64 // confusion row/column labels
	Scores    map[string]float64
}

// Evaluate scores the trained model on the train and test sides, keyed
// "train" and "test". An empty side is left out.
func (d *Discriminator) Evaluate(o EvaluateOptions) (map[string]Evaluation, error) {
	if d.model == nil {
		return nil, fmt.Errorf("%w: evaluate before training", ErrInvalidState)
	}
	out := map[string]Evaluation{}
	sides := []struct {
		name string
		X    *mat.Dense
		Y    []float64
	}{
		{"train", d.data.XTrain, d.data.YTrain},
		{"test", d.data.XTest, d.data.YTest},
	}
	for _, s := range sides {
		if s.X == nil || len(s.Y) == 0 {
			continue
		}
		pred, err := d.model.Predict(s.X)
		if err != nil {
			return nil, err
		}

		if o.Regression {
			r2 := stat.RSquaredFrom(pred, s.Y, nil)
			out[s.name] = Evaluation{Score: &r2}
			continue
		}

		if !integral(pred) && o.Cutoff != nil {
			d.logger.Warnw("assuming probability prediction, thresholding", "cutoff", *o.Cutoff, "side", s.name)
			for i, p := range pred {
				pred[i] = 0
				if p >= *o.Cutoff {
					pred[i] = 1
				}
			}
		}
		cm, labels, err := ConfusionMatrix(s.Y, pred, o.Normalize)
		if err != nil {
			return nil, err
		}
		scores, err := ComputeScores(s.Y, pred, Classification)
		if err != nil {
			return nil, err
		}
		out[s.name] = Evaluation{Confusion: cm, Labels: labels, Scores: scores}
	}
	d.state = StateEvaluated
	return out, nil
}
