package coincidence

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/eventcluster/classify"
	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/internal/log"
)

var (
	// ErrMultiIncidenceUnsupported indicates a request to regress more
	// than the first incidence of each event.
	ErrMultiIncidenceUnsupported = errors.New("coincidence: multi incidence prediction is not implemented")

	// ErrNoIncidences indicates that no event window holds an incidence.
	ErrNoIncidences = errors.New("coincidence: no event coincides with an incidence")
)

// Aligned describes the incidences inside one event window.
type Aligned struct {
	Row              int // row position in the events table
	EventID          int
	NumIncidences    int
	Location         []float64 // t - z0
	LocationRelative []float64 // (t - z0) / dz
}

// Options configures the split used by every prediction.
type Options struct {
	TrainSplit         float64                `yaml:"train_split"`
	BalanceTrain       bool                   `yaml:"balance_train"`
	BalanceTest        bool                   `yaml:"balance_test"`
	Normalization      classify.Normalization `yaml:"normalization"`
	NormalizeConfusion string                 `yaml:"normalize_confusion"`
	Seed               int64                  `yaml:"seed"`
}

// DefaultOptions trains on the first 80% of the events.
func DefaultOptions() Options {
	return Options{TrainSplit: 0.8}
}

// Analyzer holds events, their embedding and the incidence timestamps.
type Analyzer struct {
	evs        *events.Events
	incidences []float64
	embedding  *mat.Dense
	opts       Options
	logger     *zap.SugaredLogger
	aligned    []Aligned
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New aligns evs with incidences. The embedding holds one row per event
// and is never modified.
func New(evs *events.Events, incidences []float64, embedding *mat.Dense, o Options, opts ...Option) (*Analyzer, error) {
	if evs == nil || evs.Len() == 0 || embedding == nil || embedding.IsEmpty() {
		return nil, fmt.Errorf("%w: no events", classify.ErrInvalidInput)
	}
	if r, _ := embedding.Dims(); r != evs.Len() {
		return nil, fmt.Errorf("%w: %d events, embedding has %d rows", classify.ErrLengthMismatch, evs.Len(), r)
	}

	a := &Analyzer{
		evs:        evs,
		incidences: append([]float64(nil), incidences...),
		embedding:  embedding,
		opts:       o,
		logger:     log.GetSugaredLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.aligned = align(evs, a.incidences)

	return a, nil
}

// align counts, per event, the incidences t with z0 <= t < z1. An
// incidence exactly at z0 belongs to the event that starts there and one at
// z1 to the next, so back-to-back windows never share or drop a timestamp.
// A strict z0 < t < z1 test would drop hits on either boundary.
func align(evs *events.Events, incidences []float64) []Aligned {
	rows := evs.Rows()
	out := make([]Aligned, len(rows))
	for i, ev := range rows {
		a := Aligned{Row: i, EventID: ev.Index}
		z0, z1 := float64(ev.Z0), float64(ev.Z1)
		dz := float64(ev.Dz)
		if dz == 0 {
			dz = z1 - z0
		}
		for _, t := range incidences {
			if t < z0 || t >= z1 {
				continue
			}
			a.NumIncidences++
			a.Location = append(a.Location, t-z0)
			rel := 0.0
			if dz != 0 {
				rel = (t - z0) / dz
			}
			a.LocationRelative = append(a.LocationRelative, rel)
		}
		out[i] = a
	}

	return out
}

// Align returns the per-event alignment in row order. Windows are
// half-open: [z0, z1).
func (a *Analyzer) Align() []Aligned {
	return append([]Aligned(nil), a.aligned...)
}

// PredictCoincidence trains classifier to predict, per event, whether it
// holds at least one incidence (binary) or how many it holds.
func (a *Analyzer) PredictCoincidence(binary bool, classifier string, hyper classify.Hyper) (classify.Model, map[string]classify.Evaluation, error) {
	y := make(classify.Values, len(a.aligned))
	ids := make([]int, len(a.aligned))
	for i, al := range a.aligned {
		ids[i] = al.EventID
		switch {
		case binary && al.NumIncidences > 0:
			y[i] = 1
		case !binary:
			y[i] = float64(al.NumIncidences)
		}
	}

	return a.train(mat.DenseCopyOf(a.embedding), y, ids, classifier, hyper, false)
}

// PredictIncidenceLocation trains a regressor on the events that hold at
// least one incidence, predicting the relative offset of their first one.
func (a *Analyzer) PredictIncidenceLocation(classifier string, singleEvent bool, hyper classify.Hyper) (classify.Model, map[string]classify.Evaluation, error) {
	if !singleEvent {
		return nil, nil, ErrMultiIncidenceUnsupported
	}

	var (
		rows [][]float64
		y    classify.Values
		ids  []int
	)
	for _, al := range a.aligned {
		if al.NumIncidences == 0 {
			continue
		}
		if al.NumIncidences > 1 {
			a.logger.Debugw("event holds several incidences, using the first", "event", al.EventID, "incidences", al.NumIncidences)
		}
		rows = append(rows, mat.Row(nil, al.Row, a.embedding))
		y = append(y, al.LocationRelative[0])
		ids = append(ids, al.EventID)
	}
	if len(rows) == 0 {
		return nil, nil, ErrNoIncidences
	}
	_, c := a.embedding.Dims()
	X := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		X.SetRow(i, r)
	}

	return a.train(X, y, ids, classifier, hyper, true)
}

func (a *Analyzer) train(X *mat.Dense, y classify.Values, ids []int, classifier string, hyper classify.Hyper, regression bool) (classify.Model, map[string]classify.Evaluation, error) {
	d := classify.New(a.evs, classify.WithLogger(a.logger), classify.WithSeed(a.opts.Seed))
	err := d.SplitDataset(X, y, classify.SplitOptions{
		Indices:       ids,
		Fraction:      a.opts.TrainSplit,
		BalanceTrain:  a.opts.BalanceTrain,
		BalanceTest:   a.opts.BalanceTest,
		Normalization: a.opts.Normalization,
	})
	if err != nil {
		return nil, nil, err
	}
	m, err := d.TrainClassifier(classifier, hyper, classify.TrainOptions{})
	if err != nil {
		return nil, nil, err
	}

	eo := classify.DefaultEvaluateOptions()
	eo.Regression = regression
	eo.Normalize = a.opts.NormalizeConfusion
	ev, err := d.Evaluate(eo)
	if err != nil {
		return nil, nil, err
	}

	return m, ev, nil
}
