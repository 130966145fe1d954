package similarity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/eventcluster/cache"
	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/internal/log"
	"github.com/katalvlaran/eventcluster/matrix"
)

// Type names a correlation metric.
type Type string

// Supported correlation types.
const (
	Pearson     Type = "pearson"
	DTW         Type = "dtw"
	DTWParallel Type = "dtw_parallel"
)

// Types lists the supported correlation types.
func Types() []Type { return []Type{Pearson, DTW, DTWParallel} }

// Params bundles the per-type settings used by Correlation.
type Params struct {
	DTW      DTWOptions      `yaml:"dtw"`
	Parallel ParallelOptions `yaml:"dtw_parallel"`
}

// DefaultParams returns the defaults of every metric.
func DefaultParams() Params {
	return Params{DTW: DefaultDTWOptions(), Parallel: DefaultParallelOptions()}
}

// Engine computes distance and similarity matrices.
// An Engine is not safe for concurrent use.
type Engine struct {
	logger  *zap.SugaredLogger
	cache   *cache.Store
	float32 bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCache memoizes results in s.
func WithCache(s *cache.Store) Option {
	return func(e *Engine) { e.cache = s }
}

// WithFloat32 rounds every stored value to single precision.
func WithFloat32() Option {
	return func(e *Engine) { e.float32 = true }
}

// New returns an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: log.GetSugaredLogger()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Correlation dispatches to the metric named by kind.
func (e *Engine) Correlation(evs *events.Events, kind Type, p Params) (matrix.DistanceMatrix, error) {
	switch kind {
	case Pearson:
		return e.Pearson(evs)
	case DTW:
		return e.DTW(evs, p.DTW)
	case DTWParallel:
		return e.DTWParallel(evs, p.Parallel)
	default:
		return nil, fmt.Errorf("%w %q: choose one of %v", ErrUnknownType, kind, Types())
	}
}

// traces validates evs and returns its traces.
func traces(evs *events.Events) ([][]float64, error) {
	if evs == nil || evs.Len() == 0 {
		return nil, fmt.Errorf("%w: no events", ErrInvalidInput)
	}
	tr := evs.Traces()
	for i, t := range tr {
		if t == nil {
			return nil, fmt.Errorf("%w: row %d", ErrMissingTrace, i)
		}
	}
	return tr, nil
}

// cached runs compute through the engine cache using a matrix snapshot.
func (e *Engine) cached(ns string, args []any, compute func() (matrix.DistanceMatrix, error)) (matrix.DistanceMatrix, error) {
	if e.cache == nil {
		return compute()
	}
	k, err := cache.Key(ns, append(args, e.float32)...)
	if err != nil {
		e.logger.Warnw("uncacheable call", "error", err)
		return compute()
	}
	snap, err := cache.Do(e.cache, k, func() (matrix.Snapshot, error) {
		m, err := compute()
		if err != nil {
			return matrix.Snapshot{}, err
		}
		return matrix.Snap(m)
	})
	if err != nil {
		return nil, err
	}
	return snap.Restore()
}

// round applies the configured precision in place.
func (e *Engine) round(v []float64) {
	if !e.float32 {
		return
	}
	for i := range v {
		v[i] = float64(float32(v[i]))
	}
}
