package linkage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/eventcluster/cache"
	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/internal/log"
	"github.com/katalvlaran/eventcluster/matrix"
	"github.com/katalvlaran/eventcluster/similarity"
)

// Linker runs the hierarchical clustering pipeline.
// A Linker is not safe for concurrent use.
type Linker struct {
	logger *zap.SugaredLogger
	cache  *cache.Store
	sim    *similarity.Engine
}

// Option configures a Linker.
type Option func(*Linker)

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(k *Linker) {
		if l != nil {
			k.logger = l
		}
	}
}

// WithCache memoizes linkage matrices (and, through the default similarity
// engine, distance matrices).
func WithCache(s *cache.Store) Option {
	return func(k *Linker) { k.cache = s }
}

// WithSimilarity sets the engine used when no distance matrix is given.
func WithSimilarity(e *similarity.Engine) Option {
	return func(k *Linker) { k.sim = e }
}

// New returns a Linker.
func New(opts ...Option) *Linker {
	l := &Linker{logger: log.GetSugaredLogger()}
	for _, o := range opts {
		o(l)
	}
	if l.sim == nil {
		l.sim = similarity.New(similarity.WithLogger(l.logger), similarity.WithCache(l.cache))
	}
	return l
}

// Build is the cached counterpart of the package-level Build.
func (l *Linker) Build(D matrix.DistanceMatrix, method Method, metric Metric) (Matrix, error) {
	if l.cache == nil || D == nil {
		return Build(D, method, metric)
	}
	snap, err := matrix.Snap(D)
	if err != nil {
		return nil, err
	}
	key, err := cache.Key("linkage", snap, method, metric)
	if err != nil {
		return Build(D, method, metric)
	}
	return cache.Do(l.cache, key, func() (Matrix, error) { return Build(D, method, metric) })
}

// Cut cuts z into flat clusters and returns the labels and the size table
// after the size filters of o.
func (l *Linker) Cut(z Matrix, cutoff float64, criterion Criterion, o CutOptions) (Assignment, []ClusterSize, error) {
	labels, err := Flat(z, cutoff, criterion, o)
	if err != nil {
		return nil, nil, err
	}
	sizes := Sizes(labels)

	minSize := o.MinClusterSize
	if minSize > 0 && minSize < 1 {
		minSize = float64(int(float64(len(labels)) * minSize))
	}
	switch {
	case minSize > 1:
		sizes = filterSizes(sizes, func(c int) bool { return float64(c) >= minSize })
	case minSize < 0:
		l.logger.Warnw("min_cluster_size < 0, ignoring argument", "min_cluster_size", o.MinClusterSize)
	}
	if o.MaxClusterSize > 0 {
		sizes = filterSizes(sizes, func(c int) bool { return c <= o.MaxClusterSize })
	}

	return labels, sizes, nil
}

func filterSizes(in []ClusterSize, keep func(count int) bool) []ClusterSize {
	out := in[:0]
	for _, cs := range in {
		if keep(cs.Count) {
			out = append(out, cs)
		}
	}
	return out
}

// GetOptions configures GetBarycenters.
//
// Distance, when set, is used as is and never closed; otherwise the matrix
// of DistanceType is computed and released before returning.
type GetOptions struct {
	Criterion      Criterion
	DefaultCluster int
	Distance       matrix.DistanceMatrix
	DistanceType   similarity.Type
	DistanceParams similarity.Params
	Method         Method
	Metric         Metric
	Cut            CutOptions
	Barycenter     BarycenterOptions
}

// DefaultGetOptions clusters Pearson distances with average linkage on
// Euclidean rows and cuts by distance.
func DefaultGetOptions() GetOptions {
	return GetOptions{
		Criterion:      Distance,
		DefaultCluster: events.DefaultCluster,
		DistanceType:   similarity.Pearson,
		DistanceParams: similarity.DefaultParams(),
		Method:         Average,
		Metric:         Euclidean,
		Cut:            DefaultCutOptions(),
		Barycenter:     DefaultBarycenterOptions(),
	}
}

// Result is the outcome of GetBarycenters.
type Result struct {
	Barycenters []Barycenter
	Lookup      *events.LookupTable
	Linkage     Matrix
	Labels      Assignment
	Sizes       []ClusterSize
}

// GetBarycenters computes distances (unless given), the linkage, the cut
// and one barycenter per kept cluster. Lookup maps every member of a kept
// cluster to its label; other ids read as DefaultCluster.
func (l *Linker) GetBarycenters(evs *events.Events, cutoff float64, o GetOptions) (Result, error) {
	if err := o.Criterion.Validate(); err != nil {
		return Result{}, err
	}
	if evs == nil || evs.Len() == 0 {
		return Result{}, fmt.Errorf("%w: no events", ErrInvalidInput)
	}

	D := o.Distance
	if D == nil {
		var err error
		D, err = l.sim.Correlation(evs, o.DistanceType, o.DistanceParams)
		if err != nil {
			return Result{}, err
		}
		defer D.Close()
	}
	if D.Size() != evs.Len() {
		return Result{}, fmt.Errorf("%w: distance matrix of %d for %d events", ErrInvalidInput, D.Size(), evs.Len())
	}

	z, err := l.Build(D, o.Method, o.Metric)
	if err != nil {
		return Result{}, err
	}
	labels, sizes, err := l.Cut(z, cutoff, o.Criterion, o.Cut)
	if err != nil {
		return Result{}, err
	}
	bcs, err := l.Barycenters(sizes, labels, evs, o.Barycenter)
	if err != nil {
		return Result{}, err
	}

	lookup := events.NewLookupTable(o.DefaultCluster)
	for _, bc := range bcs {
		for _, id := range bc.Members {
			lookup.Set(id, bc.Cluster)
		}
	}
	l.logger.Infow("clustered events",
		"events", evs.Len(), "clusters", len(Sizes(labels)), "kept", len(bcs), "criterion", o.Criterion, "cutoff", cutoff)

	return Result{Barycenters: bcs, Lookup: lookup, Linkage: z, Labels: labels, Sizes: sizes}, nil
}
