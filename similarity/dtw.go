package similarity

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/eventcluster/dtw"
	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/matrix"
)

// DTWOptions configures DTW distance matrices.
//
//   - UseMmap:           fill a memory-mapped compact buffer block by block.
//   - BlockSize:         rows per block in the mmap path (default 10000).
//   - Parallel:          compute rows on every CPU.
//   - Compact:           return the N(N-1)/2 upper triangle.
//   - OnlyUpperTriangle: return a Dense with the lower triangle left zero.
//   - ReturnSimilarity:  pass the distances through DistanceToSimilarity
//     with exponential defaults.
//   - Window, Penalty:   Sakoe–Chiba band (-1 none) and slope penalty.
//   - MmapDir:           directory of the temporary file (os.TempDir when empty).
type DTWOptions struct {
	UseMmap           bool    `yaml:"use_mmap"`
	BlockSize         int     `yaml:"block_size"`
	Parallel          bool    `yaml:"parallel"`
	Compact           bool    `yaml:"compact"`
	OnlyUpperTriangle bool    `yaml:"only_upper_triangle"`
	ReturnSimilarity  bool    `yaml:"return_similarity"`
	Window            int     `yaml:"window"`
	Penalty           float64 `yaml:"penalty"`
	MmapDir           string  `yaml:"mmap_dir"`
}

// DefaultDTWOptions returns the in-memory, parallel, similarity-returning defaults.
func DefaultDTWOptions() DTWOptions {
	return DTWOptions{
		BlockSize:        10000,
		Parallel:         true,
		ReturnSimilarity: true,
		Window:           -1,
	}
}

func (o DTWOptions) backend() *dtw.Options {
	opts := dtw.DefaultOptions()
	opts.Window = o.Window
	opts.SlopePenalty = o.Penalty
	opts.Metric = dtw.Euclidean
	return &opts
}

// DTW returns the pairwise DTW distance matrix (or similarity matrix when
// ReturnSimilarity is set) of the event traces.
//
// With UseMmap the result is a Compact matrix backed by a temporary file;
// the caller must Close it to release the mapping and delete the file. On
// every error path the file is removed before returning.
func (e *Engine) DTW(evs *events.Events, o DTWOptions) (matrix.DistanceMatrix, error) {
	tr, err := traces(evs)
	if err != nil {
		return nil, err
	}
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultDTWOptions().BlockSize
	}

	if o.UseMmap {
		m, err := e.mappedDTW(tr, o)
		if !errors.Is(err, matrix.ErrMmapUnsupported) {
			return m, err
		}
		e.logger.Warnw("memory mapping unsupported, computing in memory", "events", len(tr))
	}

	args := []any{tr, o.Window, o.Penalty, o.Compact, o.OnlyUpperTriangle, o.ReturnSimilarity}
	return e.cached("dtw", args, func() (matrix.DistanceMatrix, error) {
		flat, err := dtw.DistanceMatrix(tr, o.backend(), o.Parallel)
		if err != nil {
			return nil, err
		}
		n := len(tr)

		var D matrix.DistanceMatrix
		switch {
		case o.Compact:
			D, err = matrix.NewCompactFrom(n, flat, 0)
		default:
			D, err = expand(n, flat, o.OnlyUpperTriangle)
		}
		if err != nil {
			return nil, err
		}
		if o.ReturnSimilarity {
			D, _, err = e.DistanceToSimilarity(D, SimilarityOptions{Method: Exponential})
			return D, err
		}
		e.round(D.Values())
		return D, nil
	})
}

// expand writes compact values into a Dense, mirrored unless upperOnly.
func expand(n int, flat []float64, upperOnly bool) (*matrix.Dense, error) {
	d, err := matrix.NewDense(n)
	if err != nil {
		return nil, err
	}
	k := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			_ = d.Set(i, j, flat[k])
			k++
		}
	}
	if upperOnly {
		d.SetTriangle(matrix.Upper)
	} else {
		d.MirrorUpper()
	}
	return d, nil
}

// mappedDTW fills a memory-mapped compact matrix in row blocks.
func (e *Engine) mappedDTW(tr [][]float64, o DTWOptions) (_ matrix.DistanceMatrix, err error) {
	n := len(tr)
	m, err := matrix.NewMappedCompact(n, 0, o.MmapDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = m.Close()
		}
	}()
	e.logger.Infow("creating mmap distance matrix", "entries", matrix.CompactLen(n), "block", o.BlockSize)

	buf := m.Values()
	off := 0
	for x0 := 0; x0 < n; x0 += o.BlockSize {
		x1 := min(x0+o.BlockSize, n)
		part, err := dtw.DistanceMatrixBlock(tr, x0, x1, o.backend(), o.Parallel)
		if err != nil {
			return nil, err
		}
		off += copy(buf[off:], part)
		if err := m.Flush(); err != nil {
			return nil, err
		}
	}

	if o.ReturnSimilarity && len(buf) > 0 {
		p, err := FitTransform(buf, SimilarityOptions{Method: Exponential})
		if err != nil {
			return nil, err
		}
		for i, v := range buf {
			buf[i] = p.Apply(v)
		}
		m.SetDiagonal(p.Apply(0))
	}
	e.round(buf)
	if err := m.Flush(); err != nil {
		return nil, err
	}

	return m, nil
}

// Constraint names a global path constraint for multivariate DTW.
type Constraint string

// Supported constraints.
const (
	NoConstraint Constraint = ""
	Itakura      Constraint = "itakura"
	SakoeChiba   Constraint = "sakoe_chiba"
)

// ParallelOptions configures multivariate DTW matrices.
//
//   - LocalDissimilarity: per time step distance (default norm1).
//   - TypeDTW:            "dependent"/"d" or "independent"/"i".
//   - Constraint:         none, itakura or sakoe_chiba.
//   - ItakuraMaxSlope:    parallelogram slope (>1), itakura only.
//   - SakoeChibaRadius:   band radius, sakoe_chiba only.
//   - SigmaKernel:        kernel width (default 1).
//   - DTWToKernel:        return exp(-D/SigmaKernel) instead of D.
//   - Multivariate:       use every channel; false keeps only Trace.
//   - UseMmap:            not supported.
type ParallelOptions struct {
	LocalDissimilarity dtw.Dissimilarity `yaml:"local_dissimilarity"`
	TypeDTW            string            `yaml:"type_dtw"`
	Constraint         Constraint        `yaml:"constraint"`
	ItakuraMaxSlope    float64           `yaml:"itakura_max_slope"`
	SakoeChibaRadius   int               `yaml:"sakoe_chiba_radius"`
	SigmaKernel        float64           `yaml:"sigma_kernel"`
	DTWToKernel        bool              `yaml:"dtw_to_kernel"`
	Multivariate       bool              `yaml:"multivariate"`
	UseMmap            bool              `yaml:"use_mmap"`
}

// DefaultParallelOptions returns the dependent, unconstrained, norm1 defaults.
func DefaultParallelOptions() ParallelOptions {
	return ParallelOptions{
		LocalDissimilarity: dtw.Norm1,
		TypeDTW:            string(dtw.Dependent),
		SigmaKernel:        1,
		Multivariate:       true,
	}
}

func (o ParallelOptions) resolve() (dtw.Scheme, dtw.LocalFunc, *dtw.Options, error) {
	var scheme dtw.Scheme
	switch o.TypeDTW {
	case "", "d", string(dtw.Dependent):
		scheme = dtw.Dependent
	case "i", string(dtw.Independent):
		scheme = dtw.Independent
	default:
		return "", nil, nil, fmt.Errorf("%w: type_dtw %q", ErrInvalidInput, o.TypeDTW)
	}

	name := o.LocalDissimilarity
	if name == "" {
		name = dtw.Norm1
	}
	local, err := dtw.Local(name)
	if err != nil {
		return "", nil, nil, err
	}

	opts := dtw.DefaultOptions()
	switch o.Constraint {
	case NoConstraint:
	case Itakura:
		if o.SakoeChibaRadius != 0 {
			return "", nil, nil, fmt.Errorf("%w: itakura with sakoe_chiba_radius=%d", ErrConstraintConflict, o.SakoeChibaRadius)
		}
		if o.ItakuraMaxSlope <= 1 {
			return "", nil, nil, fmt.Errorf("%w: itakura_max_slope must exceed 1, got %v", ErrInvalidInput, o.ItakuraMaxSlope)
		}
		opts.ItakuraMaxSlope = o.ItakuraMaxSlope
	case SakoeChiba:
		if o.ItakuraMaxSlope != 0 {
			return "", nil, nil, fmt.Errorf("%w: sakoe_chiba with itakura_max_slope=%v", ErrConstraintConflict, o.ItakuraMaxSlope)
		}
		if o.SakoeChibaRadius < 0 {
			return "", nil, nil, fmt.Errorf("%w: sakoe_chiba_radius %d", ErrInvalidInput, o.SakoeChibaRadius)
		}
		opts.Window = o.SakoeChibaRadius
	default:
		return "", nil, nil, fmt.Errorf("%w: constraint %q", ErrInvalidInput, o.Constraint)
	}

	return scheme, local, &opts, nil
}

// DTWParallel returns the full pairwise multivariate DTW distance matrix
// (zero diagonal), or the kernel exp(-D/SigmaKernel) with DTWToKernel.
// Events with Channels are multivariate; a plain Trace is one channel.
func (e *Engine) DTWParallel(evs *events.Events, o ParallelOptions) (matrix.DistanceMatrix, error) {
	if o.UseMmap {
		return nil, fmt.Errorf("%w: memory-mapped dtw_parallel", ErrNotImplemented)
	}
	if evs == nil || evs.Len() == 0 {
		return nil, fmt.Errorf("%w: no events", ErrInvalidInput)
	}
	scheme, local, opts, err := o.resolve()
	if err != nil {
		return nil, err
	}
	sigma := o.SigmaKernel
	if sigma == 0 {
		sigma = 1
	}

	series := evs.Series()
	if !o.Multivariate {
		for i, s := range evs.Traces() {
			series[i] = [][]float64{s}
		}
	}
	for i, s := range series {
		if len(s) == 0 || s[0] == nil {
			return nil, fmt.Errorf("%w: row %d", ErrMissingTrace, i)
		}
	}

	args := []any{series, o}
	return e.cached("dtw_parallel", args, func() (matrix.DistanceMatrix, error) {
		flat, err := dtw.MultiDistanceMatrix(series, scheme, local, opts, true)
		if err != nil {
			return nil, err
		}
		D, err := expand(len(series), flat, false)
		if err != nil {
			return nil, err
		}
		if o.DTWToKernel {
			v := D.Values()
			for i := range v {
				v[i] = math.Exp(-v[i] / sigma)
			}
		}
		e.round(D.Values())
		return D, nil
	})
}
