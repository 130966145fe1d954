// Options, modes and sentinel errors for Dynamic Time Warping.

package dtw

import "errors"

// MemoryMode controls how DTW stores its DP matrix.
//
//   - FullMatrix: keep the entire (n+1)x(m+1) matrix in memory.
//     Allows distance + full backtrace for the optimal warping path.
//     Memory: O(n·m).
//
//   - TwoRows: only keep the current and previous row.
//     Memory O(m); cannot recover the path.
//
//   - NoMemory: a single row updated in place.
//     Memory O(m); cannot recover the path.
type MemoryMode int

const (
	// FullMatrix mode: store all rows, support path recovery, uses O(N·M) memory.
	FullMatrix MemoryMode = iota

	// TwoRows mode: keep only two rows, no path recovery, uses O(M) memory.
	TwoRows

	// NoMemory mode: one row updated in place, no path recovery.
	NoMemory
)

// Metric selects the local cost and how the accumulated cost is reported.
//
//   - Absolute:  cost |a-b|, distance is the accumulated sum.
//   - Euclidean: cost (a-b)², distance is the square root of the accumulated
//     sum (the convention of most time-series clustering toolkits).
type Metric int

const (
	// Absolute accumulates |a-b|.
	Absolute Metric = iota

	// Euclidean accumulates (a-b)² and returns its square root.
	Euclidean
)

// Sentinel errors.
var (
	// ErrEmptyInput indicates one or both inputs are empty.
	ErrEmptyInput = errors.New("dtw: input sequences must be non-empty")

	// ErrBadInput indicates invalid option values.
	ErrBadInput = errors.New("dtw: invalid options")

	// ErrPathNeedsMatrix indicates that path recovery requires FullMatrix mode.
	ErrPathNeedsMatrix = errors.New("dtw: ReturnPath requires MemoryMode=FullMatrix")

	// ErrDimensionMismatch indicates multivariate series with different channel counts.
	ErrDimensionMismatch = errors.New("dtw: channel count mismatch")
)

// Coord is one cell (I in a, J in b) of a warping path.
type Coord struct {
	I, J int
}

// Options configures Dynamic Time Warping.
//
// Fields:
//   - Window:          Sakoe–Chiba band: maximum |i-j|. -1 disables the band,
//     0 forces the diagonal. Values below -1 are rejected.
//   - ItakuraMaxSlope: Itakura parallelogram slope (>1). 0 disables it.
//     Mutually exclusive with Window >= 0.
//   - SlopePenalty:    added cost for insertion/deletion steps.
//   - Psi:             psi relaxation: up to Psi leading/trailing samples of
//     either sequence may be skipped at no cost.
//   - ReturnPath:      backtrack and return the optimal warping path.
//     Requires MemoryMode=FullMatrix.
//   - MemoryMode:      FullMatrix, TwoRows or NoMemory.
//   - Metric:          Absolute (default) or Euclidean.
type Options struct {
	Window          int
	ItakuraMaxSlope float64
	SlopePenalty    float64
	Psi             int
	ReturnPath      bool
	MemoryMode      MemoryMode
	Metric          Metric
}

// DefaultOptions returns unconstrained, distance-only options.
func DefaultOptions() Options {
	return Options{
		Window:     -1,
		MemoryMode: TwoRows,
		Metric:     Absolute,
	}
}

// validate checks option combinations.
func (o *Options) validate() error {
	if o.Window < -1 {
		return ErrBadInput
	}
	if o.ItakuraMaxSlope != 0 && o.ItakuraMaxSlope <= 1 {
		return ErrBadInput
	}
	if o.ItakuraMaxSlope != 0 && o.Window >= 0 {
		return ErrBadInput
	}
	if o.SlopePenalty < 0 || o.Psi < 0 {
		return ErrBadInput
	}
	if o.ReturnPath && o.MemoryMode != FullMatrix {
		return ErrPathNeedsMatrix
	}

	return nil
}
