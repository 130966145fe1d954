// SPDX-License-Identifier: MIT

package matrix

// Encoding tags the physical layout of a DistanceMatrix.
type Encoding int

const (
	// EncodingDense is an N×N row-major buffer.
	EncodingDense Encoding = iota

	// EncodingCompact is the strict upper triangle, length N(N-1)/2.
	EncodingCompact
)

// String implements fmt.Stringer.
func (e Encoding) String() string {
	switch e {
	case EncodingDense:
		return "dense"
	case EncodingCompact:
		return "compact"
	default:
		return "unknown"
	}
}

// DistanceMatrix is the uniform read surface over both encodings.
//
// At returns the stored value for (i,j). For Compact the accessor is
// symmetric (At(i,j) == At(j,i)) and the diagonal is the constant given at
// construction. For Dense the raw cell is returned, so a triangle-only Dense
// yields zero on the empty side until MirrorLower/MirrorUpper is applied.
type DistanceMatrix interface {
	// Size returns N, the number of events covered.
	Size() int

	// At retrieves the value for the pair (i, j).
	// Returns ErrOutOfRange for invalid indices.
	At(i, j int) (float64, error)

	// Encoding reports the physical layout.
	Encoding() Encoding

	// Values exposes the raw backing buffer (no copy). Mutations are visible.
	Values() []float64

	// Close releases external resources (mapped files). No-op for heap storage.
	Close() error
}
