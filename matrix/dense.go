// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major).
//
// Purpose:
//   - Hold an N×N distance/similarity matrix in a flat buffer (offset = i*N + j).
//   - Remember which triangle is populated so producers can halve their work
//     (e.g. Pearson keeps only the lower triangle) while consumers still read
//     a symmetric value through SymmetricAt.
//
// Complexity quicksheet:
//   - NewDense: O(N²) zero-init; At/Set: O(1); MirrorLower/MirrorUpper: O(N²).

package matrix

import (
	"fmt"
	"strings"
)

// Triangle records which part of a Dense matrix carries data.
type Triangle int

const (
	// Full means both triangles are populated (symmetric or not).
	Full Triangle = iota

	// Lower means only i >= j cells are meaningful; the upper triangle is zero.
	Lower

	// Upper means only i <= j cells are meaningful; the lower triangle is zero.
	Upper
)

const (
	ctxDense = "Dense"
	ctxAt    = "At"
	ctxSet   = "Set"
)

// Dense is a square row-major matrix.
type Dense struct {
	n    int
	data []float64
	tri  Triangle
}

var _ DistanceMatrix = (*Dense)(nil)

// NewDense allocates an n×n zero matrix. n may be zero.
// Returns ErrBadShape for negative n.
func NewDense(n int) (*Dense, error) {
	if n < 0 {
		return nil, ErrBadShape
	}

	return &Dense{n: n, data: make([]float64, n*n)}, nil
}

// NewDenseFrom wraps an existing row-major buffer of length n*n without copying.
// Returns ErrBadShape if the length does not match.
func NewDenseFrom(n int, data []float64, tri Triangle) (*Dense, error) {
	if n < 0 || len(data) != n*n {
		return nil, fmt.Errorf("NewDenseFrom: n=%d len=%d: %w", n, len(data), ErrBadShape)
	}

	return &Dense{n: n, data: data, tri: tri}, nil
}

// NewDenseRows copies a [][]float64 square matrix into a Full Dense.
func NewDenseRows(rows [][]float64) (*Dense, error) {
	n := len(rows)
	d := &Dense{n: n, data: make([]float64, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("NewDenseRows: row %d has %d columns, want %d: %w", i, len(row), n, ErrBadShape)
		}
		copy(d.data[i*n:(i+1)*n], row)
	}

	return d, nil
}

// Size returns N.
func (m *Dense) Size() int { return m.n }

// Encoding returns EncodingDense.
func (m *Dense) Encoding() Encoding { return EncodingDense }

// Values returns the row-major backing buffer.
func (m *Dense) Values() []float64 { return m.data }

// Triangle reports which triangle carries data.
func (m *Dense) Triangle() Triangle { return m.tri }

// SetTriangle marks the populated triangle. Producers call it after filling.
func (m *Dense) SetTriangle(t Triangle) { m.tri = t }

// Close is a no-op for heap storage.
func (m *Dense) Close() error { return nil }

// At returns the raw cell (i, j).
func (m *Dense) At(i, j int) (float64, error) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return 0, matrixErrorf(ctxDense, ctxAt, i, j, ErrOutOfRange)
	}

	return m.data[i*m.n+j], nil
}

// Set assigns v to cell (i, j).
func (m *Dense) Set(i, j int, v float64) error {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return matrixErrorf(ctxDense, ctxSet, i, j, ErrOutOfRange)
	}
	m.data[i*m.n+j] = v

	return nil
}

// MirrorLower copies the lower triangle onto the upper one and marks the
// matrix Full.
func (m *Dense) MirrorLower() {
	for i := 0; i < m.n; i++ {
		for j := 0; j < i; j++ {
			m.data[j*m.n+i] = m.data[i*m.n+j]
		}
	}
	m.tri = Full
}

// MirrorUpper copies the upper triangle onto the lower one and marks the
// matrix Full.
func (m *Dense) MirrorUpper() {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			m.data[j*m.n+i] = m.data[i*m.n+j]
		}
	}
	m.tri = Full
}

// Clone returns a deep copy.
func (m *Dense) Clone() *Dense {
	data := make([]float64, len(m.data))
	copy(data, m.data)

	return &Dense{n: m.n, data: data, tri: m.tri}
}

// String implements fmt.Stringer for debugging.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.n; i++ {
		sb.WriteString("[")
		for j := 0; j < m.n; j++ {
			fmt.Fprintf(&sb, "%g", m.data[i*m.n+j])
			if j < m.n-1 {
				sb.WriteString(", ")
			}
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
