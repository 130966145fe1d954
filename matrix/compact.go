// SPDX-License-Identifier: MIT

// Package matrix - Compact storage (strict upper triangle).
//
// A Compact matrix of order N stores N(N-1)/2 values, one per unordered pair
// (a,b) with a<b, in row-major order of the upper triangle:
//
//	(0,1) (0,2) … (0,N-1) (1,2) … (N-2,N-1)
//
// The diagonal is not stored; At(i,i) returns the constant diag given at
// construction (0 for distances, the transformed value after a similarity map).

package matrix

import (
	"fmt"
	"math"
)

const ctxCompact = "Compact"

// Compact is a symmetric matrix stored as its strict upper triangle.
type Compact struct {
	n       int
	diag    float64
	data    []float64
	release func() error // non-nil for mapped storage
	flush   func() error
	closed  bool
}

var _ DistanceMatrix = (*Compact)(nil)

// CompactLen returns N(N-1)/2, the buffer length for order n.
func CompactLen(n int) int {
	if n < 2 {
		return 0
	}

	return n * (n - 1) / 2
}

// CompactIndex maps the unordered pair (i,j), i != j, to its flat index.
// The arguments may be given in either order.
// Complexity: O(1).
func CompactIndex(n, i, j int) int {
	if i > j {
		i, j = j, i
	}

	return n*i - i*(i+1)/2 + (j - i - 1)
}

// CompactPair inverts CompactIndex: flat index k → (a,b) with a<b.
// Complexity: O(1).
func CompactPair(n, k int) (int, int) {
	// Closed form for the row of k in the upper triangle; the loops only
	// correct floating point rounding at the boundaries.
	a := n - 2 - int(math.Floor(math.Sqrt(float64(-8*k+4*n*(n-1)-7))/2.0-0.5))
	for a > 0 && CompactIndex(n, a, a+1) > k {
		a--
	}
	for a < n-2 && CompactIndex(n, a+1, a+2) <= k {
		a++
	}
	b := k - CompactIndex(n, a, a+1) + a + 1

	return a, b
}

// NewCompact allocates a heap-backed compact matrix of order n.
func NewCompact(n int, diag float64) (*Compact, error) {
	if n < 0 {
		return nil, ErrBadShape
	}

	return &Compact{n: n, diag: diag, data: make([]float64, CompactLen(n))}, nil
}

// NewCompactFrom wraps an existing upper-triangle buffer without copying.
func NewCompactFrom(n int, data []float64, diag float64) (*Compact, error) {
	if n < 0 || len(data) != CompactLen(n) {
		return nil, fmt.Errorf("NewCompactFrom: n=%d len=%d: %w", n, len(data), ErrBadShape)
	}

	return &Compact{n: n, diag: diag, data: data}, nil
}

// Size returns N.
func (m *Compact) Size() int { return m.n }

// Encoding returns EncodingCompact.
func (m *Compact) Encoding() Encoding { return EncodingCompact }

// Values returns the upper-triangle buffer.
func (m *Compact) Values() []float64 { return m.data }

// Diagonal returns the implicit diagonal value.
func (m *Compact) Diagonal() float64 { return m.diag }

// SetDiagonal changes the implicit diagonal value.
func (m *Compact) SetDiagonal(v float64) { m.diag = v }

// Mapped reports whether the buffer lives in a memory-mapped file.
func (m *Compact) Mapped() bool { return m.release != nil }

// At returns the value for (i,j); symmetric, diagonal constant.
func (m *Compact) At(i, j int) (float64, error) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return 0, matrixErrorf(ctxCompact, ctxAt, i, j, ErrOutOfRange)
	}
	if m.closed {
		return 0, matrixErrorf(ctxCompact, ctxAt, i, j, ErrClosed)
	}
	if i == j {
		return m.diag, nil
	}

	return m.data[CompactIndex(m.n, i, j)], nil
}

// Set assigns v to the pair (i,j), i != j.
func (m *Compact) Set(i, j int, v float64) error {
	if i < 0 || i >= m.n || j < 0 || j >= m.n || i == j {
		return matrixErrorf(ctxCompact, ctxSet, i, j, ErrOutOfRange)
	}
	if m.closed {
		return matrixErrorf(ctxCompact, ctxSet, i, j, ErrClosed)
	}
	m.data[CompactIndex(m.n, i, j)] = v

	return nil
}

// Flush writes dirty pages of a mapped buffer back to its file.
// No-op for heap storage.
func (m *Compact) Flush() error {
	if m.flush == nil || m.closed {
		return nil
	}

	return m.flush()
}

// Close unmaps and deletes the backing file of a mapped matrix. Safe to call
// more than once; no-op for heap storage.
func (m *Compact) Close() error {
	if m.release == nil || m.closed {
		return nil
	}
	m.closed = true
	m.data = nil

	return m.release()
}

// ToDense expands into a Full Dense matrix (heap).
func (m *Compact) ToDense() *Dense {
	d := &Dense{n: m.n, data: make([]float64, m.n*m.n)}
	var k int
	for i := 0; i < m.n; i++ {
		d.data[i*m.n+i] = m.diag
		for j := i + 1; j < m.n; j++ {
			d.data[i*m.n+j] = m.data[k]
			d.data[j*m.n+i] = m.data[k]
			k++
		}
	}

	return d
}
