// SPDX-License-Identifier: MIT

package matrix

import "fmt"

// SymmetricAt reads (i,j) as if m were a full symmetric matrix.
//
// Behavior highlights:
//   - Compact: plain At (already symmetric).
//   - Dense Lower/Upper: the populated triangle is read for either order.
//   - Dense Full: raw cell.
func SymmetricAt(m DistanceMatrix, i, j int) (float64, error) {
	d, ok := m.(*Dense)
	if !ok {
		return m.At(i, j)
	}
	switch d.tri {
	case Lower:
		if j > i {
			i, j = j, i
		}
	case Upper:
		if i > j {
			i, j = j, i
		}
	}

	return d.At(i, j)
}

// Condensed returns the strict upper triangle of m as a fresh slice of length
// N(N-1)/2, reading through SymmetricAt. Compact input is copied verbatim.
// Complexity: O(N²).
func Condensed(m DistanceMatrix) ([]float64, error) {
	n := m.Size()
	if c, ok := m.(*Compact); ok {
		if c.closed {
			return nil, fmt.Errorf("Condensed: %w", ErrClosed)
		}
		out := make([]float64, len(c.data))
		copy(out, c.data)

		return out, nil
	}

	out := make([]float64, CompactLen(n))
	var (
		k   int
		v   float64
		err error
	)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if v, err = SymmetricAt(m, i, j); err != nil {
				return nil, err
			}
			out[k] = v
			k++
		}
	}

	return out, nil
}

// Rows materializes m as a full symmetric [][]float64. Used by algorithms
// that treat each row as an observation vector.
// Complexity: O(N²) time and memory.
func Rows(m DistanceMatrix) ([][]float64, error) {
	n := m.Size()
	rows := make([][]float64, n)
	var (
		v   float64
		err error
	)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v, err = SymmetricAt(m, i, j); err != nil {
				return nil, err
			}
			rows[i][j] = v
			rows[j][i] = v
		}
	}

	return rows, nil
}

// Map returns a new matrix of the same encoding with f applied to every
// stored value (and to the implicit diagonal for Compact). The input is
// left untouched.
func Map(m DistanceMatrix, f func(float64) float64) (DistanceMatrix, error) {
	switch t := m.(type) {
	case *Dense:
		out := t.Clone()
		for i, v := range out.data {
			out.data[i] = f(v)
		}

		return out, nil
	case *Compact:
		if t.closed {
			return nil, fmt.Errorf("Map: %w", ErrClosed)
		}
		out, _ := NewCompact(t.n, f(t.diag))
		for i, v := range t.data {
			out.data[i] = f(v)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("Map: unsupported matrix type %T: %w", m, ErrBadShape)
	}
}
