// SPDX-License-Identifier: MIT

package matrix

import "fmt"

// Snapshot is a heap copy of a DistanceMatrix suitable for serialization.
type Snapshot struct {
	N        int       `msgpack:"n"`
	Encoding Encoding  `msgpack:"encoding"`
	Triangle Triangle  `msgpack:"triangle"`
	Diagonal float64   `msgpack:"diagonal"`
	Values   []float64 `msgpack:"values"`
}

// Snap copies m into a Snapshot.
func Snap(m DistanceMatrix) (Snapshot, error) {
	s := Snapshot{N: m.Size(), Encoding: m.Encoding()}
	switch t := m.(type) {
	case *Dense:
		s.Triangle = t.tri
	case *Compact:
		if t.closed {
			return Snapshot{}, fmt.Errorf("Snap: %w", ErrClosed)
		}
		s.Diagonal = t.diag
	default:
		return Snapshot{}, fmt.Errorf("Snap: unsupported matrix type %T: %w", m, ErrBadShape)
	}
	s.Values = append([]float64(nil), m.Values()...)

	return s, nil
}

// Restore rebuilds the heap matrix described by s. The matrix owns a copy
// of s.Values, so restoring one snapshot twice gives independent matrices.
func (s Snapshot) Restore() (DistanceMatrix, error) {
	values := append([]float64(nil), s.Values...)
	switch s.Encoding {
	case EncodingDense:
		d, err := NewDenseFrom(s.N, values, s.Triangle)
		if err != nil {
			return nil, err
		}

		return d, nil
	case EncodingCompact:
		c, err := NewCompactFrom(s.N, values, s.Diagonal)
		if err != nil {
			return nil, err
		}

		return c, nil
	default:
		return nil, fmt.Errorf("Restore: encoding %d: %w", s.Encoding, ErrBadShape)
	}
}
