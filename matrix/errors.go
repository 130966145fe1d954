// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All constructors and accessors return these sentinels (optionally wrapped
// with context via %w); callers match them with errors.Is.

package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape is returned when a requested size is negative or a buffer
	// length does not match the encoding (N² for Dense, N(N-1)/2 for Compact).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that an index is outside [0,N).
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrMmapUnsupported is returned by NewMappedCompact on platforms without mmap.
	ErrMmapUnsupported = errors.New("matrix: memory mapping not supported on this platform")

	// ErrClosed indicates access to a mapped matrix after Close.
	ErrClosed = errors.New("matrix: matrix is closed")
)

// matrixErrorf wraps an error with method context and the offending coordinates.
func matrixErrorf(kind, method string, row, col int, err error) error {
	return fmt.Errorf("%s.%s(%d,%d): %w", kind, method, row, col, err)
}
