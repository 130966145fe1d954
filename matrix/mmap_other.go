// SPDX-License-Identifier: MIT

//go:build !unix

package matrix

// NewMappedCompact is unavailable on this platform; callers fall back to heap
// storage after logging a warning.
func NewMappedCompact(n int, diag float64, dir string) (*Compact, error) {
	return nil, ErrMmapUnsupported
}
