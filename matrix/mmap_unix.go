// SPDX-License-Identifier: MIT

//go:build unix

package matrix

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const float64Size = int(unsafe.Sizeof(float64(0)))

// NewMappedCompact creates a Compact matrix of order n whose buffer lives in
// a memory-mapped temporary file under dir (os.TempDir() when empty).
//
// The file is removed by Close. On any construction error the file is closed
// and removed before returning.
func NewMappedCompact(n int, diag float64, dir string) (*Compact, error) {
	if n < 0 {
		return nil, ErrBadShape
	}
	length := CompactLen(n)
	if length == 0 {
		return NewCompact(n, diag)
	}

	f, err := os.CreateTemp(dir, "distance-*.mmap")
	if err != nil {
		return nil, fmt.Errorf("NewMappedCompact: create: %w", err)
	}
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}

	size := length * float64Size
	if err = f.Truncate(int64(size)); err != nil {
		cleanup()
		return nil, fmt.Errorf("NewMappedCompact: truncate %d bytes: %w", size, err)
	}

	raw, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("NewMappedCompact: mmap: %w", err)
	}

	data := unsafe.Slice((*float64)(unsafe.Pointer(&raw[0])), length)
	path := f.Name()

	return &Compact{
		n:    n,
		diag: diag,
		data: data,
		flush: func() error {
			return unix.Msync(raw, unix.MS_SYNC)
		},
		release: func() error {
			errUnmap := unix.Munmap(raw)
			errClose := f.Close()
			errRemove := os.Remove(path)
			for _, e := range []error{errUnmap, errClose, errRemove} {
				if e != nil {
					return fmt.Errorf("Compact.Close: %w", e)
				}
			}

			return nil
		},
	}, nil
}
