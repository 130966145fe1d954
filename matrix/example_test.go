// SPDX-License-Identifier: MIT

package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/eventcluster/matrix"
)

// ExampleCompactIndex maps pairs of a 4-event matrix onto the flat
// upper-triangle buffer and back.
//
// Layout for N=4 (row-major, i<j):
//
//	(0,1)=0 (0,2)=1 (0,3)=2 (1,2)=3 (1,3)=4 (2,3)=5
func ExampleCompactIndex() {
	fmt.Println(matrix.CompactLen(4))
	fmt.Println(matrix.CompactIndex(4, 1, 2), matrix.CompactIndex(4, 2, 1))
	fmt.Println(matrix.CompactPair(4, 5))
	// Output:
	// 6
	// 3 3
	// 2 3
}

// ExampleCompact stores one value per unordered pair and reads it from
// either side; the diagonal is a constant.
func ExampleCompact() {
	c, err := matrix.NewCompact(3, 0)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	_ = c.Set(0, 2, 5)

	v, _ := c.At(2, 0)
	diag, _ := c.At(1, 1)
	fmt.Println(v, diag, c.Values())
	// Output:
	// 5 0 [0 5 0]
}

// ExampleSymmetricAt reads a lower-triangle Dense matrix through its
// filled half; the raw upper cell stays zero.
func ExampleSymmetricAt() {
	d, err := matrix.NewDenseFrom(2, []float64{1, 0, 0.5, 1}, matrix.Lower)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	raw, _ := d.At(0, 1)
	sym, _ := matrix.SymmetricAt(d, 0, 1)
	flat, _ := matrix.Condensed(d)
	fmt.Println(raw, sym, flat)
	// Output:
	// 0 0.5 [0.5]
}
