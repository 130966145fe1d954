// SPDX-License-Identifier: MIT

package matrix_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/katalvlaran/eventcluster/matrix"
)

// benchSizes are the matrix orders to benchmark.
var benchSizes = []int{128, 512, 2048}

// sinks to defeat dead-code elimination
var (
	sinkF float64
	sinkV []float64
	sinkI int
)

// randomCompact returns an order-n Compact filled from a fixed seed.
func randomCompact(b *testing.B, n int, seed int64) *matrix.Compact {
	b.Helper()
	c, err := matrix.NewCompact(n, 0)
	if err != nil {
		b.Fatal(err)
	}
	r := rand.New(rand.NewSource(seed))
	for k := range c.Values() {
		c.Values()[k] = r.Float64()
	}
	return c
}

func BenchmarkCompactIndex(b *testing.B) {
	const n = 4096
	for i := 0; i < b.N; i++ {
		sinkI = matrix.CompactIndex(n, i%n, (i*7+1)%n)
	}
}

func BenchmarkCompactPair(b *testing.B) {
	const n = 4096
	m := matrix.CompactLen(n)
	for i := 0; i < b.N; i++ {
		a, c := matrix.CompactPair(n, i%m)
		sinkI = a + c
	}
}

func BenchmarkCompact_At(b *testing.B) {
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			c := randomCompact(b, n, 1337)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				v, err := c.At(i%n, (i*31+1)%n)
				if err != nil {
					b.Fatal(err)
				}
				sinkF = v
			}
		})
	}
}

func BenchmarkCompact_ToDense(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			c := randomCompact(b, n, 4242)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				sinkV = c.ToDense().Values()
			}
		})
	}
}

func BenchmarkDense_Condensed(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			d := randomCompact(b, n, 7).ToDense()
			d.SetTriangle(matrix.Lower)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				v, err := matrix.Condensed(d)
				if err != nil {
					b.Fatal(err)
				}
				sinkV = v
			}
		})
	}
}
