package dtw_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/eventcluster/dtw"
)

// sinks to defeat dead-code elimination
var (
	sinkF float64
	sinkV []float64
)

// randomTraces returns count noisy sine traces of length n from a fixed seed.
func randomTraces(count, n int, seed int64) [][]float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([][]float64, count)
	for k := range out {
		phase := r.Float64() * math.Pi
		out[k] = make([]float64, n)
		for i := range out[k] {
			out[k][i] = math.Sin(float64(i)/8+phase) + 0.1*r.NormFloat64()
		}
	}
	return out
}

// benchmarkDTW runs DTW on two traces of length n using opts.
func benchmarkDTW(b *testing.B, n int, opts dtw.Options) {
	tr := randomTraces(2, n, 7)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d, _, err := dtw.DTW(tr[0], tr[1], &opts)
		if err != nil {
			b.Fatalf("DTW failed: %v", err)
		}
		sinkF = d
	}
}

// BenchmarkDTW_TwoRows measures the default rolling-row mode.
func BenchmarkDTW_TwoRows(b *testing.B) {
	for _, n := range []int{100, 500} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			benchmarkDTW(b, n, dtw.DefaultOptions())
		})
	}
}

// BenchmarkDTW_FullMatrixPath measures full-matrix mode with backtracking.
func BenchmarkDTW_FullMatrixPath(b *testing.B) {
	opts := dtw.DefaultOptions()
	opts.MemoryMode = dtw.FullMatrix
	opts.ReturnPath = true
	benchmarkDTW(b, 500, opts)
}

// BenchmarkDTW_Window measures a Sakoe-Chiba band of 10% of the length.
func BenchmarkDTW_Window(b *testing.B) {
	opts := dtw.DefaultOptions()
	opts.Window = 50
	benchmarkDTW(b, 500, opts)
}

// BenchmarkDBA averages 16 traces of length 64.
func BenchmarkDBA(b *testing.B) {
	tr := randomTraces(16, 64, 11)
	opts := dtw.DefaultDBAOptions()
	opts.MaxIterations = 10
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := dtw.DBA(tr, opts)
		if err != nil {
			b.Fatal(err)
		}
		sinkV = res.Barycenter
	}
}

// BenchmarkDistanceMatrix compares the serial and parallel pairwise fill.
func BenchmarkDistanceMatrix(b *testing.B) {
	tr := randomTraces(48, 64, 3)
	opts := dtw.DefaultOptions()
	for _, parallel := range []bool{false, true} {
		b.Run(fmt.Sprintf("parallel=%v", parallel), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				d, err := dtw.DistanceMatrix(tr, &opts, parallel)
				if err != nil {
					b.Fatal(err)
				}
				sinkV = d
			}
		})
	}
}

// BenchmarkPairwiseBlock measures one row block of a larger collection.
func BenchmarkPairwiseBlock(b *testing.B) {
	tr := randomTraces(64, 64, 5)
	opts := dtw.DefaultOptions()
	pair := func(i, j int) (float64, error) {
		d, _, err := dtw.DTW(tr[i], tr[j], &opts)
		return d, err
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		block, err := dtw.PairwiseBlock(len(tr), 16, 32, pair, true)
		if err != nil {
			b.Fatal(err)
		}
		sinkV = block
	}
}
