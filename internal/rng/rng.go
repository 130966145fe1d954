// Package rng - deterministic random streams shared by the barycenter
// seeding and the dataset balancing/splitting code.
//
// Determinism: the same seed yields identical draws across platforms.
// A *rand.Rand is NOT goroutine-safe; use Derive for per-worker streams.
package rng

import (
	"errors"
	"math/rand"
)

// DefaultSeed is used when callers pass seed==0.
const DefaultSeed int64 = 1

// ErrSampleSize indicates a sample larger than the population or negative.
var ErrSampleSize = errors.New("rng: sample size out of range")

// New returns a deterministic *rand.Rand; seed==0 ⇒ DefaultSeed.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// mixSeed applies a SplitMix64-style finalizer to parent and stream.
func mixSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// Derive creates an independent stream from base and a stream id.
// base.Int63() is consumed once so reused ids still diverge.
func Derive(base *rand.Rand, stream uint64) *rand.Rand {
	parent := DefaultSeed
	if base != nil {
		parent = base.Int63()
	}
	return rand.New(rand.NewSource(mixSeed(parent, stream)))
}

// Shuffle performs an in-place Fisher–Yates shuffle of a.
// A nil r uses the default stream.
func Shuffle(a []int, r *rand.Rand) {
	if len(a) <= 1 {
		return
	}
	if r == nil {
		r = New(0)
	}
	for i := len(a) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// Choice draws k distinct values from pool without replacement.
// The returned order is the draw order.
func Choice(pool []int, k int, r *rand.Rand) ([]int, error) {
	if k < 0 || k > len(pool) {
		return nil, ErrSampleSize
	}
	p := make([]int, len(pool))
	copy(p, pool)
	Shuffle(p, r)
	return p[:k], nil
}

// Range returns 0..n-1.
func Range(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}
