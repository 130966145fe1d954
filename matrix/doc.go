// SPDX-License-Identifier: MIT

// Package matrix stores pairwise distance and similarity values between events.
//
// Two physical encodings are supported behind the DistanceMatrix interface:
//
//   - Dense:   N×N row-major buffer. May hold a full symmetric matrix or a
//     single triangle (the other one zeroed) when the producer halves work.
//   - Compact: 1-D strict upper triangle of length N(N-1)/2. Optionally backed
//     by a memory-mapped temporary file (NewMappedCompact) so that very large
//     matrices never live on the Go heap.
//
// The flat index of the unordered pair (a,b), a<b, in a Compact buffer is
//
//	k = N·a − a(a+1)/2 + (b − a − 1)
//
// and CompactPair inverts it. Downstream algorithms (linkage, graph building)
// read through At(i,j) and never special-case the encoding.
//
// Complexity:
//
//	At: O(1). CompactIndex/CompactPair: O(1). Condensed: O(N²).
package matrix
