// Package dtw computes Dynamic Time Warping (DTW) distances between event
// traces, batched distance matrices and DTW barycenters.
//
// What is DTW?
//
//	DTW finds the best match between two sequences by warping the time
//	axis to minimize the cumulative distance. Event traces of different
//	durations with the same shape end up close to each other.
//
// Key features:
//   - FullMatrix mode: exact O(N·M) time & memory, optional warping path
//   - TwoRows / NoMemory modes: O(M) memory, distance only
//   - Sakoe–Chiba band (|i−j| ≤ w) or Itakura parallelogram
//   - slope penalty and psi relaxation (free leading/trailing samples)
//   - Absolute or Euclidean accumulation
//   - multivariate traces, dependent or independent warping, with a
//     choice of local dissimilarities
//   - compact pairwise matrices computed in row blocks, optionally on
//     every CPU
//   - DBA (DTW Barycenter Averaging) for cluster consensus traces
//
// Usage:
//
//	opts := dtw.DefaultOptions()
//	opts.Window = 10
//	opts.MemoryMode = dtw.FullMatrix
//	opts.ReturnPath = true
//	dist, path, err := dtw.DTW(a, b, &opts)
//
//	compact, err := dtw.DistanceMatrix(traces, &opts, true)
//	bc, err := dtw.DBA(members, dtw.DefaultDBAOptions())
package dtw
