// Package similarity turns event traces into pairwise distance or
// similarity matrices.
//
// Metrics:
//   - Pearson correlation (dense lower triangle for equal-length traces,
//     explicit pairwise loop for ragged traces)
//   - DTW distance, in memory or out-of-core through a memory-mapped
//     compact buffer filled block by block
//   - multivariate DTW with a selectable local dissimilarity, optional
//     Itakura/Sakoe–Chiba constraint and exponential kernel
//
// DistanceToSimilarity maps distances through a monotonically decreasing
// transform (exponential, gaussian, reciprocal, reverse), optionally tuned
// so a given distance quantile lands on a target similarity.
//
// Results of an Engine created WithCache are memoized by call signature.
package similarity
