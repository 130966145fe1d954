// Package modules finds groups of strongly similar events through a
// similarity graph.
//
// Pairs whose similarity falls in a half-open band [lower, upper) become
// undirected edges; the events they touch become nodes. Communities are then
// found by greedy modularity maximization (Clauset–Newman–Moore) and each
// node, edge and event id is labelled with its module.
//
// Both similarity encodings are accepted: a Dense matrix is scanned over its
// strict upper triangle (read symmetrically, so lower-only Pearson output
// works as is), a Compact matrix is scanned over its flat buffer and every
// selected index is mapped back to its (row, col) pair.
//
// Summarize reduces the node table to per-module spatial statistics (mean
// center, geometric median, standard distance).
package modules
