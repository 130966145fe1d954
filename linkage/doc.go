// Package linkage clusters events hierarchically and summarizes every
// cluster by a DTW barycenter.
//
// Pipeline (GetBarycenters):
//
//	distance matrix ─► Build (agglomerative linkage)
//	                 ─► Cut (flat clusters + size table, size filters)
//	                 ─► Barycenters (DBA consensus trace per kept cluster)
//	                 ─► LookupTable (event id → cluster, default for dropped events)
//
// TwoStep runs the pipeline per group (e.g. per subject), pools the group
// barycenters into a synthetic event set, clusters that set again and
// composes both lookups, avoiding the O(N²) distance matrix over the whole
// population.
//
// Linkage methods: single, complete, average, weighted, centroid, median,
// ward. Cut criteria follow the usual flat-cluster semantics: distance,
// inconsistent, monocrit, maxclust, maxclust_monocrit. Cluster labels are
// 1-based.
package linkage
