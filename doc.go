// Package eventcluster groups and classifies extracted time-series events.
//
// The module is a set of engines wired through a shared events table:
//
//	events/      the Event table, its columns and LookupTable
//	matrix/      dense and compact (optionally memory-mapped) distance matrices
//	dtw/         dynamic time warping, multivariate DTW and DBA barycenters
//	similarity/  Pearson and DTW distance matrices, distance→similarity transforms
//	linkage/     hierarchical clustering, flat cuts, barycenters, two-step clustering
//	modules/     similarity graph, greedy-modularity modules and spatial summaries
//	classify/    classifier registry, dataset split/balance, training and scoring
//	coincidence/ alignment of events with an external incidence signal
//	cache/       msgpack memoization on disk
//	config/      YAML pipeline parameters
//
// Data flows from events through similarity into linkage or modules, and
// the resulting labels (or any embedding) feed classify and coincidence.
// cmd/eventclust runs the clustering stages from a YAML file.
package eventcluster
