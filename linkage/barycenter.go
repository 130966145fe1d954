package linkage

import (
	"fmt"

	"github.com/katalvlaran/eventcluster/dtw"
	"github.com/katalvlaran/eventcluster/events"
)

// Barycenter is the DBA consensus trace of one cluster.
type Barycenter struct {
	Cluster    int       `msgpack:"cluster"`
	Members    []int     `msgpack:"members"` // event ids
	Trace      []float64 `msgpack:"trace"`
	Count      int       `msgpack:"count"`
	Iterations int       `msgpack:"iterations"`
}

// BarycenterOptions configures DBA per cluster.
type BarycenterOptions struct {
	InitFraction  float64 `yaml:"init_fraction"`
	MaxIterations int     `yaml:"max_iterations"`
	Threshold     float64 `yaml:"threshold"`
	Penalty       float64 `yaml:"penalty"`
	Psi           int     `yaml:"psi"`
	Seed          int64   `yaml:"seed"`
}

// DefaultBarycenterOptions returns init fraction 0.1, 100 iterations and
// threshold 1e-5.
func DefaultBarycenterOptions() BarycenterOptions {
	d := dtw.DefaultDBAOptions()
	return BarycenterOptions{InitFraction: d.InitFraction, MaxIterations: d.MaxIterations, Threshold: d.Threshold}
}

// Barycenters computes one barycenter per cluster of the size table, in
// table order. labels holds the flat cluster of every row of evs.
func (l *Linker) Barycenters(sizes []ClusterSize, labels Assignment, evs *events.Events, o BarycenterOptions) ([]Barycenter, error) {
	if evs == nil || len(labels) != evs.Len() {
		return nil, fmt.Errorf("%w: %d labels for %d events", ErrInvalidInput, len(labels), evs.Len())
	}
	rows := map[int][]int{}
	for pos, c := range labels {
		rows[c] = append(rows[c], pos)
	}
	ids := evs.Indices()
	traces := evs.Traces()

	out := make([]Barycenter, 0, len(sizes))
	for _, cs := range sizes {
		members := rows[cs.Cluster]
		if len(members) == 0 {
			l.logger.Warnw("cluster without members", "cluster", cs.Cluster)
			continue
		}
		seqs := make([][]float64, len(members))
		idx := make([]int, len(members))
		for k, pos := range members {
			seqs[k] = traces[pos]
			idx[k] = ids[pos]
		}

		res, err := dtw.DBA(seqs, dtw.DBAOptions{
			InitFraction:  o.InitFraction,
			MaxIterations: o.MaxIterations,
			Threshold:     o.Threshold,
			Penalty:       o.Penalty,
			Psi:           o.Psi,
			Seed:          o.Seed,
		})
		if err != nil {
			return nil, fmt.Errorf("linkage: barycenter of cluster %d: %w", cs.Cluster, err)
		}
		if !res.Converged {
			l.logger.Debugw("barycenter did not converge", "cluster", cs.Cluster, "iterations", res.Iterations)
		}
		out = append(out, Barycenter{
			Cluster:    cs.Cluster,
			Members:    idx,
			Trace:      res.Barycenter,
			Count:      cs.Count,
			Iterations: res.Iterations,
		})
	}
	return out, nil
}
