package modules

import (
	"sort"

	"gonum.org/v1/gonum/graph"
)

// GreedyModularity partitions g with the Clauset–Newman–Moore greedy
// modularity heuristic (unit weights, resolution 1).
//
// Starting from singletons, the pair of adjacent communities with the
// largest modularity gain is merged until every remaining gain is negative.
// Ties go to the pair with the smallest ids. Communities are returned with
// sorted members, ordered by decreasing size and then by smallest member.
func GreedyModularity(g graph.Undirected) [][]int64 {
	ids := make([]int64, 0)
	for it := g.Nodes(); it.Next(); {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	members := make(map[int64][]int64, len(ids))
	deg := make(map[int64]float64, len(ids))
	var twoM float64
	for _, u := range ids {
		members[u] = []int64{u}
		d := float64(g.From(u).Len())
		deg[u] = d
		twoM += d
	}
	if twoM == 0 {
		return order(members)
	}

	// a[c] is the fraction of edge ends in community c; dq[c][d] the gain of
	// merging c and d, kept only for adjacent pairs.
	a := make(map[int64]float64, len(ids))
	dq := make(map[int64]map[int64]float64, len(ids))
	for _, u := range ids {
		a[u] = deg[u] / twoM
		dq[u] = map[int64]float64{}
	}
	for _, u := range ids {
		for it := g.From(u); it.Next(); {
			v := it.Node().ID()
			if v == u {
				continue
			}
			dq[u][v] = 2/twoM - 2*a[u]*a[v]
		}
	}

	for {
		u, v, best, ok := bestPair(dq)
		if !ok || best < 0 {
			break
		}

		for w, dvw := range dq[v] {
			if w == u {
				continue
			}
			d, adjU := dq[u][w]
			if adjU {
				d += dvw
			} else {
				d = dvw - 2*a[u]*a[w]
			}
			dq[u][w] = d
			dq[w][u] = d
			delete(dq[w], v)
		}
		for w, duw := range dq[u] {
			if w == v {
				continue
			}
			if _, adjV := dq[v][w]; !adjV {
				d := duw - 2*a[v]*a[w]
				dq[u][w] = d
				dq[w][u] = d
			}
		}
		delete(dq[u], v)
		delete(dq, v)

		a[u] += a[v]
		delete(a, v)
		members[u] = append(members[u], members[v]...)
		delete(members, v)
	}

	return order(members)
}

// bestPair returns the adjacent pair (u<v) with the largest gain.
func bestPair(dq map[int64]map[int64]float64) (u, v int64, best float64, ok bool) {
	for c, row := range dq {
		for d, gain := range row {
			if d <= c {
				continue
			}
			if !ok || gain > best || (gain == best && (c < u || (c == u && d < v))) {
				u, v, best, ok = c, d, gain, true
			}
		}
	}
	return u, v, best, ok
}

func order(members map[int64][]int64) [][]int64 {
	out := make([][]int64, 0, len(members))
	for _, m := range members {
		sort.Slice(m, func(i, j int) bool { return m[i] < m[j] })
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}
