package modules

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/katalvlaran/eventcluster/events"
	"github.com/katalvlaran/eventcluster/internal/log"
	"github.com/katalvlaran/eventcluster/matrix"
)

// DefaultModule labels nodes and edges outside any module.
const DefaultModule = -1

// Node is one event that kept at least one edge.
type Node struct {
	Pos        int     `msgpack:"pos"`         // row in the node table
	EventPos   int     `msgpack:"event_pos"`   // row in the events table
	EventIndex int     `msgpack:"event_index"` // event id
	X          float64 `msgpack:"x"`
	Y          float64 `msgpack:"y"`
	Module     int     `msgpack:"module"`
}

// Edge joins two node rows.
type Edge struct {
	Source int `msgpack:"source"`
	Target int `msgpack:"target"`
	Module int `msgpack:"module"`
}

// Bounds is the half-open similarity band [Bounds[0], Bounds[1]).
type Bounds [2]float64

// DefaultBounds keeps pairs with similarity in [0.98, 1).
func DefaultBounds() Bounds { return Bounds{0.98, 1} }

// Contains reports whether v lies in the band.
func (b Bounds) Contains(v float64) bool { return v >= b[0] && v < b[1] }

// Finder builds module graphs over one recording.
type Finder struct {
	evs    *events.Events
	logger *zap.SugaredLogger
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// New returns a Finder over evs. Events from several subjects are accepted
// with a warning; modules are meant to be found within one recording.
func New(evs *events.Events, opts ...Option) *Finder {
	f := &Finder{evs: evs, logger: log.GetSugaredLogger()}
	for _, o := range opts {
		o(f)
	}
	if evs.IsMultiSubject() {
		f.logger.Warnw("multiple values for subject_id found; modules expect a single recording",
			"events", evs.Len())
	}
	return f
}

// NodeEdgeTables selects every unordered pair (a<b) whose similarity lies in
// b and returns the touched events as nodes (ordered by event position) and
// the pairs as edges between node rows.
func (f *Finder) NodeEdgeTables(sim matrix.DistanceMatrix, b Bounds) ([]Node, []Edge, error) {
	if f.evs.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: no events", ErrInvalidInput)
	}
	if sim == nil || sim.Size() != f.evs.Len() {
		return nil, nil, fmt.Errorf("%w: similarity matrix does not match %d events", ErrInvalidInput, f.evs.Len())
	}
	if math.IsNaN(b[0]) || math.IsNaN(b[1]) || b[0] > b[1] {
		return nil, nil, fmt.Errorf("%w: bounds %v", ErrInvalidInput, b)
	}

	pairs, err := selectPairs(sim, b)
	if err != nil {
		return nil, nil, err
	}

	seen := map[int]bool{}
	for _, p := range pairs {
		seen[p[0]] = true
		seen[p[1]] = true
	}
	positions := make([]int, 0, len(seen))
	for p := range seen {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	rows := f.evs.Rows()
	nodes := make([]Node, len(positions))
	row := make(map[int]int, len(positions))
	for r, p := range positions {
		ev := rows[p]
		nodes[r] = Node{Pos: r, EventPos: p, EventIndex: ev.Index, X: ev.Cx, Y: ev.Cy, Module: DefaultModule}
		row[p] = r
	}
	edges := make([]Edge, len(pairs))
	for k, p := range pairs {
		edges[k] = Edge{Source: row[p[0]], Target: row[p[1]], Module: DefaultModule}
	}

	f.logger.Infow("remaining connections",
		"nodes", len(nodes), "events", f.evs.Len(),
		"percent", float64(len(nodes))/float64(f.evs.Len())*100)

	return nodes, edges, nil
}

// selectPairs returns the (a,b), a<b, pairs whose similarity lies in b.
func selectPairs(sim matrix.DistanceMatrix, b Bounds) ([][2]int, error) {
	n := sim.Size()
	var pairs [][2]int

	if c, ok := sim.(*matrix.Compact); ok {
		for k, v := range c.Values() {
			if b.Contains(v) {
				i, j := matrix.CompactPair(n, k)
				pairs = append(pairs, [2]int{i, j})
			}
		}
		return pairs, nil
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v, err := matrix.SymmetricAt(sim, i, j)
			if err != nil {
				return nil, err
			}
			if b.Contains(v) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs, nil
}

// Graph is the labelled outcome of BuildGraph.
type Graph struct {
	Nodes      []Node
	Edges      []Edge
	Lookup     *events.LookupTable // event id → module
	Modularity float64
}

// BuildGraph builds the node and edge tables, detects communities and
// labels everything with its module. Modules are numbered by decreasing
// size. An edge takes the module of its source; with excludeCross set, an
// edge whose endpoints disagree gets DefaultModule instead.
func (f *Finder) BuildGraph(sim matrix.DistanceMatrix, b Bounds, excludeCross bool) (Graph, error) {
	nodes, edges, err := f.NodeEdgeTables(sim, b)
	if err != nil {
		return Graph{}, err
	}
	f.logger.Infow("building graph", "nodes", len(nodes), "edges", len(edges))

	g := simple.NewUndirectedGraph()
	for _, n := range nodes {
		g.AddNode(simple.Node(n.Pos))
	}
	for _, e := range edges {
		g.SetEdge(simple.Edge{F: simple.Node(e.Source), T: simple.Node(e.Target)})
	}

	comms := GreedyModularity(g)
	for m, members := range comms {
		for _, id := range members {
			nodes[id].Module = m
		}
	}
	q := 0.0
	if len(edges) > 0 {
		q = community.Q(g, toNodes(comms), 1)
	}
	f.logger.Infow("detected modules", "modules", len(comms), "modularity", q)

	for k := range edges {
		src, dst := nodes[edges[k].Source].Module, nodes[edges[k].Target].Module
		edges[k].Module = src
		if excludeCross && src != dst {
			edges[k].Module = DefaultModule
		}
	}

	lookup := events.NewLookupTable(DefaultModule)
	for _, n := range nodes {
		lookup.Set(n.EventIndex, n.Module)
	}

	return Graph{Nodes: nodes, Edges: edges, Lookup: lookup, Modularity: q}, nil
}

func toNodes(comms [][]int64) [][]graph.Node {
	out := make([][]graph.Node, len(comms))
	for i, c := range comms {
		out[i] = make([]graph.Node, len(c))
		for j, id := range c {
			out[i][j] = simple.Node(id)
		}
	}
	return out
}
