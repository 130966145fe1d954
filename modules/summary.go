package modules

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point is a spatial location.
type Point struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

// ModuleSummary holds the spatial statistics of one module. The geometric
// fields are nil for a module without members.
type ModuleSummary struct {
	Module       int      `msgpack:"module"`
	MeanCenter   *Point   `msgpack:"mean_center"`
	MedianCenter *Point   `msgpack:"median_center"`
	StdDistance  *float64 `msgpack:"std_distance"`
	Coordinates  []Point  `msgpack:"coordinates"`
	NumEvents    int      `msgpack:"num_events"`
}

// Summarize groups nodes by module. When modules is empty every module
// present in nodes is summarized, in ascending order; otherwise exactly the
// listed modules are, in the given order.
func Summarize(nodes []Node, modules ...int) []ModuleSummary {
	groups := map[int][]Point{}
	for _, n := range nodes {
		groups[n.Module] = append(groups[n.Module], Point{X: n.X, Y: n.Y})
	}
	if len(modules) == 0 {
		for m := range groups {
			modules = append(modules, m)
		}
		sort.Ints(modules)
	}

	out := make([]ModuleSummary, len(modules))
	for i, m := range modules {
		pts := groups[m]
		s := ModuleSummary{Module: m, Coordinates: pts, NumEvents: len(pts)}
		if len(pts) > 0 {
			mean := meanCenter(pts)
			median := geometricMedian(pts, mean)
			std := stdDistance(pts, mean)
			s.MeanCenter, s.MedianCenter, s.StdDistance = &mean, &median, &std
		}
		out[i] = s
	}
	return out
}

func split(pts []Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func meanCenter(pts []Point) Point {
	xs, ys := split(pts)
	return Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}

// stdDistance is the root mean squared distance to the mean center.
func stdDistance(pts []Point, c Point) float64 {
	xs, ys := split(pts)
	floats.AddConst(-c.X, xs)
	floats.AddConst(-c.Y, ys)
	return math.Sqrt((floats.Dot(xs, xs) + floats.Dot(ys, ys)) / float64(len(pts)))
}

const (
	weiszfeldIterations = 1000
	weiszfeldTolerance  = 1e-10
)

// geometricMedian minimizes the summed Euclidean distance to pts with
// Weiszfeld iterations started at start. A data point hit exactly is left
// out of the weights of that step.
func geometricMedian(pts []Point, start Point) Point {
	cur := start
	for it := 0; it < weiszfeldIterations; it++ {
		var num Point
		var den float64
		for _, p := range pts {
			d := math.Hypot(p.X-cur.X, p.Y-cur.Y)
			if d < weiszfeldTolerance {
				continue
			}
			num.X += p.X / d
			num.Y += p.Y / d
			den += 1 / d
		}
		if den == 0 {
			return cur
		}
		next := Point{X: num.X / den, Y: num.Y / den}
		shift := math.Hypot(next.X-cur.X, next.Y-cur.Y)
		cur = next
		if shift < weiszfeldTolerance {
			break
		}
	}
	return cur
}
