package dtw

import (
	"math"
)

// DTW computes the Dynamic Time Warping distance between a and b.
// Returns (distance, path, error).
//
// Algorithm Outline:
//  1. Let n = len(a), m = len(b). D has (n+1)x(m+1) cells.
//  2. Initialize D[0][0] = 0 and the borders to +Inf, except the first
//     Psi cells of each border which are 0 (free start).
//  3. For every admissible cell (Sakoe–Chiba band or Itakura parallelogram):
//     D[i][j] = cost(a[i-1], b[j-1]) + min(D[i-1][j]+p, D[i][j-1]+p, D[i-1][j-1])
//  4. distance = min over the last Psi cells of row n and column m (free end),
//     square-rooted for the Euclidean metric.
//  5. If ReturnPath, backtrack from the chosen end cell following the
//     predecessor with minimal D-value.
//
// If no admissible alignment exists the distance is +Inf and the path nil.
//
// Complexity:
//
//	Time   = O(n·m)
//	Memory = O(n·m) (FullMatrix) or O(m) (TwoRows, NoMemory)
func DTW(a, b []float64, opts *Options) (float64, []Coord, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return 0, nil, ErrEmptyInput
	}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if err := o.validate(); err != nil {
		return 0, nil, err
	}

	cost := costFunc(o.Metric)
	local := func(i, j int) float64 { return cost(a[i], b[j]) }

	if o.MemoryMode == FullMatrix {
		return fullDTW(n, m, local, &o)
	}

	return rollingDTW(n, m, local, &o), nil, nil
}

// costFunc returns the per-sample cost for a metric.
func costFunc(metric Metric) func(x, y float64) float64 {
	if metric == Euclidean {
		return func(x, y float64) float64 {
			d := x - y
			return d * d
		}
	}

	return func(x, y float64) float64 { return math.Abs(x - y) }
}

// finish converts an accumulated cost into the reported distance.
func finish(acc float64, metric Metric) float64 {
	if metric == Euclidean && !math.IsInf(acc, 1) {
		return math.Sqrt(acc)
	}

	return acc
}

// admissible reports whether 0-based cell (i, j) lies inside the active
// global constraint for sequences of length n and m.
func admissible(i, j, n, m int, o *Options) bool {
	if o.Window >= 0 {
		return abs(i-j) <= o.Window
	}
	if o.ItakuraMaxSlope > 0 && n > 1 && m > 1 {
		return itakura(i, j, n, m, o.ItakuraMaxSlope)
	}

	return true
}

// itakura tests the parallelogram bounds in the column scale of b.
func itakura(i, j, n, m int, s float64) bool {
	r := float64(m-1) / float64(n-1)
	x := float64(i) * r
	rx := float64(n-1-i) * r
	hi := math.Min(s*x, float64(m-1)-rx/s)
	lo := math.Max(x/s, float64(m-1)-s*rx)
	jf := float64(j)

	return jf >= math.Floor(lo) && jf <= math.Ceil(hi)
}

// fullDTW fills the whole matrix and optionally backtracks the path.
func fullDTW(n, m int, local func(i, j int) float64, o *Options) (float64, []Coord, error) {
	inf := math.Inf(1)
	dp := make([][]float64, n+1)
	for i := range dp {
		dp[i] = make([]float64, m+1)
		for j := range dp[i] {
			dp[i][j] = inf
		}
	}
	for i := 0; i <= n && i <= o.Psi; i++ {
		dp[i][0] = 0
	}
	for j := 0; j <= m && j <= o.Psi; j++ {
		dp[0][j] = 0
	}

	p := o.SlopePenalty
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if !admissible(i-1, j-1, n, m, o) {
				continue
			}
			best := min3(dp[i-1][j]+p, dp[i][j-1]+p, dp[i-1][j-1])
			dp[i][j] = local(i-1, j-1) + best
		}
	}

	ei, ej := endCell(n, m, o.Psi, func(i, j int) float64 { return dp[i][j] })
	acc := dp[ei][ej]
	dist := finish(acc, o.Metric)
	if !o.ReturnPath || math.IsInf(acc, 1) {
		return dist, nil, nil
	}

	return dist, backtrack(dp, ei, ej, p), nil
}

// endCell picks the free-end cell with the lowest accumulated cost.
func endCell(n, m, psi int, at func(i, j int) float64) (int, int) {
	bi, bj := n, m
	best := at(n, m)
	for j := m - 1; j >= m-psi && j >= 1; j-- {
		if v := at(n, j); v < best {
			bi, bj, best = n, j, v
		}
	}
	for i := n - 1; i >= n-psi && i >= 1; i-- {
		if v := at(i, m); v < best {
			bi, bj, best = i, m, v
		}
	}

	return bi, bj
}

// backtrack walks from (i, j) to the matrix border.
func backtrack(dp [][]float64, i, j int, penalty float64) []Coord {
	var path []Coord
	for i > 0 && j > 0 {
		path = append(path, Coord{I: i - 1, J: j - 1})
		match := dp[i-1][j-1]
		up := dp[i-1][j] + penalty
		left := dp[i][j-1] + penalty
		switch {
		case match <= up && match <= left:
			i--
			j--
		case up <= left:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}

	return path
}

// rollingDTW computes the distance with O(m) memory.
func rollingDTW(n, m int, local func(i, j int) float64, o *Options) float64 {
	inf := math.Inf(1)
	p := o.SlopePenalty

	prev := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = inf
		if j <= o.Psi {
			prev[j] = 0
		}
	}
	var curr []float64
	if o.MemoryMode == TwoRows {
		curr = make([]float64, m+1)
	}

	// the last column is needed for the psi free end
	lastCol := inf
	for i := 1; i <= n; i++ {
		row := curr
		if o.MemoryMode == NoMemory {
			row = prev
		}
		diag := prev[0]
		row[0] = inf
		if i <= o.Psi {
			row[0] = 0
		}
		for j := 1; j <= m; j++ {
			up := prev[j]
			if !admissible(i-1, j-1, n, m, o) {
				diag = up
				row[j] = inf
				continue
			}
			v := local(i-1, j-1) + min3(up+p, row[j-1]+p, diag)
			diag = up
			row[j] = v
		}
		if i < n && i >= n-o.Psi && row[m] < lastCol {
			lastCol = row[m]
		}
		if o.MemoryMode == TwoRows {
			prev, curr = curr, prev
		}
	}

	// prev now holds row n in both modes
	acc := prev[m]
	for j := m - 1; j >= m-o.Psi && j >= 1; j-- {
		if prev[j] < acc {
			acc = prev[j]
		}
	}
	if lastCol < acc {
		acc = lastCol
	}

	return finish(acc, o.Metric)
}

// abs returns the absolute value of an int.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// min3 returns the minimum of three float64 values.
func min3(a, b, c float64) float64 {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
