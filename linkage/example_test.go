package linkage_test

import (
	"fmt"
	"math"

	"github.com/katalvlaran/eventcluster/linkage"
	"github.com/katalvlaran/eventcluster/matrix"
)

// ExampleBuild clusters the points 0, 1, 3 and 7 on a line with single
// linkage. Ids 0..3 are points; 4 and 5 are the clusters made by the
// first two merges.
func ExampleBuild() {
	pos := []float64{0, 1, 3, 7}
	rows := make([][]float64, len(pos))
	for i := range pos {
		rows[i] = make([]float64, len(pos))
		for j := range pos {
			rows[i][j] = math.Abs(pos[i] - pos[j])
		}
	}
	D, err := matrix.NewDenseRows(rows)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	z, err := linkage.Build(D, linkage.Single, linkage.Precomputed)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	for _, m := range z {
		fmt.Println(m.A, m.B, m.Distance, m.Size)
	}
	// Output:
	// 0 1 1 2
	// 2 4 2 3
	// 3 5 4 4
}

// ExampleFlat cuts the same dendrogram at a distance and by cluster count.
func ExampleFlat() {
	z := linkage.Matrix{
		{A: 0, B: 1, Distance: 1, Size: 2},
		{A: 2, B: 4, Distance: 2, Size: 3},
		{A: 3, B: 5, Distance: 4, Size: 4},
	}

	byDistance, _ := linkage.Flat(z, 1.5, linkage.Distance, linkage.DefaultCutOptions())
	byCount, _ := linkage.Flat(z, 2, linkage.MaxClust, linkage.DefaultCutOptions())
	fmt.Println(byDistance)
	fmt.Println(byCount)
	// Output:
	// [3 3 2 1]
	// [2 2 2 1]
}
