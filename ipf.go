package scenegen

import (
	"math"
	"sort"
)

const (
	ipfMaxIterations = 100
	ipfTolerance     = 1e-9
)

// ipfFit fits a joint distribution to the given row and column marginals by
// iterative proportional fitting, starting from a uniform seed matrix.
// Marginals with differing totals are reconciled towards the row total.
func ipfFit(rowMarginal, colMarginal []float64) [][]float64 {
	rows := len(rowMarginal)
	cols := len(colMarginal)
	joint := make([][]float64, rows)
	for i := range joint {
		joint[i] = make([]float64, cols)
		for j := range joint[i] {
			joint[i][j] = 1.0
		}
	}
	for iter := 0; iter < ipfMaxIterations; iter++ {
		maxDelta := 0.0
		// scale rows
		for i := 0; i < rows; i++ {
			sum := 0.0
			for j := 0; j < cols; j++ {
				sum += joint[i][j]
			}
			if sum == 0 {
				continue
			}
			factor := rowMarginal[i] / sum
			for j := 0; j < cols; j++ {
				joint[i][j] *= factor
			}
			if d := math.Abs(factor - 1.0); d > maxDelta {
				maxDelta = d
			}
		}
		// scale columns
		for j := 0; j < cols; j++ {
			sum := 0.0
			for i := 0; i < rows; i++ {
				sum += joint[i][j]
			}
			if sum == 0 {
				continue
			}
			colTarget := colMarginal[j]
			factor := colTarget / sum
			for i := 0; i < rows; i++ {
				joint[i][j] *= factor
			}
			if d := math.Abs(factor - 1.0); d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < ipfTolerance {
			break
		}
	}
	return joint
}

// apportion distributes an exact integer total across cells proportionally
// to the given weights using deterministic largest-remainder rounding (ties
// broken by ascending cell index). The returned counts always sum to total.
func apportion(weights []float64, total int) []int {
	counts := make([]int, len(weights))
	if total <= 0 || len(weights) == 0 {
		return counts
	}
	weightSum := 0.0
	for _, w := range weights {
		if w > 0 {
			weightSum += w
		}
	}
	if weightSum == 0 {
		// degenerate: everything into the first cell
		counts[0] = total
		return counts
	}

	type remainder struct {
		idx  int
		frac float64
	}
	assigned := 0
	remainders := make([]remainder, 0, len(weights))
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		exact := float64(total) * w / weightSum
		floor := int(math.Floor(exact))
		counts[i] = floor
		assigned += floor
		remainders = append(remainders, remainder{idx: i, frac: exact - float64(floor)})
	}
	sort.Slice(remainders, func(i, j int) bool {
		if remainders[i].frac != remainders[j].frac {
			return remainders[i].frac > remainders[j].frac
		}
		return remainders[i].idx < remainders[j].idx
	})
	for i := 0; assigned < total; i++ {
		counts[remainders[i%len(remainders)].idx]++
		assigned++
	}
	return counts
}

// flatten returns the joint matrix as a row-major weight vector.
func flatten(joint [][]float64) []float64 {
	if len(joint) == 0 {
		return nil
	}
	cols := len(joint[0])
	flat := make([]float64, 0, len(joint)*cols)
	for i := range joint {
		flat = append(flat, joint[i]...)
	}
	return flat
}
