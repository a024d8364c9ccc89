package scenegen

import (
	"reflect"
	"testing"
)

func TestIPFFitMatchesMarginals(t *testing.T) {
	rowMarginal := []float64{40, 35, 25}
	colMarginal := []float64{60, 40}
	joint := ipfFit(rowMarginal, colMarginal)

	for i := range rowMarginal {
		sum := 0.0
		for j := range colMarginal {
			sum += joint[i][j]
		}
		if Round(sum-rowMarginal[i], 0.00005) != 0 {
			t.Errorf("Row %d sums to %f, want %f", i, sum, rowMarginal[i])
		}
	}
	for j := range colMarginal {
		sum := 0.0
		for i := range rowMarginal {
			sum += joint[i][j]
		}
		if Round(sum-colMarginal[j], 0.00005) != 0 {
			t.Errorf("Column %d sums to %f, want %f", j, sum, colMarginal[j])
		}
	}
}

func TestIPFFitDeterministic(t *testing.T) {
	first := ipfFit([]float64{10, 20, 30}, []float64{15, 45})
	second := ipfFit([]float64{10, 20, 30}, []float64{15, 45})
	if !reflect.DeepEqual(first, second) {
		t.Error("Same marginals should yield identical joints")
	}
}

func TestApportionConservation(t *testing.T) {
	weights := []float64{0.1, 0.7, 0.15, 0.05}
	for _, total := range []int{0, 1, 7, 100, 1231} {
		counts := apportion(weights, total)
		sum := 0
		for _, c := range counts {
			sum += c
		}
		if sum != total {
			t.Errorf("Counts for total %d sum to %d", total, sum)
		}
	}
}

func TestApportionProportions(t *testing.T) {
	counts := apportion([]float64{1, 1, 2}, 100)
	want := []int{25, 25, 50}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Got %v, want %v", counts, want)
	}
}

func TestApportionTieBreakByIndex(t *testing.T) {
	// two equal fractional remainders; the extra unit goes to the lower index
	counts := apportion([]float64{1, 1}, 3)
	want := []int{2, 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Got %v, want %v", counts, want)
	}
}

func TestApportionZeroWeights(t *testing.T) {
	counts := apportion([]float64{0, 0, 0}, 5)
	if counts[0] != 5 || counts[1] != 0 || counts[2] != 0 {
		t.Errorf("Degenerate weights should collapse into the first cell, got %v", counts)
	}
}

func TestFlatten(t *testing.T) {
	flat := flatten([][]float64{{1, 2}, {3, 4}})
	want := []float64{1, 2, 3, 4}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("Got %v, want %v", flat, want)
	}
	if flatten(nil) != nil {
		t.Error("Empty joint should flatten to nil")
	}
}

func TestApportionNoNegativeCounts(t *testing.T) {
	counts := apportion([]float64{5, -3, 2}, 10)
	sum := 0
	for i, c := range counts {
		if c < 0 {
			t.Errorf("Cell %d got negative count %d", i, c)
		}
		sum += c
	}
	if sum != 10 {
		t.Errorf("Counts sum to %d, want 10", sum)
	}
}
