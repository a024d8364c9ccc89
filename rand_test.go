package scenegen

import (
	"testing"
)

func TestSubSeedStable(t *testing.T) {
	if subSeed(42, "synth", "A") != subSeed(42, "synth", "A") {
		t.Error("Same labels should derive the same sub-seed")
	}
	if subSeed(42, "synth", "A") == subSeed(42, "synth", "B") {
		t.Error("Different labels should derive different sub-seeds")
	}
	if subSeed(42, "synth", "A") == subSeed(43, "synth", "A") {
		t.Error("Different seeds should derive different sub-seeds")
	}
	// label boundaries matter: ("ab", "c") and ("a", "bc") are distinct units
	if subSeed(42, "ab", "c") == subSeed(42, "a", "bc") {
		t.Error("Label concatenation should not collide")
	}
}

func TestWeightedIndexBounds(t *testing.T) {
	r := newRand(subSeed(1, "test"))
	weights := []float64{0.0, 3.0, 1.0}
	counts := make([]int, len(weights))
	for i := 0; i < 1000; i++ {
		idx := weightedIndex(r, weights)
		if idx < 0 || idx >= len(weights) {
			t.Fatalf("Index %d out of bounds", idx)
		}
		counts[idx]++
	}
	if counts[0] != 0 {
		t.Errorf("Zero-weight cell drawn %d times", counts[0])
	}
	if counts[1] <= counts[2] {
		t.Errorf("Weight 3 cell drawn %d times, weight 1 cell %d times", counts[1], counts[2])
	}
}

func TestWeightedIndexAllZero(t *testing.T) {
	r := newRand(7)
	for i := 0; i < 100; i++ {
		idx := weightedIndex(r, []float64{0, 0, 0})
		if idx < 0 || idx > 2 {
			t.Fatalf("Index %d out of bounds", idx)
		}
	}
}
