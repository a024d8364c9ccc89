package scenegen

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// subSeed derives a deterministic per-unit seed from the global seed and a
// set of labels (zone id, stage name, household id). Every parallel unit
// draws from its own sub-stream, so worker count never changes output.
func subSeed(seed uint64, labels ...string) uint64 {
	hasher := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	hasher.Write(buf[:])
	for _, label := range labels {
		hasher.Write([]byte(label))
		hasher.Write([]byte{0})
	}
	return hasher.Sum64()
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}

// weightedIndex draws an index proportionally to the given non-negative
// weights. Falls back to a uniform draw when all weights are zero.
func weightedIndex(r *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return r.Intn(len(weights))
	}
	draw := r.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if draw < acc {
			return i
		}
	}
	return len(weights) - 1
}

// weightedIndexInts is weightedIndex over integer counts.
func weightedIndexInts(r *rand.Rand, counts []int) int {
	weights := make([]float64, len(counts))
	for i, c := range counts {
		weights[i] = float64(c)
	}
	return weightedIndex(r, weights)
}
