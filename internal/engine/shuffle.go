package engine

import "math/rand"

// Shuffle returns a uniformly random permutation of items (Fisher-Yates).
// The input slice is never mutated; callers keep their original order.
func Shuffle[T any](rnd *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
