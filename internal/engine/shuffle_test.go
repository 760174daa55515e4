package engine

import (
	"math/rand"
	"sort"
	"testing"
)

func TestShuffleIsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, size := range []int{0, 1, 2, 5, 100} {
		in := make([]int, size)
		for i := range in {
			in[i] = i * 3
		}

		out := Shuffle(rnd, in)
		if len(out) != len(in) {
			t.Fatalf("size %d: expected length %d, got %d", size, len(in), len(out))
		}

		sorted := make([]int, len(out))
		copy(sorted, out)
		sort.Ints(sorted)
		for i, v := range sorted {
			if v != i*3 {
				t.Fatalf("size %d: output is not a permutation of input: %v", size, out)
			}
		}
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	in := []string{"a", "b", "c", "d", "e", "f"}
	want := []string{"a", "b", "c", "d", "e", "f"}

	for i := 0; i < 50; i++ {
		_ = Shuffle(rnd, in)
	}
	for i := range in {
		if in[i] != want[i] {
			t.Fatalf("input mutated at %d: %v", i, in)
		}
	}
}
