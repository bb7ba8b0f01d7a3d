package spatial

import (
	"math/rand"
	"sort"
	"testing"
)

func bruteForce(points [][]float64, boxSize float64, periodic bool, pt []float64, r float64) []int {
	tmp := &Tree{dim: len(pt), boxSize: boxSize, periodic: periodic}
	var out []int
	for i, p := range points {
		if tmp.sqDist(pt, p) <= r*r {
			out = append(out, i)
		}
	}
	return out
}

func sortedInts(xs []int) []int {
	out := append([]int(nil), xs...)
	sort.Ints(out)
	return out
}

func TestQueryMatchesBruteForceNonPeriodic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	points := make([][]float64, 200)
	for i := range points {
		points[i] = []float64{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 10}
	}
	tree := NewTree(points, 0, false)

	for trial := 0; trial < 20; trial++ {
		q := points[rng.Intn(len(points))]
		r := rng.Float64() * 3
		got := sortedInts(tree.Query(q, r))
		want := sortedInts(bruteForce(points, 0, false, q, r))
		if len(got) != len(want) {
			t.Fatalf("trial %d: got %d results, want %d", trial, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("trial %d: result mismatch at %d: got %v want %v", trial, i, got, want)
			}
		}
	}
}

func TestQueryMatchesBruteForcePeriodic(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	boxSize := 10.0
	points := make([][]float64, 200)
	for i := range points {
		points[i] = []float64{rng.Float64() * boxSize, rng.Float64() * boxSize, rng.Float64() * boxSize}
	}
	tree := NewTree(points, boxSize, true)

	for trial := 0; trial < 20; trial++ {
		q := points[rng.Intn(len(points))]
		r := rng.Float64() * 3
		got := sortedInts(tree.Query(q, r))
		want := sortedInts(bruteForce(points, boxSize, true, q, r))
		if len(got) != len(want) {
			t.Fatalf("trial %d: got %d results, want %d", trial, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("trial %d: mismatch at %d: got %v want %v", trial, i, got, want)
			}
		}
	}
}

func TestQueryAlwaysIncludesSelf(t *testing.T) {
	points := [][]float64{{0, 0, 0}, {100, 100, 100}}
	tree := NewTree(points, 0, false)
	res := tree.Query(points[0], 0)
	if len(res) != 1 || res[0] != 0 {
		t.Fatalf("self query = %v, want [0]", res)
	}
}

func TestQueryAcrossPeriodicBoundary(t *testing.T) {
	boxSize := 10.0
	points := [][]float64{{0.1, 5, 5}, {9.9, 5, 5}}
	tree := NewTree(points, boxSize, true)
	res := tree.Query(points[0], 0.5)
	if len(sortedInts(res)) != 2 {
		t.Fatalf("expected periodic wrap to find both points, got %v", res)
	}
}

func TestEmptyTree(t *testing.T) {
	tree := NewTree(nil, 10, true)
	if got := tree.Query([]float64{1, 2, 3}, 5); got != nil {
		t.Fatalf("expected nil query result on empty tree, got %v", got)
	}
}
