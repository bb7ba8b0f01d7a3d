package unionfind

import (
	"testing"

	"github.com/sarat-asymmetrica/haloforge/internal/spatial"
)

func TestFindComponentsSingletons(t *testing.T) {
	points := [][]float64{{0, 0, 0}, {100, 100, 100}, {200, 200, 200}}
	tree := spatial.NewTree(points, 0, false)
	ids, members := FindComponents(tree, 1.0)
	for i, id := range ids {
		if id != -2 {
			t.Errorf("point %d: id = %d, want -2 (singleton)", i, id)
		}
	}
	if len(members) != 0 {
		t.Errorf("expected no members for all-singleton input, got %v", members)
	}
}

func TestFindComponentsOneCluster(t *testing.T) {
	points := [][]float64{{0, 0, 0}, {0.1, 0, 0}, {0.2, 0, 0}, {50, 50, 50}}
	tree := spatial.NewTree(points, 0, false)
	ids, members := FindComponents(tree, 0.15)
	if ids[3] != -2 {
		t.Errorf("isolated point should be singleton, got id %d", ids[3])
	}
	clusterID := ids[0]
	if clusterID < 0 {
		t.Fatalf("clustered point 0 got sentinel id")
	}
	if ids[1] != clusterID {
		t.Errorf("point 1 should share component with point 0")
	}
	if len(members[clusterID]) < 2 {
		t.Errorf("expected >= 2 members in cluster, got %v", members[clusterID])
	}
}

func TestFindComponentsMinIDPropagation(t *testing.T) {
	// A chain 0-1-2-3 all within linking length of their neighbour;
	// the final component label must be the minimum index, 0.
	points := [][]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	tree := spatial.NewTree(points, 0, false)
	ids, members := FindComponents(tree, 1.5)
	for i, id := range ids {
		if id != 0 {
			t.Errorf("point %d: id = %d, want 0 (min propagation)", i, id)
		}
	}
	if len(members[0]) != 4 {
		t.Errorf("expected all 4 points in component 0, got %v", members[0])
	}
}

func TestFindComponentsSubsetPullsInBoundaryNeighbours(t *testing.T) {
	// Points 0,1 belong to the "subset" (this worker's partition);
	// point 2 belongs to a neighbouring partition but is within
	// linking length of point 1 and should be pulled into the
	// returned component despite not being in subset.
	points := [][]float64{{0, 0, 0}, {1, 0, 0}, {1.9, 0, 0}, {100, 100, 100}}
	tree := spatial.NewTree(points, 0, false)
	members := FindComponentsSubset(tree, 1.5, []int{0, 1})

	if len(members) != 1 {
		t.Fatalf("got %d components, want 1", len(members))
	}
	for _, m := range members {
		found := map[int]bool{}
		for _, idx := range m {
			found[idx] = true
		}
		if !found[2] {
			t.Errorf("expected boundary particle 2 to be pulled into the component, got %v", m)
		}
		if found[3] {
			t.Errorf("isolated particle 3 should not be included, got %v", m)
		}
	}
}

func TestFindComponentsSubsetEmptyWhenAllSingletons(t *testing.T) {
	points := [][]float64{{0, 0, 0}, {100, 100, 100}}
	tree := spatial.NewTree(points, 0, false)
	members := FindComponentsSubset(tree, 1.0, []int{0})
	if len(members) != 0 {
		t.Errorf("expected no components for an isolated subset particle, got %v", members)
	}
}

func TestFindComponentsIdempotent(t *testing.T) {
	points := [][]float64{{0, 0, 0}, {0.1, 0, 0}, {10, 10, 10}}
	tree := spatial.NewTree(points, 0, false)
	ids1, _ := FindComponents(tree, 0.2)
	ids2, _ := FindComponents(tree, 0.2)
	for i := range ids1 {
		if ids1[i] != ids2[i] {
			t.Errorf("re-running FindComponents changed result at %d: %d vs %d", i, ids1[i], ids2[i])
		}
	}
}
