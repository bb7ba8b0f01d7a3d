// Package unionfind implements the canonical union-find structure
// spec.md §9 calls for in place of the source's set-of-sets dict:
// "an array parent[] over component labels; find(x) returns root;
// union(a,b) links higher-rank to lower-rank root." Union always
// re-points the larger root at the smaller, so the root of any
// component is always its minimum member label — the "min-ID
// propagation" spec.md §4.2 describes.
//
// Grounded on the parallel union-find shape retrieved from the pack
// (other_examples/cdcf4a79_Geek0x0-pdf__clustering_parallel.go.go),
// simplified to the single-threaded case: C2 runs one per worker and
// the spec's concurrency model keeps workers free of shared mutable
// state, so the lock-free/atomic machinery that file uses for
// cross-goroutine safety is not needed here.
package unionfind

// DSU is a disjoint-set-union structure over dense integer labels
// [0, n).
type DSU struct {
	parent []int
}

// New returns a DSU where every label starts in its own singleton set.
func New(n int) *DSU {
	d := &DSU{parent: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
	}
	return d
}

// Find returns the root label of x's component, compressing the path
// as it walks.
func (d *DSU) Find(x int) int {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		d.parent[x], x = root, d.parent[x]
	}
	return root
}

// Union merges the components containing a and b, always re-pointing
// the larger root at the smaller so Find always returns the minimum
// label in the component. Returns false if a and b were already in
// the same component.
func (d *DSU) Union(a, b int) bool {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return false
	}
	if ra < rb {
		d.parent[rb] = ra
	} else {
		d.parent[ra] = rb
	}
	return true
}
