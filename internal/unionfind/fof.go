package unionfind

import "github.com/sarat-asymmetrica/haloforge/internal/spatial"

// FindComponents runs the streaming friends-of-friends union-find
// spec.md §4.2 (component C2) describes over a spatial index built
// on n points: for every indexed point, query its neighbours within r
// and union it with each one. Because Union always re-points the
// larger root at the smaller (see DSU.Union), the result is exactly
// the "walk P, classify singleton / new component / merge via
// closure, final_ID = min of the closure" procedure spec.md §4.2
// spells out, expressed as canonical union-find instead of an
// explicit linked-component map (spec.md §9).
//
// componentID[p] is the component's root label for every p in a
// multi-member component, or the sentinel -2 if p is a singleton
// (its neighbourhood contains only itself). members maps each
// non-singleton root label to the indices in its component; singleton
// particles are omitted from members, per spec.md §3 "Candidate
// halo" lifecycle (discarded, not retained as a component).
func FindComponents(idx *spatial.Tree, r float64) (componentID []int, members map[int][]int) {
	n := idx.Len()
	dsu := New(n)

	neighbours := idx.QueryAll(r)
	for p, nbrs := range neighbours {
		for _, q := range nbrs {
			if q != p {
				dsu.Union(p, q)
			}
		}
	}

	size := make(map[int]int, n)
	for p := 0; p < n; p++ {
		size[dsu.Find(p)]++
	}

	componentID = make([]int, n)
	members = make(map[int][]int)
	for p := 0; p < n; p++ {
		root := dsu.Find(p)
		if size[root] == 1 {
			componentID[p] = -2
			continue
		}
		componentID[p] = root
		members[root] = append(members[root], p)
	}
	return componentID, members
}

// FindComponentsSubset runs the same union-find procedure as
// FindComponents, but only queries neighbours for the particle IDs in
// subset against the full (global, broadcast) index idx, rather than
// every indexed point. Because idx spans every particle, a boundary
// particle's neighbours can include IDs outside subset; those are
// folded into the returned component too, exactly the overlap spec.md
// §4.8 describes ("any shared particle between them ... signals they
// belong to one component") that C8's cross-rank merge relies on to
// stitch a halo split across two worker partitions back together.
//
// Grounded on spec.md §4.7/§4.9's "each worker runs C1+C2 locally"
// combined with §5's "the large spatial index over all particles is
// built once on the master and broadcast" — each worker's FOF pass
// queries the shared global index, scoped to its own particle range.
func FindComponentsSubset(idx *spatial.Tree, r float64, subset []int) map[int][]int {
	dsu := New(idx.Len())
	for _, p := range subset {
		for _, q := range idx.QueryIndex(p, r) {
			if q != p {
				dsu.Union(p, q)
			}
		}
	}

	roots := make(map[int]bool, len(subset))
	for _, p := range subset {
		roots[dsu.Find(p)] = true
	}

	size := make(map[int]int, len(roots))
	for root := range roots {
		size[root] = 0
	}
	// A component's full membership can extend beyond subset, so a
	// second pass over every indexed point is needed to recover it.
	for i := 0; i < idx.Len(); i++ {
		root := dsu.Find(i)
		if _, ok := size[root]; ok {
			size[root]++
		}
	}

	members := make(map[int][]int)
	for i := 0; i < idx.Len(); i++ {
		root := dsu.Find(i)
		if _, ok := roots[root]; !ok {
			continue
		}
		if size[root] < 2 {
			continue
		}
		members[root] = append(members[root], i)
	}
	return members
}
