// Package decompose implements the domain decomposition spec.md §4.7
// (component C7) describes: partitioning N particles into per-worker
// ID ranges and sizing the spatial task ("cell") count.
//
// Grounded on the original source's `decomp_nodes`
// (original_source/core/utilities.py), which slices a particle count
// into nbins contiguous ranges via evenly-spaced bin edges; this
// package generalises that into separate worker-range and
// cell-count/bounds helpers per spec.md §4.7.
package decompose

// Range is a half-open interval [Lo, Hi) of consecutive particle IDs.
type Range struct {
	Lo, Hi int
}

// Len returns the number of particle IDs in the range.
func (r Range) Len() int { return r.Hi - r.Lo }

// Partition splits n particles into workers ranges of consecutive IDs,
// each sized ceil(n/workers) except possibly the last, which is
// truncated to n (spec.md §4.7). workers must be >= 1.
func Partition(n, workers int) []Range {
	if workers < 1 {
		workers = 1
	}
	size := ceilDiv(n, workers)
	ranges := make([]Range, 0, workers)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		ranges = append(ranges, Range{Lo: lo, Hi: hi})
	}
	// n may not fill `workers` ranges (e.g. n < workers); callers
	// receive fewer, non-empty ranges rather than empty ones.
	return ranges
}

// Cells rounds requestedCells up to a value that is both >= workers
// and a multiple of workers (spec.md §4.7, "Cell count is
// configurable but adjusted to >= W and a multiple of W"). A
// requestedCells <= 0 defaults to exactly `workers` cells, one per
// worker.
func Cells(workers, requestedCells int) int {
	if workers < 1 {
		workers = 1
	}
	if requestedCells <= 0 {
		return workers
	}
	n := ceilDiv(requestedCells, workers) * workers
	if n < workers {
		n = workers
	}
	return n
}

// CellBounds splits n particles into `cells` contiguous ranges, the
// spatial-task granularity each worker processes (finer than its own
// Partition range when cells > workers), mirroring `decomp_nodes`'s
// evenly-spaced bin-edge slicing.
func CellBounds(n, cells int) [][2]int {
	if cells < 1 {
		cells = 1
	}
	edges := linspaceInt(0, n, cells)
	bounds := make([][2]int, 0, cells)
	for i := 0; i < len(edges)-1; i++ {
		bounds = append(bounds, [2]int{edges[i], edges[i+1]})
	}
	return bounds
}

// linspaceInt returns cells+1 integer edges evenly spaced between lo
// and hi inclusive, matching numpy.linspace(lo, hi, cells+1,
// dtype=int)'s truncating rounding.
func linspaceInt(lo, hi, cells int) []int {
	edges := make([]int, cells+1)
	span := hi - lo
	for i := 0; i <= cells; i++ {
		edges[i] = lo + (span*i)/cells
	}
	return edges
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
