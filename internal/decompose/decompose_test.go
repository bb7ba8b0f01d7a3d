package decompose

import "testing"

func TestPartitionCoversAllParticlesExactly(t *testing.T) {
	ranges := Partition(100, 4)
	if len(ranges) != 4 {
		t.Fatalf("got %d ranges, want 4", len(ranges))
	}
	var total int
	prevHi := 0
	for _, r := range ranges {
		if r.Lo != prevHi {
			t.Fatalf("range %v not contiguous with previous hi %d", r, prevHi)
		}
		total += r.Len()
		prevHi = r.Hi
	}
	if total != 100 {
		t.Errorf("total particles covered = %d, want 100", total)
	}
	if ranges[len(ranges)-1].Hi != 100 {
		t.Errorf("last range hi = %d, want 100", ranges[len(ranges)-1].Hi)
	}
}

func TestPartitionUnevenSplit(t *testing.T) {
	ranges := Partition(10, 3)
	var total int
	for _, r := range ranges {
		total += r.Len()
	}
	if total != 10 {
		t.Errorf("total = %d, want 10", total)
	}
}

func TestPartitionFewerParticlesThanWorkers(t *testing.T) {
	ranges := Partition(2, 8)
	var total int
	for _, r := range ranges {
		total += r.Len()
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestCellsAtLeastWorkersAndMultiple(t *testing.T) {
	cases := []struct{ workers, requested, want int }{
		{4, 0, 4},
		{4, 1, 4},
		{4, 4, 4},
		{4, 5, 8},
		{3, 10, 12},
	}
	for _, c := range cases {
		got := Cells(c.workers, c.requested)
		if got != c.want {
			t.Errorf("Cells(%d, %d) = %d, want %d", c.workers, c.requested, got, c.want)
		}
		if got%c.workers != 0 {
			t.Errorf("Cells(%d, %d) = %d, not a multiple of workers", c.workers, c.requested, got)
		}
		if got < c.workers {
			t.Errorf("Cells(%d, %d) = %d, less than workers", c.workers, c.requested, got)
		}
	}
}

func TestCellBoundsCoversRange(t *testing.T) {
	bounds := CellBounds(97, 8)
	if len(bounds) != 8 {
		t.Fatalf("got %d bounds, want 8", len(bounds))
	}
	if bounds[0][0] != 0 {
		t.Errorf("first bound lo = %d, want 0", bounds[0][0])
	}
	if bounds[len(bounds)-1][1] != 97 {
		t.Errorf("last bound hi = %d, want 97", bounds[len(bounds)-1][1])
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i][0] != bounds[i-1][1] {
			t.Errorf("bound %d not contiguous with previous: %v vs %v", i, bounds[i], bounds[i-1])
		}
	}
}
