package testutil

import "github.com/RoaringBitmap/roaring"

// CoverageChecker records, via a roaring.Bitmap, which positions of B's
// BWT a rank-array builder's traversal has visited, so property tests can
// confirm the traversal partitions every suffix of B exactly once (no
// position skipped, none claimed twice) instead of only checking that the
// emitted runs' lengths sum to |B|.
type CoverageChecker struct {
	seen     *roaring.Bitmap
	overlaps uint64
}

// NewCoverageChecker returns an empty checker.
func NewCoverageChecker() *CoverageChecker {
	return &CoverageChecker{seen: roaring.New()}
}

// Visit marks every position in [lo, hi] (inclusive) as covered. A
// position already marked counts as an overlap rather than panicking, so
// a test can finish a run and inspect Overlaps() for a clear failure
// message instead of stopping at the first duplicate.
func (c *CoverageChecker) Visit(lo, hi uint64) {
	for pos := lo; ; pos++ {
		if !c.seen.CheckedAdd(uint32(pos)) {
			c.overlaps++
		}
		if pos == hi {
			break
		}
	}
}

// Overlaps returns how many positions were visited more than once.
func (c *CoverageChecker) Overlaps() uint64 {
	return c.overlaps
}

// FullyCovers reports whether exactly the positions [0, n) were visited,
// each exactly once.
func (c *CoverageChecker) FullyCovers(n uint64) bool {
	if n == 0 {
		return c.overlaps == 0 && c.seen.GetCardinality() == 0
	}
	return c.overlaps == 0 && c.seen.GetCardinality() == n && c.seen.Maximum() == uint32(n-1)
}
