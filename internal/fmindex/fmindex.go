// Package fmindex wraps a bwt.BWT with an alphabet.Alphabet's cumulative
// count table to provide LF-mapping and backward search, in the teacher's
// style of a thin index object holding a BWT plus a C[] table (see
// fmi.go's IndexC.Search).
package fmindex

import (
	"github.com/jltsiren/bwt-merge/internal/alphabet"
	"github.com/jltsiren/bwt-merge/internal/bwt"
)

// FMIndex is a BWT paired with the alphabet's cumulative count table.
type FMIndex struct {
	BWT   *bwt.BWT
	Alpha *alphabet.Alphabet
}

// New builds an FM-index view over an already-built BWT, deriving the
// alphabet's C[] table from the BWT's own per-comp counts.
func New(b *bwt.BWT) *FMIndex {
	var counts [bwt.Sigma]uint64
	for c := byte(0); c < bwt.Sigma; c++ {
		counts[c] = b.Count(c)
	}
	return &FMIndex{BWT: b, Alpha: alphabet.WithCounts(counts[:])}
}

// LF returns (C[BWT[i]] + rank(i, BWT[i]), BWT[i]).
func (f *FMIndex) LF(i uint64) (uint64, byte) {
	rank, comp := f.BWT.InverseSelect(i)
	return f.Alpha.C(int(comp)) + rank, comp
}

// LFChar returns C[c] + rank(i, c).
func (f *FMIndex) LFChar(i uint64, c byte) uint64 {
	return f.Alpha.C(int(c)) + f.BWT.Rank(i, c)
}

// Range is an inclusive [Low, High] interval of BWT positions; High < Low
// denotes an empty range.
type Range struct {
	Low, High uint64
}

// Empty reports whether the range contains no positions.
func (r Range) Empty() bool {
	return r.High+1 <= r.Low
}

// Length returns the number of positions in the range.
func (r Range) Length() uint64 {
	if r.Empty() {
		return 0
	}
	return r.High - r.Low + 1
}

// LFRange returns [LF(range.Low, c), LF(range.High+1, c) - 1].
func (f *FMIndex) LFRange(r Range, c byte) Range {
	return Range{
		Low:  f.LFChar(r.Low, c),
		High: f.LFChar(r.High+1, c) - 1,
	}
}

// Find runs backward search for pattern (a slice of comp values, not raw
// characters) and returns the matching BWT range. An empty pattern matches
// the full BWT range.
func (f *FMIndex) Find(pattern []byte) Range {
	if len(pattern) == 0 {
		return Range{Low: 0, High: f.BWT.Size() - 1}
	}

	last := len(pattern) - 1
	c := pattern[last]
	r := Range{Low: f.Alpha.C(int(c)), High: f.Alpha.C(int(c)+1) - 1}

	for i := last - 1; i >= 0 && !r.Empty(); i-- {
		r = f.LFRange(r, pattern[i])
	}
	return r
}

// Count returns the number of occurrences of pattern in the indexed
// collection.
func (f *FMIndex) Count(pattern []byte) uint64 {
	return f.Find(pattern).Length()
}

// Merge combines two FM-indexes over BWTs that have already been spliced
// together (by bwt.Interleave) into a single FM-index whose C[] table is
// the elementwise sum of the inputs'.
func Merge(merged *bwt.BWT, a, b *FMIndex) *FMIndex {
	if a.Alpha.Sigma() != b.Alpha.Sigma() {
		panic("fmindex.Merge: alphabets differ")
	}
	var counts [bwt.Sigma]uint64
	for c := 0; c < bwt.Sigma; c++ {
		counts[c] = a.Alpha.Count(c) + b.Alpha.Count(c)
	}
	return &FMIndex{BWT: merged, Alpha: alphabet.WithCounts(counts[:])}
}
