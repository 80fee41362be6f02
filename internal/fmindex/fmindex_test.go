package fmindex

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jltsiren/bwt-merge/internal/bwt"
)

// naiveCount counts pattern occurrences in text by brute force, used as an
// oracle against the FM-index's backward search.
func naiveCount(text, pattern []byte) int {
	if len(pattern) == 0 || len(pattern) > len(text) {
		return 0
	}
	n := 0
	for i := 0; i+len(pattern) <= len(text); i++ {
		match := true
		for j, c := range pattern {
			if text[i+j] != c {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

// naiveBWT builds the comp-value BWT of a single $-terminated sequence by
// brute-force rotation sort, the simplest possible oracle.
func naiveBWT(comps []byte) []byte {
	n := len(comps)
	rotations := make([]int, n)
	for i := range rotations {
		rotations[i] = i
	}
	rotated := func(i int) []byte {
		out := make([]byte, n)
		for k := 0; k < n; k++ {
			out[k] = comps[(i+k)%n]
		}
		return out
	}
	sort.Slice(rotations, func(i, j int) bool {
		a, b := rotated(rotations[i]), rotated(rotations[j])
		for k := 0; k < n; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	bwtOut := make([]byte, n)
	for i, r := range rotations {
		bwtOut[i] = comps[(r+n-1)%n]
	}
	return bwtOut
}

func TestFindMatchesNaiveCount(t *testing.T) {
	// comp alphabet: 0=$, 1=A, 2=C, 3=G, 4=T
	text := []byte{1, 2, 1, 3, 2, 1, 4, 2, 1, 0}
	comps := naiveBWT(text)
	b := bwt.FromComps(comps)
	idx := New(b)

	patterns := [][]byte{
		{1}, {2}, {1, 2}, {2, 1}, {1, 2, 1}, {3}, {0}, {4, 2, 1},
	}
	for _, p := range patterns {
		want := naiveCount(text, p)
		got := idx.Count(p)
		require.EqualValues(t, want, got, "pattern %v", p)
	}
}

func TestEmptyPatternMatchesWholeRange(t *testing.T) {
	comps := []byte{0, 1, 2, 1, 0}
	b := bwt.FromComps(comps)
	idx := New(b)
	r := idx.Find(nil)
	require.EqualValues(t, 0, r.Low)
	require.EqualValues(t, b.Size()-1, r.High)
	require.EqualValues(t, b.Size(), r.Length())
}

func TestMergeSumsAlphabetCounts(t *testing.T) {
	a := New(bwt.FromComps([]byte{0, 1, 2, 1}))
	b := New(bwt.FromComps([]byte{0, 2, 2}))
	merged := bwt.FromComps([]byte{0, 1, 2, 1, 0, 2, 2})
	m := Merge(merged, a, b)
	for c := 0; c < bwt.Sigma; c++ {
		require.Equal(t, a.Alpha.Count(c)+b.Alpha.Count(c), m.Alpha.Count(c))
	}
}
