// Package testutil provides brute-force oracles for the property tests
// exercising the run-length BWT and merge pipeline: a rotation-sort BWT
// builder, a full-occurrence-table reference FM-index independent of
// internal/fmindex's succinct one, and a roaring-bitmap traversal coverage
// checker. None of this is meant to scale past the small inputs property
// tests construct by hand.
package testutil

import "sort"

// NaiveBWT returns the Burrows-Wheeler transform of comps (one or more
// null-terminated sequences concatenated together, comp 0 reserved for the
// endmarker) computed by sorting every rotation directly, independent of
// and much slower than internal/bwt's construction path.
func NaiveBWT(comps []byte) []byte {
	n := len(comps)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return lessRotation(comps, order[i], order[j])
	})
	out := make([]byte, n)
	for row, start := range order {
		out[row] = comps[(start+n-1)%n]
	}
	return out
}

// lessRotation compares the rotations of comps starting at a and b
// lexicographically, wrapping around the end of comps.
func lessRotation(comps []byte, a, b int) bool {
	n := len(comps)
	for k := 0; k < n; k++ {
		ca := comps[(a+k)%n]
		cb := comps[(b+k)%n]
		if ca != cb {
			return ca < cb
		}
	}
	return false
}

// NaiveCount counts occurrences of pattern in comps by brute-force scanning
// every rotation, the simplest possible oracle for RefIndex.Count and for
// internal/fmindex.FMIndex.Count.
func NaiveCount(comps []byte, pattern []byte) int {
	n, m := len(comps), len(pattern)
	if m == 0 || m > n {
		return 0
	}
	count := 0
	for start := 0; start < n; start++ {
		if rotationHasPrefix(comps, start, pattern) {
			count++
		}
	}
	return count
}

func rotationHasPrefix(comps []byte, start int, pattern []byte) bool {
	n := len(comps)
	for k, want := range pattern {
		if comps[(start+k)%n] != want {
			return false
		}
	}
	return true
}
