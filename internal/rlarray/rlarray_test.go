package rlarray

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(r *RLArray) []Run {
	var out []Run
	it := NewIterator(r)
	for !it.End() {
		out = append(out, it.Run())
		it.Next()
	}
	return out
}

func TestFromValuesCoalescesRuns(t *testing.T) {
	r := FromValues([]uint64{5, 3, 3, 3, 1, 5, 1})
	runs := collect(r)
	require.Equal(t, []Run{{1, 2}, {3, 3}, {5, 2}}, runs)
	require.EqualValues(t, 3, r.Size())
	require.EqualValues(t, 7, r.Values())
}

func TestFromRunsSorts(t *testing.T) {
	r := FromRuns([]Run{{10, 2}, {0, 1}, {5, 4}})
	runs := collect(r)
	require.Equal(t, []Run{{0, 1}, {5, 4}, {10, 2}}, runs)
}

func TestMergeCoalescesOverlap(t *testing.T) {
	a := FromRuns([]Run{{0, 1}, {3, 2}, {7, 1}})
	b := FromRuns([]Run{{1, 5}, {3, 1}, {9, 2}})
	merged := Merge(a, b)
	runs := collect(merged)
	require.Equal(t, []Run{{0, 1}, {1, 5}, {3, 3}, {7, 1}, {9, 2}}, runs)

	var total uint64
	for _, r := range runs {
		total += r.Length
	}
	require.Equal(t, merged.Values(), total)
}

func TestMergeWithEmpty(t *testing.T) {
	a := FromRuns([]Run{{2, 3}})
	b := New()
	merged := Merge(a, b)
	require.Equal(t, []Run{{2, 3}}, collect(merged))
}

func TestEmptyRLArray(t *testing.T) {
	r := New()
	require.EqualValues(t, 0, r.Size())
	it := NewIterator(r)
	require.True(t, it.End())
}
