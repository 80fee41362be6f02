package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jltsiren/bwt-merge/internal/bwt"
	"github.com/jltsiren/bwt-merge/internal/fmindex"
)

func TestRefIndexMatchesNaiveCount(t *testing.T) {
	text := []byte{1, 2, 1, 3, 2, 1, 4, 2, 1, 0}
	comps := NaiveBWT(text)
	b := bwt.FromComps(comps)
	ri := NewRefIndex(b)

	patterns := [][]byte{{1}, {2}, {1, 2}, {2, 1}, {1, 2, 1}, {3}, {0}, {4, 2, 1}, {9}}
	for _, p := range patterns {
		require.EqualValues(t, NaiveCount(text, p), ri.Count(p), "pattern %v", p)
	}
}

func TestRefIndexMatchesFMIndexCount(t *testing.T) {
	text := []byte{1, 2, 1, 1, 2, 3, 1, 2, 4, 0}
	comps := NaiveBWT(text)
	b := bwt.FromComps(comps)
	ri := NewRefIndex(b)
	idx := fmindex.New(b)

	patterns := [][]byte{{1}, {2}, {1, 2}, {2, 1, 1}, {4}, {0}}
	for _, p := range patterns {
		require.EqualValues(t, ri.Count(p), idx.Count(p), "pattern %v", p)
	}
}

func TestRefIndexEmptyPatternCountsWholeCollection(t *testing.T) {
	b := bwt.FromComps([]byte{0, 1, 2, 1, 0})
	ri := NewRefIndex(b)
	require.EqualValues(t, b.Size(), ri.Count(nil))
}
