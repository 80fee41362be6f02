package statsutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jltsiren/bwt-merge/internal/bwt"
)

func TestCollectMatchesBWTAccessors(t *testing.T) {
	b := bwt.FromComps([]byte{0, 1, 2, 3, 0, 4, 0})
	stats := Collect(b)

	require.Equal(t, b.Sequences(), stats.Sequences)
	require.Equal(t, b.Size(), stats.Size)
	require.Equal(t, b.CharacterCounts(), stats.Counts)
	require.Equal(t, b.Hash(), stats.Hash)
}

func TestEqualDetectsDivergence(t *testing.T) {
	a := Collect(bwt.FromComps([]byte{0, 1, 2, 0}))
	same := Collect(bwt.FromComps([]byte{0, 1, 2, 0}))
	different := Collect(bwt.FromComps([]byte{0, 2, 1, 0}))

	require.True(t, Equal(a, same))
	require.False(t, Equal(a, different))
}
