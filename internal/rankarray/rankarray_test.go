package rankarray

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jltsiren/bwt-merge/internal/rlarray"
)

func TestMultiWayMergeOrdersByAPosAndDoesNotCoalesce(t *testing.T) {
	fs := afero.NewMemMapFs()

	a := rlarray.FromRuns([]rlarray.Run{{Value: 0, Length: 3}, {Value: 5, Length: 2}, {Value: 9, Length: 1}})
	b := rlarray.FromRuns([]rlarray.Run{{Value: 5, Length: 4}, {Value: 6, Length: 1}})

	sfA, err := WriteSpill(fs, "/a.spill", a)
	require.NoError(t, err)
	sfB, err := WriteSpill(fs, "/b.spill", b)
	require.NoError(t, err)

	ra := New(fs, []SpillFile{sfA, sfB})
	require.NoError(t, ra.Open())

	var apos []uint64
	var totalValues uint64
	for {
		run, ok := ra.Next()
		if !ok {
			break
		}
		apos = append(apos, run.APos)
		totalValues += run.Length
	}

	require.Equal(t, []uint64{0, 5, 5, 6, 9}, apos, "runs must come out in non-decreasing APos order, uncoalesced")
	require.EqualValues(t, a.Values()+b.Values(), totalValues)

	require.NoError(t, ra.Close())
	exists, err := afero.Exists(fs, "/a.spill")
	require.NoError(t, err)
	require.False(t, exists, "Close must remove spill files")
}

func TestEmptyRankArray(t *testing.T) {
	fs := afero.NewMemMapFs()
	ra := New(fs, nil)
	require.NoError(t, ra.Open())
	_, ok := ra.Next()
	require.False(t, ok)
}
