package mergebuffer

import (
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jltsiren/bwt-merge/internal/rankarray"
	"github.com/jltsiren/bwt-merge/internal/rlarray"
	"github.com/jltsiren/bwt-merge/internal/tempfile"
)

func newTestBuffer(t *testing.T, slots int) (*MergeBuffer, afero.Fs) {
	fs := afero.NewMemMapFs()
	alloc, err := tempfile.New(fs, "/spill")
	require.NoError(t, err)
	return New(fs, alloc, slots), fs
}

func totalValueCount(files []rankarray.SpillFile) uint64 {
	var total uint64
	for _, f := range files {
		total += f.ValueCount
	}
	return total
}

func TestPlaceFillsSlotsBeforeSpilling(t *testing.T) {
	mb, _ := newTestBuffer(t, 2)

	require.NoError(t, mb.Place(rlarray.FromValues([]uint64{1, 2})))
	require.Empty(t, mb.SpillFiles())

	require.NoError(t, mb.Place(rlarray.FromValues([]uint64{3, 4})))
	require.Empty(t, mb.SpillFiles())

	// the second buffer emptied slot 0 on its way to slot 1, so the third
	// buffer claims slot 0 without spilling.
	require.NoError(t, mb.Place(rlarray.FromValues([]uint64{5})))
	require.Empty(t, mb.SpillFiles())

	// fourth buffer falls through both occupied slots and spills.
	require.NoError(t, mb.Place(rlarray.FromValues([]uint64{6})))
	require.Len(t, mb.SpillFiles(), 1)
}

func TestConcurrentPlaceConservesValueCount(t *testing.T) {
	mb, _ := newTestBuffer(t, 4)

	var wg sync.WaitGroup
	for w := 0; w < 20; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			base := uint64(w * 10)
			require.NoError(t, mb.Place(rlarray.FromValues([]uint64{base, base + 1, base + 2})))
		}()
	}
	wg.Wait()

	require.NoError(t, mb.Flush())
	require.EqualValues(t, 60, totalValueCount(mb.SpillFiles()))
}

func TestFlushOnEmptyBufferIsNoop(t *testing.T) {
	mb, _ := newTestBuffer(t, 3)
	require.NoError(t, mb.Flush())
	require.Empty(t, mb.SpillFiles())
}
