// Package mergebuffer implements the shared cascade of merge-buffer slots
// that rank-array builder workers (internal/rankbuild) feed into, spilling
// to disk through internal/rankarray when every slot is occupied. It is
// the Go translation of spec.md §4.8's MergeBuffer pipeline; the original
// C++ tool has no single MergeBuffer class in the retrieved sources, so
// this type is built directly from the pipeline's pseudocode rather than a
// line-for-line port.
package mergebuffer

import (
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/jltsiren/bwt-merge/internal/rankarray"
	"github.com/jltsiren/bwt-merge/internal/rlarray"
	"github.com/jltsiren/bwt-merge/internal/tempfile"
)

// MergeBuffer holds M shared slots of optional RLArrays, guarded by a
// single mutex, plus the growing list of spill files produced once all
// slots are occupied.
type MergeBuffer struct {
	fs    afero.Fs
	files *tempfile.Allocator

	mu    sync.Mutex
	slots []*rlarray.RLArray

	spillMu sync.Mutex
	spilled []rankarray.SpillFile
}

// New returns a MergeBuffer with the given number of cascade slots,
// spilling into fresh files under files.
func New(fs afero.Fs, files *tempfile.Allocator, slots int) *MergeBuffer {
	if slots < 1 {
		slots = 1
	}
	return &MergeBuffer{fs: fs, files: files, slots: make([]*rlarray.RLArray, slots)}
}

// Place runs steps 3-4 of the pipeline for one worker's accumulated
// thread_buffer: it walks the shared slots looking for an empty one to
// claim, merging with whatever it displaces along the way, and spills to
// disk if it falls through every slot occupied.
func (m *MergeBuffer) Place(buf *rlarray.RLArray) error {
	for i := range m.slots {
		m.mu.Lock()
		if m.slots[i] == nil {
			m.slots[i] = buf
			m.mu.Unlock()
			return nil
		}
		displaced := m.slots[i]
		m.slots[i] = nil
		m.mu.Unlock()

		buf = rlarray.Merge(buf, displaced)
	}
	return m.spill(buf)
}

// Flush merges whatever remains in the slots into a single RLArray and
// spills it. It must only be called after every worker calling Place has
// finished. Remaining slots are combined pairwise, concurrently, through a
// bounded worker pool rather than one sequential cascade, since RLArray
// merge is commutative and associative and the slot count can be large
// enough to benefit from it.
func (m *MergeBuffer) Flush() error {
	var remaining []*rlarray.RLArray
	for i := range m.slots {
		if m.slots[i] != nil {
			remaining = append(remaining, m.slots[i])
			m.slots[i] = nil
		}
	}
	acc := mergeTree(remaining)
	if acc == nil {
		return nil
	}
	return m.spill(acc)
}

// mergeTree reduces arrays to one RLArray by merging pairs concurrently,
// level by level, until a single array remains.
func mergeTree(arrays []*rlarray.RLArray) *rlarray.RLArray {
	for len(arrays) > 1 {
		p := pool.NewWithResults[*rlarray.RLArray]().WithMaxGoroutines(len(arrays))
		for i := 0; i+1 < len(arrays); i += 2 {
			a, b := arrays[i], arrays[i+1]
			p.Go(func() *rlarray.RLArray { return rlarray.Merge(a, b) })
		}
		next := p.Wait()
		if len(arrays)%2 == 1 {
			next = append(next, arrays[len(arrays)-1])
		}
		arrays = next
	}
	if len(arrays) == 0 {
		return nil
	}
	return arrays[0]
}

func (m *MergeBuffer) spill(buf *rlarray.RLArray) error {
	path := m.files.Next("rank")
	sf, err := rankarray.WriteSpill(m.fs, path, buf)
	if err != nil {
		return err
	}
	m.spillMu.Lock()
	m.spilled = append(m.spilled, sf)
	m.spillMu.Unlock()
	return nil
}

// SpillFiles returns every file spilled so far. Safe to call once all
// producers (and Flush) have completed.
func (m *MergeBuffer) SpillFiles() []rankarray.SpillFile {
	m.spillMu.Lock()
	defer m.spillMu.Unlock()
	return append([]rankarray.SpillFile(nil), m.spilled...)
}
