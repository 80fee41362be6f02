// Package rankarray implements RankArray, the on-disk multi-way merge of
// spilled RLArrays produced by internal/mergebuffer. It streams each spill
// file through a bufio.Reader and keeps the smallest run at the top of a
// github.com/emirpasic/gods binary min-heap, satisfying bwt.RankSource so
// internal/bwt.Interleave can consume it directly. Unlike the in-memory
// RLArray merge, equal-valued runs from different files are NOT coalesced
// here; the interleaving consumer tolerates adjacent same-value runs.
package rankarray

import (
	"bufio"
	"fmt"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/spf13/afero"

	"github.com/jltsiren/bwt-merge/internal/bitcode"
	"github.com/jltsiren/bwt-merge/internal/bwt"
	"github.com/jltsiren/bwt-merge/internal/rlarray"
)

// SpillFile describes one run-length encoded file spilled to disk by the
// merge buffer pipeline.
type SpillFile struct {
	Name       string
	RunCount   uint64
	ValueCount uint64
}

// WriteSpill writes arr's runs, in sorted order, to path on fs and returns
// the run/value counts recorded for the resulting SpillFile. arr is
// consumed: its pages are released as it is iterated.
func WriteSpill(fs afero.Fs, path string, arr *rlarray.RLArray) (SpillFile, error) {
	f, err := fs.Create(path)
	if err != nil {
		return SpillFile{}, fmt.Errorf("rankarray: create spill file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	prev := uint64(0)
	it := rlarray.NewIterator(arr)
	for !it.End() {
		run := it.Run()
		if err := bitcode.StreamWriteUvarint(w, run.Value-prev); err != nil {
			return SpillFile{}, err
		}
		if err := bitcode.StreamWriteUvarint(w, run.Length); err != nil {
			return SpillFile{}, err
		}
		prev = run.Value
		it.Next()
	}
	if err := w.Flush(); err != nil {
		return SpillFile{}, fmt.Errorf("rankarray: flush spill file %s: %w", path, err)
	}
	return SpillFile{Name: path, RunCount: arr.Size(), ValueCount: arr.Values()}, nil
}

// fileIterator streams one spill file's runs in order.
type fileIterator struct {
	file    afero.File
	reader  *bufio.Reader
	remain  uint64
	prev    uint64
	current bwt.RankRun
}

func openFileIterator(fs afero.Fs, sf SpillFile) (*fileIterator, error) {
	f, err := fs.Open(sf.Name)
	if err != nil {
		return nil, fmt.Errorf("rankarray: open spill file %s: %w", sf.Name, err)
	}
	it := &fileIterator{file: f, reader: bufio.NewReader(f), remain: sf.RunCount}
	if err := it.advance(); err != nil {
		f.Close()
		return nil, err
	}
	return it, nil
}

func (it *fileIterator) advance() error {
	if it.remain == 0 {
		return nil
	}
	delta, err := bitcode.StreamReadUvarint(it.reader)
	if err != nil {
		return fmt.Errorf("rankarray: read spill run value: %w", err)
	}
	length, err := bitcode.StreamReadUvarint(it.reader)
	if err != nil {
		return fmt.Errorf("rankarray: read spill run length: %w", err)
	}
	it.prev += delta
	it.current = bwt.RankRun{APos: it.prev, Length: length}
	it.remain--
	return nil
}

func (it *fileIterator) close() error {
	return it.file.Close()
}

// RankArray is the merge view over a fixed set of spill files.
type RankArray struct {
	fs    afero.Fs
	files []SpillFile
	heap  *binaryheap.Heap
}

// New returns a RankArray over the given spill files; call Open before
// iterating.
func New(fs afero.Fs, files []SpillFile) *RankArray {
	return &RankArray{fs: fs, files: files}
}

func iteratorComparator(a, b interface{}) int {
	ia, ib := a.(*fileIterator), b.(*fileIterator)
	switch {
	case ia.current.APos < ib.current.APos:
		return -1
	case ia.current.APos > ib.current.APos:
		return 1
	default:
		return 0
	}
}

// Open materializes one streaming iterator per spill file and seeds the
// min-heap with their first runs.
func (r *RankArray) Open() error {
	r.heap = binaryheap.NewWith(iteratorComparator)
	for _, sf := range r.files {
		if sf.RunCount == 0 {
			continue
		}
		it, err := openFileIterator(r.fs, sf)
		if err != nil {
			return err
		}
		r.heap.Push(it)
	}
	return nil
}

// Next returns the next rank-array run in non-decreasing APos order,
// advancing (and, when exhausted, closing) the file it came from.
func (r *RankArray) Next() (bwt.RankRun, bool) {
	top, ok := r.heap.Pop()
	if !ok {
		return bwt.RankRun{}, false
	}
	it := top.(*fileIterator)
	run := it.current

	remaining := it.remain
	if remaining > 0 {
		if err := it.advance(); err == nil {
			r.heap.Push(it)
		}
	} else {
		it.close()
	}
	return run, true
}

// Close releases any still-open files (when the caller stops iterating
// before exhaustion) and removes every spill file from the filesystem.
func (r *RankArray) Close() error {
	if r.heap != nil {
		for !r.heap.Empty() {
			v, _ := r.heap.Pop()
			v.(*fileIterator).close()
		}
	}
	var firstErr error
	for _, sf := range r.files {
		if err := r.fs.Remove(sf.Name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
