// Package rlarray implements RLArray, a run-length encoded, non-decreasing
// sequence of (value, length) pairs backed by a blockarray.BlockArray. Runs
// are delta-coded against the previous value, and both the delta and the
// length are written with bitcode's varint (WriteUvarint). Merging two RLArrays coalesces runs sharing a value and
// destructively consumes both inputs.
package rlarray

import (
	"sort"

	"github.com/jltsiren/bwt-merge/internal/bitcode"
	"github.com/jltsiren/bwt-merge/internal/blockarray"
)

// Run is a single (value, length) pair: length consecutive occurrences of
// value in the conceptual sorted sequence.
type Run struct {
	Value  uint64
	Length uint64
}

// RLArray is an append-built, run-length encoded non-decreasing sequence.
type RLArray struct {
	data       *blockarray.BlockArray
	runCount   uint64
	valueCount uint64
}

// New returns an empty RLArray.
func New() *RLArray {
	return &RLArray{data: blockarray.New()}
}

// Size returns the number of runs.
func (r *RLArray) Size() uint64 {
	return r.runCount
}

// Values returns the number of individual values represented (sum of run
// lengths).
func (r *RLArray) Values() uint64 {
	return r.valueCount
}

// Bytes returns the size of the encoded representation.
func (r *RLArray) Bytes() int {
	return r.data.Len()
}

func (r *RLArray) addRun(value uint64, prev *uint64, length uint64) {
	bitcode.WriteUvarint(r.data, value-*prev)
	*prev = value
	bitcode.WriteUvarint(r.data, length)
	r.runCount++
	r.valueCount += length
}

// FromValues builds an RLArray from a slice of individual values, sorting
// a copy of the slice and run-length encoding consecutive equal values.
func FromValues(values []uint64) *RLArray {
	r := New()
	if len(values) == 0 {
		return r
	}
	sorted := append([]uint64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	prev := uint64(0)
	curr := sorted[0]
	length := uint64(1)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == curr {
			length++
		} else {
			r.addRun(curr, &prev, length)
			curr = sorted[i]
			length = 1
		}
	}
	r.addRun(curr, &prev, length)
	return r
}

// FromRuns builds an RLArray from a slice of (value, length) pairs, sorted
// by value.
func FromRuns(runs []Run) *RLArray {
	r := New()
	if len(runs) == 0 {
		return r
	}
	sorted := append([]Run(nil), runs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	prev := uint64(0)
	for _, run := range sorted {
		r.addRun(run.Value, &prev, run.Length)
	}
	return r
}

// Merge merges a and b into a new RLArray, coalescing runs that share a
// value and adding their lengths. Both a and b are consumed: their
// underlying pages are released as the merge walks past them, so neither
// should be used afterwards.
func Merge(a, b *RLArray) *RLArray {
	out := New()
	ai, bi := NewIterator(a), NewIterator(b)
	prev := uint64(0)

	for !ai.End() && !bi.End() {
		av, bv := ai.Run().Value, bi.Run().Value
		switch {
		case av < bv:
			out.addRun(av, &prev, ai.Run().Length)
			ai.Next()
		case bv < av:
			out.addRun(bv, &prev, bi.Run().Length)
			bi.Next()
		default:
			out.addRun(av, &prev, ai.Run().Length+bi.Run().Length)
			ai.Next()
			bi.Next()
		}
	}
	for !ai.End() {
		out.addRun(ai.Run().Value, &prev, ai.Run().Length)
		ai.Next()
	}
	for !bi.End() {
		out.addRun(bi.Run().Value, &prev, bi.Run().Length)
		bi.Next()
	}
	return out
}

// Iterator walks the runs of an RLArray in order. Advancing it past a run
// releases the pages of data that run occupied, so an RLArray should only
// be iterated once if memory is to be reclaimed as Merge proceeds.
type Iterator struct {
	array *RLArray
	pos   uint64
	ptr   int
	prev  uint64
	run   Run
}

// NewIterator returns an iterator positioned at the first run of array.
func NewIterator(array *RLArray) *Iterator {
	it := &Iterator{array: array}
	it.read()
	return it
}

// End reports whether the iterator has consumed every run.
func (it *Iterator) End() bool {
	return it.pos >= it.array.runCount
}

// Run returns the current run. Only valid while !End().
func (it *Iterator) Run() Run {
	return it.run
}

// Next advances to the following run, releasing the BlockArray pages the
// just-consumed run occupied.
func (it *Iterator) Next() {
	it.pos++
	it.read()
}

func (it *Iterator) read() {
	if it.End() {
		return
	}
	it.prev = it.run.Value
	delta := bitcode.ReadUvarint(it.array.data, &it.ptr)
	it.run.Value = it.prev + delta
	it.run.Length = bitcode.ReadUvarint(it.array.data, &it.ptr)
	it.array.data.ClearUntil(it.ptr)
}

// Clear releases the RLArray's storage, leaving it empty.
func (r *RLArray) Clear() {
	r.data = blockarray.New()
	r.runCount = 0
	r.valueCount = 0
}
