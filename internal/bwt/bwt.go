// Package bwt implements BWT, a run-length encoded Burrows-Wheeler
// transform supporting rank, select, access, inverse-select, range-rank,
// and extraction, plus the destructive interleaving constructor that
// splices two BWTs together according to a rank array without ever
// rebuilding the original text.
package bwt

import (
	"github.com/jltsiren/bwt-merge/internal/bitcode"
	"github.com/jltsiren/bwt-merge/internal/blockarray"
	"github.com/jltsiren/bwt-merge/internal/cumarray"
	"github.com/vsivsi/rsdic"
)

// Sigma is the run-length alphabet size (endmarker + 5 DNA symbols).
const Sigma = bitcode.Sigma

// SampleRate is the byte interval at which block boundaries are sampled;
// it matches bitcode.BlockSize so that no run straddles a sample boundary.
const SampleRate = bitcode.BlockSize

// BWT is a run-length encoded Burrows-Wheeler transform with sampled
// per-block rank support.
type BWT struct {
	data    *blockarray.BlockArray
	samples [Sigma]*cumarray.CumulativeArray

	// blockBoundaries marks, for every position, whether it is the last
	// sequence position of its sample block.
	blockBoundaries *rsdic.RSDic
	size            uint64 // |BWT|
}

// Data exposes the raw run-length encoded byte stream, for format encoders
// and the interleaving constructor.
func (b *BWT) Data() *blockarray.BlockArray {
	return b.data
}

// Size returns |BWT|.
func (b *BWT) Size() uint64 {
	return b.size
}

// Sequences returns the number of sequences (occurrences of the endmarker,
// comp 0).
func (b *BWT) Sequences() uint64 {
	return b.samples[0].Sum()
}

// Bytes returns the size in bytes of the run-length encoded stream.
func (b *BWT) Bytes() int {
	return b.data.Len()
}

// Count returns the number of occurrences of comp value c.
func (b *BWT) Count(c byte) uint64 {
	return b.samples[c].Sum()
}

// FromRunStream builds a BWT directly from an already-encoded run-length
// byte stream (used by format decoders once they have translated their
// on-disk encoding into bitcode runs).
func FromRunStream(data *blockarray.BlockArray) *BWT {
	b := &BWT{data: data}
	b.build()
	return b
}

// FromComps builds a BWT from a plain slice of comp values, run-length
// encoding it first. Intended for tests and format decoders that have
// already materialized the full comp sequence in memory.
func FromComps(comps []byte) *BWT {
	data := blockarray.New()
	var buf runBuffer
	for _, c := range comps {
		if buf.add(uint64(c), 1) {
			bitcode.WriteRun(data, byte(buf.runValue), buf.runLength)
		}
	}
	buf.flush()
	if buf.runLength > 0 {
		bitcode.WriteRun(data, byte(buf.runValue), buf.runLength)
	}
	return FromRunStream(data)
}

func (b *BWT) blockRank(i uint64) uint64 {
	return b.blockBoundaries.Rank(i, true)
}

func (b *BWT) blockSelect(k uint64) uint64 {
	return b.blockBoundaries.Select1(k)
}

// blockBounds returns the (byte offset, sequence position) at which block
// starts.
func (b *BWT) blockBounds(block uint64) (rlePos int, seqPos uint64) {
	rlePos = int(block) * SampleRate
	if block > 0 {
		seqPos = b.blockSelect(block-1) + 1
	}
	return
}

// Rank returns the number of occurrences of comp c in positions [0, i).
func (b *BWT) Rank(i uint64, c byte) uint64 {
	if i == 0 {
		return 0
	}
	if i > b.size {
		i = b.size
	}
	block := b.blockRank(i)
	result := b.samples[c].SumK(block)

	rlePos, seqPos := b.blockBounds(block)
	for seqPos < i {
		comp, length := bitcode.ReadRun(b.data, &rlePos)
		contribute := length
		if seqPos+length > i {
			contribute = i - seqPos
		}
		if comp == c {
			result += contribute
		}
		seqPos += length
	}
	return result
}

// Select returns the position of the i-th (1-indexed) occurrence of comp
// c. It returns Size() if i exceeds Count(c).
func (b *BWT) Select(i uint64, c byte) uint64 {
	if i == 0 || i > b.Count(c) {
		return b.size
	}
	block := b.samples[c].Inverse(i - 1)
	prefix := b.samples[c].SumK(block)
	remaining := i - prefix

	rlePos, seqPos := b.blockBounds(block)
	for {
		comp, length := bitcode.ReadRun(b.data, &rlePos)
		if comp == c {
			if remaining <= length {
				return seqPos + remaining - 1
			}
			remaining -= length
		}
		seqPos += length
	}
}

// At returns the comp value at position i.
func (b *BWT) At(i uint64) byte {
	block := b.blockRank(i)
	rlePos, seqPos := b.blockBounds(block)
	for {
		comp, length := bitcode.ReadRun(b.data, &rlePos)
		if seqPos+length > i {
			return comp
		}
		seqPos += length
	}
}

// InverseSelect returns (Rank(i, BWT[i]), BWT[i]) computed with a single
// fused scan of the block containing i.
func (b *BWT) InverseSelect(i uint64) (rank uint64, comp byte) {
	block := b.blockRank(i)
	rlePos, seqPos := b.blockBounds(block)

	var counts [Sigma]uint64
	var target byte
	for {
		c, length := bitcode.ReadRun(b.data, &rlePos)
		if seqPos+length > i {
			counts[c] += i - seqPos
			target = c
			break
		}
		counts[c] += length
		seqPos += length
	}
	return b.samples[target].SumK(block) + counts[target], target
}

// Ranks computes Rank(i, c) for every comp value 0..Sigma-1 with a single
// scan, returning the results indexed by comp.
func (b *BWT) Ranks(i uint64) [Sigma]uint64 {
	var results [Sigma]uint64
	if i == 0 {
		return results
	}
	if i > b.size {
		i = b.size
	}
	block := b.blockRank(i)
	for c := byte(0); c < Sigma; c++ {
		results[c] = b.samples[c].SumK(block)
	}

	rlePos, seqPos := b.blockBounds(block)
	for seqPos < i {
		comp, length := bitcode.ReadRun(b.data, &rlePos)
		contribute := length
		if seqPos+length > i {
			contribute = i - seqPos
		}
		results[comp] += contribute
		seqPos += length
	}
	return results
}

// RangeRanks computes Ranks(range.lo) and Ranks(range.hi+1) for a range
// [lo, hi]. Both results are exact ranks; if comp c does not occur in the
// range, low[c] == high[c].
func (b *BWT) RangeRanks(lo, hi uint64) (low, high [Sigma]uint64) {
	return b.Ranks(lo), b.Ranks(hi + 1)
}

// Extract copies the comp values in [lo, hi] into a freshly allocated
// slice.
func (b *BWT) Extract(lo, hi uint64) []byte {
	if lo > hi || hi >= b.size {
		return nil
	}
	block := b.blockRank(lo)
	rlePos, seqPos := b.blockBounds(block)

	comp, length := bitcode.ReadRun(b.data, &rlePos)
	seqPos += length - 1 // last position covered by this run
	for seqPos < lo {
		seqPos++
		comp, length = bitcode.ReadRun(b.data, &rlePos)
		seqPos += length - 1
	}

	out := make([]byte, hi-lo+1)
	for i := lo; i <= hi; i++ {
		if i > seqPos {
			comp, length = bitcode.ReadRun(b.data, &rlePos)
			seqPos += length
		}
		out[i-lo] = comp
	}
	return out
}

// CharacterCounts returns the total occurrence count of every comp value.
func (b *BWT) CharacterCounts() [Sigma]uint64 {
	var counts [Sigma]uint64
	for c := byte(0); c < Sigma; c++ {
		counts[c] = b.Count(c)
	}
	return counts
}

// Hash returns an FNV-1a hash of the decoded comp stream, used to compare
// two BWTs for equality without holding both fully decoded in memory.
func (b *BWT) Hash() uint64 {
	const offsetBasis = 0xcbf29ce484222325
	const prime = 0x100000001b3

	res := uint64(offsetBasis)
	rlePos := 0
	for rlePos < b.data.Len() {
		comp, length := bitcode.ReadRun(b.data, &rlePos)
		for k := uint64(0); k < length; k++ {
			res ^= uint64(comp)
			res *= prime
		}
	}
	return res
}

// build scans the run-length stream once, sampling block boundaries every
// SampleRate bytes and tallying per-block, per-comp counts for the
// CumulativeArray rank samples.
func (b *BWT) build() {
	var blockEnds []uint64
	counts := make([][]uint64, Sigma)
	cur := [Sigma]uint64{}

	seqPos := uint64(0)
	rlePos := 0
	for rlePos < b.data.Len() {
		comp, length := bitcode.ReadRun(b.data, &rlePos)
		seqPos += length
		cur[comp] += length
		if rlePos >= b.data.Len() || rlePos%SampleRate == 0 {
			blockEnds = append(blockEnds, seqPos-1)
			for c := 0; c < Sigma; c++ {
				counts[c] = append(counts[c], cur[c])
			}
			cur = [Sigma]uint64{}
		}
	}

	b.size = seqPos
	b.blockBoundaries = rsdic.New()
	var nextEnd int
	for pos := uint64(0); pos < seqPos; pos++ {
		isEnd := nextEnd < len(blockEnds) && blockEnds[nextEnd] == pos
		b.blockBoundaries.PushBack(isEnd)
		if isEnd {
			nextEnd++
		}
	}

	for c := 0; c < Sigma; c++ {
		b.samples[c] = cumarray.Build(counts[c])
	}
}

// RankRun is one interval of the rank array: Length consecutive suffixes
// of B sort, in A, immediately before position APos.
type RankRun struct {
	APos   uint64
	Length uint64
}

// RankSource yields the rank array runs in non-decreasing APos order.
type RankSource interface {
	Next() (RankRun, bool)
}

// runBuffer coalesces adjacent same-comp emissions into maximal runs, the
// same accumulator the interleaving constructor and the format encoders
// use before calling bitcode.WriteRun.
type runBuffer struct {
	value, length       uint64
	runValue, runLength uint64
}

func (rb *runBuffer) add(v, n uint64) bool {
	if v == rb.value {
		rb.length += n
		return false
	}
	rb.flush()
	rb.value, rb.length = v, n
	return rb.runLength > 0
}

func (rb *runBuffer) flush() {
	rb.runValue, rb.runLength = rb.value, rb.length
}

// Interleave splices a and b into a new BWT according to ranks, which must
// enumerate the merge in non-decreasing APos order. a and b are consumed
// destructively: their underlying pages are released as the read cursors
// advance, and both must not be used afterwards.
func Interleave(a, b *BWT, ranks RankSource) *BWT {
	out := &BWT{data: blockarray.New()}

	aPos, bPos := 0, 0
	aSeqPos := uint64(0)
	var aComp byte
	var aLen uint64
	if a.data.Len() > 0 {
		aComp, aLen = bitcode.ReadRun(a.data, &aPos)
		a.data.ClearUntil(aPos)
	}
	var bComp byte
	var bLen uint64
	if b.data.Len() > 0 {
		bComp, bLen = bitcode.ReadRun(b.data, &bPos)
		b.data.ClearUntil(bPos)
	}

	var buf runBuffer
	for {
		frame, ok := ranks.Next()
		if !ok {
			break
		}

		for aSeqPos < frame.APos {
			length := frame.APos - aSeqPos
			if aLen < length {
				length = aLen
			}
			if buf.add(uint64(aComp), length) {
				bitcode.WriteRun(out.data, byte(buf.runValue), buf.runLength)
			}
			aLen -= length
			aSeqPos += length
			if aLen == 0 && aPos < a.data.Len() {
				aComp, aLen = bitcode.ReadRun(a.data, &aPos)
				a.data.ClearUntil(aPos)
			}
		}

		remaining := frame.Length
		for remaining > 0 {
			length := remaining
			if bLen < length {
				length = bLen
			}
			if buf.add(uint64(bComp), length) {
				bitcode.WriteRun(out.data, byte(buf.runValue), buf.runLength)
			}
			bLen -= length
			remaining -= length
			if bLen == 0 && bPos < b.data.Len() {
				bComp, bLen = bitcode.ReadRun(b.data, &bPos)
				b.data.ClearUntil(bPos)
			}
		}
	}

	for aLen > 0 {
		if buf.add(uint64(aComp), aLen) {
			bitcode.WriteRun(out.data, byte(buf.runValue), buf.runLength)
		}
		if aPos < a.data.Len() {
			aComp, aLen = bitcode.ReadRun(a.data, &aPos)
			a.data.ClearUntil(aPos)
		} else {
			aLen = 0
		}
	}

	buf.flush()
	if buf.runLength > 0 {
		bitcode.WriteRun(out.data, byte(buf.runValue), buf.runLength)
	}

	out.build()
	return out
}
