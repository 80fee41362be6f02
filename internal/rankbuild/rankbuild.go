// Package rankbuild implements the parallel rank-array builder: each
// worker backward searches an assigned contiguous range of B's BWT
// positions against A, emitting (a_pos, length) runs into a shared
// internal/mergebuffer.MergeBuffer.
package rankbuild

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jltsiren/bwt-merge/internal/bwt"
	"github.com/jltsiren/bwt-merge/internal/fmindex"
	"github.com/jltsiren/bwt-merge/internal/mergebuffer"
	"github.com/jltsiren/bwt-merge/internal/rlarray"
)

// ShortRange is the default threshold at or below which a frame's b_range is
// fanned out with one LF-char call per comp instead of the batched
// whole-alphabet Ranks/RangeRanks call; small ranges don't amortize the
// batched call's fixed overhead.
const ShortRange = 3

// frame is one entry of a worker's traversal stack: a_pos is the position
// in A immediately before which the b_range suffixes of B belong, once
// merged.
type frame struct {
	aPos   uint64
	bRange fmindex.Range
}

// Worker builds the portion of the rank array produced by backward
// searching one assigned range of B's BWT positions against A.
type Worker struct {
	A, B *fmindex.FMIndex

	// ShortRange overrides the package default when positive.
	ShortRange int
	// RunsPerBuffer is R: how many runs accumulate locally before being
	// folded into the worker's thread buffer.
	RunsPerBuffer int
	// ThreadBufferBytes is TB: the thread buffer is placed into the
	// shared MergeBuffer once its encoded size reaches this many bytes.
	ThreadBufferBytes int

	Buffer *mergebuffer.MergeBuffer
}

// Build traverses the suffixes of B in BWT positions [lo, hi] and feeds
// the resulting rank-array runs into w.Buffer.
func (w *Worker) Build(lo, hi uint64) error {
	short := w.ShortRange
	if short <= 0 {
		short = ShortRange
	}
	runsPerBuffer := w.RunsPerBuffer
	if runsPerBuffer <= 0 {
		runsPerBuffer = 1
	}

	stack := []frame{{aPos: w.A.BWT.Size(), bRange: fmindex.Range{Low: lo, High: hi}}}

	var runBuf []rlarray.Run
	var threadBuf *rlarray.RLArray

	flushRunBuf := func() {
		if len(runBuf) == 0 {
			return
		}
		temp := rlarray.FromRuns(runBuf)
		runBuf = runBuf[:0]
		if threadBuf == nil {
			threadBuf = temp
		} else {
			threadBuf = rlarray.Merge(threadBuf, temp)
		}
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		length := f.bRange.Length()
		if length == 0 {
			continue
		}

		// Only the share of length that does NOT get forwarded to a
		// child frame terminates here (its predecessor in B is the
		// endmarker); that share alone is this frame's contribution to
		// the rank array. The rest is re-emitted later, whenever the
		// forwarded child frame itself terminates.
		var consumed uint64

		switch {
		case length == 1:
			bPrev, c := w.B.LF(f.bRange.Low)
			if c != 0 {
				consumed = 1
				stack = append(stack, frame{
					aPos:   w.A.LFChar(f.aPos, c),
					bRange: fmindex.Range{Low: bPrev, High: bPrev},
				})
			}

		case length <= uint64(short):
			for c := byte(1); c < bwt.Sigma; c++ {
				r := w.B.LFRange(f.bRange, c)
				if !r.Empty() {
					consumed += r.Length()
					stack = append(stack, frame{aPos: w.A.LFChar(f.aPos, c), bRange: r})
				}
			}

		default:
			aRanks := w.A.BWT.Ranks(f.aPos)
			bLow, bHigh := w.B.BWT.RangeRanks(f.bRange.Low, f.bRange.High)
			for c := byte(1); c < bwt.Sigma; c++ {
				childLo := w.B.Alpha.C(int(c)) + bLow[c]
				childHi := w.B.Alpha.C(int(c)) + bHigh[c] - 1
				if childHi+1 <= childLo {
					continue
				}
				consumed += childHi - childLo + 1
				stack = append(stack, frame{
					aPos:   w.A.Alpha.C(int(c)) + aRanks[c],
					bRange: fmindex.Range{Low: childLo, High: childHi},
				})
			}
		}

		if remaining := length - consumed; remaining > 0 {
			runBuf = append(runBuf, rlarray.Run{Value: f.aPos, Length: remaining})
		}

		if len(runBuf) >= runsPerBuffer {
			flushRunBuf()
			if threadBuf != nil && threadBuf.Bytes() >= w.ThreadBufferBytes {
				if err := w.Buffer.Place(threadBuf); err != nil {
					return err
				}
				threadBuf = nil
			}
		}
	}

	flushRunBuf()
	if threadBuf != nil {
		return w.Buffer.Place(threadBuf)
	}
	return nil
}

// Params configures the worker pool that fans the traversal out across B.
type Params struct {
	Threads           int // T
	SequenceBlocks    int // S, should be >= Threads
	RunsPerBuffer     int // R
	ThreadBufferBytes int // TB
	ShortRange        int
}

// Block is one contiguous, inclusive range of B's BWT positions assigned
// to a single worker.
type Block struct {
	Lo, Hi uint64
}

// Partition splits [0, n) into at most blocks contiguous, non-overlapping
// Blocks of roughly equal size, covering every position exactly once.
func Partition(n uint64, blocks int) []Block {
	if blocks < 1 {
		blocks = 1
	}
	if n == 0 {
		return nil
	}
	chunk := (n + uint64(blocks) - 1) / uint64(blocks)

	var out []Block
	for lo := uint64(0); lo < n; lo += chunk {
		hi := lo + chunk - 1
		if hi >= n {
			hi = n - 1
		}
		out = append(out, Block{Lo: lo, Hi: hi})
	}
	return out
}

// Run partitions B's BWT positions into params.SequenceBlocks contiguous
// ranges and processes them with at most params.Threads worker goroutines
// via a fail-fast errgroup, each one draining its share into buffer.
func Run(ctx context.Context, a, b *fmindex.FMIndex, params Params, buffer *mergebuffer.MergeBuffer) error {
	blocks := Partition(b.BWT.Size(), params.SequenceBlocks)

	g, ctx := errgroup.WithContext(ctx)
	if params.Threads > 0 {
		g.SetLimit(params.Threads)
	}

	for _, block := range blocks {
		lo, hi := block.Lo, block.Hi
		w := &Worker{
			A: a, B: b,
			ShortRange:        params.ShortRange,
			RunsPerBuffer:     params.RunsPerBuffer,
			ThreadBufferBytes: params.ThreadBufferBytes,
			Buffer:            buffer,
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return w.Build(lo, hi)
		})
	}
	return g.Wait()
}
