// Package interleave wires internal/bwt.Interleave into a producer/
// consumer pipeline: a producer goroutine, managed through an errgroup for
// fail-fast error propagation, drains a bwt.RankSource (typically
// internal/rankarray.RankArray) into bounded batches over a channel; the
// calling goroutine consumes those batches splicing A and B's data. This
// replaces the original tool's lock-plus-sleep busy-wait queue with a
// buffered channel, the natural Go idiom for single-producer/
// single-consumer flow control.
package interleave

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jltsiren/bwt-merge/internal/bwt"
)

// BatchSize is the default number of runs grouped into one channel batch,
// used when the caller passes no positive batch size (the pipeline passes
// the run-buffer run count R).
const BatchSize = 1024

// channelSource adapts a channel of run batches into a bwt.RankSource,
// flattening each received batch into individual runs for the consumer.
type channelSource struct {
	batches <-chan []bwt.RankRun
	cur     []bwt.RankRun
	pos     int
}

func (s *channelSource) Next() (bwt.RankRun, bool) {
	for s.pos >= len(s.cur) {
		batch, ok := <-s.batches
		if !ok {
			return bwt.RankRun{}, false
		}
		s.cur = batch
		s.pos = 0
	}
	run := s.cur[s.pos]
	s.pos++
	return run, true
}

// Merge drains source on a producer goroutine into batches of batchSize
// runs (BatchSize if batchSize <= 0), fed through a channel of capacity
// one -- at most one complete batch in flight plus the producer's
// in-flight vector being filled -- and splices a and b according to those
// runs on the calling goroutine via bwt.Interleave. The producer runs
// under an errgroup so a future fallible source's error propagates and
// fails the merge instead of silently truncating it.
func Merge(a, b *bwt.BWT, source bwt.RankSource, batchSize int) (*bwt.BWT, error) {
	if batchSize <= 0 {
		batchSize = BatchSize
	}

	batches := make(chan []bwt.RankRun, 1)
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		produce(source, batchSize, batches)
		return nil
	})

	out := bwt.Interleave(a, b, &channelSource{batches: batches})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func produce(source bwt.RankSource, batchSize int, out chan<- []bwt.RankRun) {
	defer close(out)
	buf := make([]bwt.RankRun, 0, batchSize)
	for {
		run, ok := source.Next()
		if !ok {
			if len(buf) > 0 {
				out <- buf
			}
			return
		}
		buf = append(buf, run)
		if len(buf) >= batchSize {
			out <- buf
			buf = make([]bwt.RankRun, 0, batchSize)
		}
	}
}
