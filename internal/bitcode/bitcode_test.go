package bitcode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jltsiren/bwt-merge/internal/blockarray"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 126, 127, 128, 255, 256, 1 << 20, 1 << 40, 1<<63 - 1}
	b := blockarray.New()
	offsets := make([]int, len(values))
	for i, v := range values {
		offsets[i] = b.Len()
		WriteUvarint(b, v)
	}
	for i, v := range values {
		pos := offsets[i]
		require.Equal(t, v, ReadUvarint(b, &pos))
	}
}

func TestStreamUvarintRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	values := []uint64{0, 42, 127, 128, 1 << 30}
	for _, v := range values {
		require.NoError(t, StreamWriteUvarint(&buf, v))
	}
	for _, want := range values {
		got, err := StreamReadUvarint(&buf)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestRunRoundTrip(t *testing.T) {
	type run struct {
		comp   byte
		length uint64
	}
	runs := []run{
		{0, 1}, {1, 2}, {5, MaxBasic - 1}, {3, MaxBasic}, {2, MaxBasic + 1},
		{4, 10 * MaxBasic}, {0, 100000},
	}
	b := blockarray.New()
	offsets := make([]int, len(runs))
	for i, r := range runs {
		offsets[i] = b.Len()
		WriteRun(b, r.comp, r.length)
	}
	for i, r := range runs {
		pos := offsets[i]
		comp, length := ReadRun(b, &pos)
		require.Equal(t, r.comp, comp, "run %d comp", i)
		require.Equal(t, r.length, length, "run %d length", i)
	}
}

func TestRunNeverCrossesBlockBoundary(t *testing.T) {
	b := blockarray.New()
	WriteRun(b, 2, 1000000)
	WriteRun(b, 1, 5)

	pos := 0
	total := uint64(0)
	for pos < b.Len() {
		start := pos
		_, length := ReadRun(b, &pos)
		startBlock := start / BlockSize
		endBlock := (pos - 1) / BlockSize
		require.Equal(t, startBlock, endBlock, "run starting at %d crosses block boundary", start)
		total += length
	}
}
