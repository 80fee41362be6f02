package cumarray

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumAndAt(t *testing.T) {
	counts := []uint64{3, 0, 5, 1, 0, 2}
	c := Build(counts)
	require.Equal(t, uint64(len(counts)), c.Size())

	var total uint64
	prefix := make([]uint64, len(counts)+1)
	for i, v := range counts {
		prefix[i] = total
		total += v
	}
	prefix[len(counts)] = total

	require.Equal(t, total, c.Sum())
	for k := 0; k <= len(counts); k++ {
		require.Equal(t, prefix[k], c.SumK(uint64(k)), "SumK(%d)", k)
	}
	for i, v := range counts {
		require.Equal(t, v, c.At(uint64(i)), "At(%d)", i)
	}
}

func TestInverseAndIsLast(t *testing.T) {
	counts := []uint64{2, 0, 3}
	c := Build(counts)

	var items []struct {
		elem   uint64
		isLast bool
	}
	for elem, v := range counts {
		for k := uint64(0); k < v; k++ {
			items = append(items, struct {
				elem   uint64
				isLast bool
			}{uint64(elem), k == v-1})
		}
	}
	for i, want := range items {
		gotElem := c.Inverse(uint64(i))
		gotLast := c.IsLast(uint64(i))
		require.Equal(t, want.elem, gotElem, "Inverse(%d)", i)
		require.Equal(t, want.isLast, gotLast, "IsLast(%d)", i)

		idx2, last2 := c.InverseWithLast(uint64(i))
		require.Equal(t, want.elem, idx2)
		require.Equal(t, want.isLast, last2)
	}

	require.Equal(t, c.Size(), c.Inverse(c.Sum()))
	require.False(t, c.IsLast(c.Sum()))
}

func TestMarshalRoundTrip(t *testing.T) {
	counts := []uint64{4, 2, 0, 7, 1}
	c := Build(counts)
	data, err := c.MarshalBinary()
	require.NoError(t, err)

	c2 := &CumulativeArray{}
	require.NoError(t, c2.UnmarshalBinary(data))
	require.Equal(t, c.Size(), c2.Size())
	require.Equal(t, c.Sum(), c2.Sum())
	for i := range counts {
		require.Equal(t, c.At(uint64(i)), c2.At(uint64(i)))
	}
}
