// Package cumarray implements CumulativeArray, a succinct representation of
// a sequence of non-negative counts that supports prefix sums, their
// inverse, and an "is this the last item of its run" predicate in O(1)
// time. It is backed by github.com/vsivsi/rsdic, a real rank/select
// dictionary, using the same unary bitvector encoding the sd_vector-based
// C++ original uses: value v is encoded as v zero bits followed by a
// single one bit.
package cumarray

import (
	"github.com/vsivsi/rsdic"
)

// CumulativeArray holds the succinct encoding of a counts sequence.
type CumulativeArray struct {
	bits *rsdic.RSDic
	size uint64 // number of elements (counts)
}

// Build constructs a CumulativeArray from a sequence of non-negative counts.
// The input is not modified.
func Build(counts []uint64) *CumulativeArray {
	bits := rsdic.New()
	for _, v := range counts {
		for k := uint64(0); k < v; k++ {
			bits.PushBack(false)
		}
		bits.PushBack(true)
	}
	return &CumulativeArray{bits: bits, size: uint64(len(counts))}
}

// Size returns the number of elements.
func (c *CumulativeArray) Size() uint64 {
	return c.size
}

// Sum returns the sum of all elements.
func (c *CumulativeArray) Sum() uint64 {
	return c.bits.Num() - c.size
}

// SumK returns the sum of the first k elements, 0 <= k <= Size().
func (c *CumulativeArray) SumK(k uint64) uint64 {
	if k == 0 {
		return 0
	}
	if k > c.size {
		k = c.size
	}
	return c.bits.Select1(k-1) - k + 1
}

// At returns element i, 0 <= i < Size().
func (c *CumulativeArray) At(i uint64) uint64 {
	return c.SumK(i+1) - c.SumK(i)
}

// Inverse returns the index of the element that item i (0 <= i < Sum())
// belongs to. If i >= Sum(), it returns Size().
func (c *CumulativeArray) Inverse(i uint64) uint64 {
	if i >= c.Sum() {
		return c.size
	}
	return c.bits.Select0(i) - i
}

// IsLast reports whether item i is the last item of its element.
func (c *CumulativeArray) IsLast(i uint64) bool {
	if i >= c.Sum() {
		return false
	}
	return c.bits.Bit(c.bits.Select0(i) + 1)
}

// InverseWithLast is a combination of Inverse and IsLast computed from a
// single Select0 call, mirroring the C++ original's combined accessor.
func (c *CumulativeArray) InverseWithLast(i uint64) (index uint64, isLast bool) {
	if i >= c.Sum() {
		return c.size, false
	}
	pos := c.bits.Select0(i)
	return pos - i, c.bits.Bit(pos + 1)
}

// MarshalBinary serializes the array using rsdic's own binary encoding plus
// the element count.
func (c *CumulativeArray) MarshalBinary() ([]byte, error) {
	payload, err := c.bits.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(payload))
	putUint64(out, c.size)
	copy(out[8:], payload)
	return out, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (c *CumulativeArray) UnmarshalBinary(data []byte) error {
	c.size = getUint64(data)
	c.bits = rsdic.New()
	return c.bits.UnmarshalBinary(data[8:])
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
