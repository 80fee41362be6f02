// Package blockarray implements BlockArray, the paged byte buffer the BWT's
// run-length encoding is written into. Data is kept in fixed-size pages so
// that old pages can be released (ClearUntil) as soon as a streaming
// consumer no longer needs them, without shifting the remaining bytes down.
package blockarray

// PageSize is the size, in bytes, of each underlying page (1 MiB), and
// therefore the granularity at which ClearUntil releases memory.
const PageSize = 1 << 20

// BlockArray is an append-only byte sequence addressed by a global index,
// backed by a slice of fixed-size pages.
type BlockArray struct {
	pages   [][]byte
	size    int // number of bytes logically stored
	cleared int // number of whole pages released via ClearUntil
}

// New returns an empty BlockArray.
func New() *BlockArray {
	return &BlockArray{}
}

// Len returns the number of bytes appended so far.
func (b *BlockArray) Len() int {
	return b.size
}

// PushByte appends a single byte, allocating a new page if the current one
// is full.
func (b *BlockArray) PushByte(value byte) {
	if b.size%PageSize == 0 {
		b.pages = append(b.pages, make([]byte, 0, PageSize))
	}
	page := b.lastPage()
	b.pages[len(b.pages)-1] = append(page, value)
	b.size++
}

func (b *BlockArray) lastPage() []byte {
	return b.pages[len(b.pages)-1]
}

// ByteAt returns the byte at global index i, which must fall within
// [ClearedUntil, Len).
func (b *BlockArray) ByteAt(i int) byte {
	pageIdx := i / PageSize
	return b.pages[pageIdx-b.cleared][i%PageSize]
}

// ClearedUntil returns the smallest index still guaranteed to be readable;
// indices below it were dropped by a prior ClearUntil call.
func (b *BlockArray) ClearedUntil() int {
	return b.cleared * PageSize
}

// ClearUntil releases every whole page entirely below index i, making the
// bytes in [0, page-aligned floor of i) unreadable. Bytes at or above the
// released range remain addressable by their original index.
func (b *BlockArray) ClearUntil(i int) {
	releasable := i/PageSize - b.cleared
	if releasable <= 0 {
		return
	}
	if releasable > len(b.pages) {
		releasable = len(b.pages)
	}
	for k := 0; k < releasable; k++ {
		b.pages[k] = nil
	}
	b.pages = b.pages[releasable:]
	b.cleared += releasable
}
