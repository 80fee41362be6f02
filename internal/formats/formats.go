// Package formats implements the on-disk BWT format adapters: the
// engine's own native format, plus bit-exact plain, rope, and sga
// encodings external tools produce and consume. Each adapter exposes a
// Read(io.Reader) (*bwt.BWT, error) and Write(io.Writer, *bwt.BWT) error
// pair over a fixed alphabetic order, per spec.md §6's decoder/encoder
// contract.
package formats

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jltsiren/bwt-merge/internal/bitcode"
	"github.com/jltsiren/bwt-merge/internal/blockarray"
	"github.com/jltsiren/bwt-merge/internal/bwt"
)

// Order is the alphabetic-order flag carried in format headers.
type Order byte

const (
	OrderDefault Order = 0
	OrderSorted  Order = 1
	OrderAny     Order = 254
	OrderUnknown Order = 255
)

// NativeTag is the 32-bit header tag of the engine's own format ("!BWT").
const NativeTag uint32 = 0x54574221

// RopeTag is the 32-bit header tag of the rope format ("RLE" + a length
// byte, per spec.md §6).
const RopeTag uint32 = 0x06454C52

// SgaTag is the 32-bit header tag of the sga format.
const SgaTag uint32 = 0x0000CACA

// maxRopeRun is the largest run length a single rope/sga body byte can
// encode (5 bits, 1..31).
const maxRopeRun = 31

// WriteNative writes b in the engine's native format: a fixed header
// (tag, flags holding order in the low byte, sequence count, base count)
// followed by the raw run-length encoded data stream verbatim. The
// per-comp CumulativeArrays and block_boundaries bitvector the original
// sdsl-backed format persists alongside the data are not written here:
// bwt.FromRunStream rebuilds them deterministically from the data stream
// alone in one scan, so persisting them would only duplicate derived
// state (see DESIGN.md).
func WriteNative(w io.Writer, b *bwt.BWT, order Order) error {
	var header [24]byte
	binary.LittleEndian.PutUint32(header[0:4], NativeTag)
	binary.LittleEndian.PutUint32(header[4:8], uint32(order))
	binary.LittleEndian.PutUint64(header[8:16], b.Sequences())
	binary.LittleEndian.PutUint64(header[16:24], b.Size())
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("formats: write native header: %w", err)
	}
	return copyRunStream(w, b)
}

// ReadNative reads a native-format stream back into a BWT plus the order
// flag from its header.
func ReadNative(r io.Reader) (*bwt.BWT, Order, error) {
	var header [24]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, 0, fmt.Errorf("formats: read native header: %w", err)
	}
	tag := binary.LittleEndian.Uint32(header[0:4])
	if tag != NativeTag {
		return nil, 0, fmt.Errorf("formats: native header tag mismatch: got %#x, want %#x", tag, NativeTag)
	}
	order := Order(binary.LittleEndian.Uint32(header[4:8]) & 0xFF)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("formats: read native body: %w", err)
	}
	return bwt.FromRunStream(bytesToBlockArray(data)), order, nil
}

// WritePlain writes one raw byte per BWT position, in order -- the
// "plain" format: no run-length, no header.
func WritePlain(w io.Writer, b *bwt.BWT) error {
	const chunk = 1 << 16
	for lo := uint64(0); lo < b.Size(); lo += chunk {
		hi := lo + chunk - 1
		if hi >= b.Size() {
			hi = b.Size() - 1
		}
		if _, err := w.Write(b.Extract(lo, hi)); err != nil {
			return fmt.Errorf("formats: write plain body: %w", err)
		}
	}
	return nil
}

// ReadPlain reads a plain-format stream (one comp byte per position)
// back into a run-length encoded BWT.
func ReadPlain(r io.Reader) (*bwt.BWT, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("formats: read plain body: %w", err)
	}
	return bwt.FromComps(data), nil
}

// WriteRope writes b's run stream in rope format: header tag, then one
// body byte per run of at most maxRopeRun, top 3 bits the comp value and
// bottom 5 bits the literal run length, splitting longer runs across
// consecutive bytes.
func WriteRope(w io.Writer, b *bwt.BWT) error {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], RopeTag)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("formats: write rope header: %w", err)
	}
	return writeRopeBody(w, b)
}

// ReadRope reads a rope-format stream back into a run-length encoded
// BWT.
func ReadRope(r io.Reader) (*bwt.BWT, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("formats: read rope header: %w", err)
	}
	tag := binary.LittleEndian.Uint32(header[:])
	if tag != RopeTag {
		return nil, fmt.Errorf("formats: rope header tag mismatch: got %#x, want %#x", tag, RopeTag)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("formats: read rope body: %w", err)
	}
	return bwt.FromRunStream(runsToData(decodeRopeBody(body))), nil
}

// WriteSga writes b in sga format: header tag, three 64-bit counters
// (sequences, bases, bytes), a 32-bit flags word, then a rope-format
// body.
func WriteSga(w io.Writer, b *bwt.BWT) error {
	var header [28]byte
	binary.LittleEndian.PutUint32(header[0:4], SgaTag)
	binary.LittleEndian.PutUint64(header[4:12], b.Sequences())
	binary.LittleEndian.PutUint64(header[12:20], b.Size())
	binary.LittleEndian.PutUint64(header[20:28], uint64(b.Bytes()))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("formats: write sga header: %w", err)
	}
	var flags [4]byte
	if _, err := w.Write(flags[:]); err != nil {
		return fmt.Errorf("formats: write sga flags: %w", err)
	}
	return writeRopeBody(w, b)
}

// ReadSga reads an sga-format stream back into a run-length encoded BWT,
// ignoring the header's counters (recomputed by bwt.FromRunStream) beyond
// validating the tag.
func ReadSga(r io.Reader) (*bwt.BWT, error) {
	var header [32]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("formats: read sga header: %w", err)
	}
	tag := binary.LittleEndian.Uint32(header[0:4])
	if tag != SgaTag {
		return nil, fmt.Errorf("formats: sga header tag mismatch: got %#x, want %#x", tag, SgaTag)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("formats: read sga body: %w", err)
	}
	return bwt.FromRunStream(runsToData(decodeRopeBody(body))), nil
}

// WriteRfmSdsl writes b in the rfm/sdsl format: a little-endian 64-bit
// length prefix followed by one raw comp byte per position, padded with
// zero bytes to an 8-byte boundary.
func WriteRfmSdsl(w io.Writer, b *bwt.BWT) error {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], b.Size())
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("formats: write rfm-sdsl length prefix: %w", err)
	}
	if err := WritePlain(w, b); err != nil {
		return err
	}
	if pad := (8 - int(b.Size()%8)) % 8; pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("formats: write rfm-sdsl padding: %w", err)
		}
	}
	return nil
}

// ReadRfmSdsl reads an rfm/sdsl-format stream back into a run-length
// encoded BWT.
func ReadRfmSdsl(r io.Reader) (*bwt.BWT, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("formats: read rfm-sdsl length prefix: %w", err)
	}
	n := binary.LittleEndian.Uint64(lenBuf[:])
	comps := make([]byte, n)
	if _, err := io.ReadFull(r, comps); err != nil {
		return nil, fmt.Errorf("formats: read rfm-sdsl body: %w", err)
	}
	return bwt.FromComps(comps), nil
}

// Decode reads a BWT from r in the named format ("native", "plain",
// "rope", "sga", "rfm" or "sdsl" -- the latter two are aliases of the
// same length-prefixed body), the name-to-adapter dispatch cmd/bwtmerge
// uses for its -i flag.
func Decode(format string, r io.Reader) (*bwt.BWT, error) {
	switch format {
	case "", "native":
		b, _, err := ReadNative(r)
		return b, err
	case "plain":
		return ReadPlain(r)
	case "rope":
		return ReadRope(r)
	case "sga":
		return ReadSga(r)
	case "rfm", "sdsl":
		return ReadRfmSdsl(r)
	default:
		return nil, fmt.Errorf("formats: unknown input format %q", format)
	}
}

// Encode writes b to w in the named format, the dispatch cmd/bwtmerge
// uses for its -o flag.
func Encode(format string, w io.Writer, b *bwt.BWT) error {
	switch format {
	case "", "native":
		return WriteNative(w, b, OrderDefault)
	case "plain":
		return WritePlain(w, b)
	case "rope":
		return WriteRope(w, b)
	case "sga":
		return WriteSga(w, b)
	case "rfm", "sdsl":
		return WriteRfmSdsl(w, b)
	default:
		return fmt.Errorf("formats: unknown output format %q", format)
	}
}

// ropeRun is one decoded (comp, length) pair from a rope/sga body.
type ropeRun struct {
	comp   byte
	length uint64
}

func writeRopeBody(w io.Writer, b *bwt.BWT) error {
	data := b.Data()
	rlePos := 0
	for rlePos < data.Len() {
		comp, length := bitcode.ReadRun(data, &rlePos)
		for length > 0 {
			n := length
			if n > maxRopeRun {
				n = maxRopeRun
			}
			body := comp<<5 | byte(n)
			if _, err := w.Write([]byte{body}); err != nil {
				return fmt.Errorf("formats: write rope body byte: %w", err)
			}
			length -= n
		}
	}
	return nil
}

func decodeRopeBody(body []byte) []ropeRun {
	runs := make([]ropeRun, 0, len(body))
	for _, b := range body {
		runs = append(runs, ropeRun{comp: b >> 5, length: uint64(b & 0x1F)})
	}
	return runs
}

// runsToData re-encodes decoded rope runs into a bitcode.WriteRun stream
// held in a BlockArray, so bwt.FromRunStream can build a BWT from it
// directly.
func runsToData(runs []ropeRun) *blockarray.BlockArray {
	data := blockarray.New()
	for _, run := range runs {
		bitcode.WriteRun(data, run.comp, run.length)
	}
	return data
}

// bytesToBlockArray copies a plain byte slice (e.g. a native-format body
// already encoded as a bitcode.WriteRun stream) into a fresh BlockArray.
func bytesToBlockArray(raw []byte) *blockarray.BlockArray {
	data := blockarray.New()
	for _, b := range raw {
		data.PushByte(b)
	}
	return data
}

func copyRunStream(w io.Writer, b *bwt.BWT) error {
	data := b.Data()
	buf := make([]byte, data.Len())
	for i := range buf {
		buf[i] = data.ByteAt(i)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("formats: write native body: %w", err)
	}
	return nil
}
