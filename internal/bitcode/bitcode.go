// Package bitcode implements the byte-level codecs the rest of the module
// builds on: a 7-bit variable-byte integer encoding and a run (comp, length)
// encoding aligned to 64-byte blocks so that a reader can resynchronize from
// any block offset without scanning the whole preceding stream.
package bitcode

// Sigma is the size of the run-length alphabet the BWT core operates on:
// the endmarker plus five DNA symbols (A, C, G, T, N).
const Sigma = 6

// MaxBasic is floor(256/Sigma). Runs shorter than MaxBasic fit in a single
// basic byte alongside their comp value; a basic byte that decodes to
// MaxBasic is followed by a varint extension holding length - MaxBasic.
const MaxBasic = 256 / Sigma

// BlockSize is the encoding block: no run's encoding may cross it.
const BlockSize = 64

const dataBits = 7
const dataMask = byte(0x7F)
const nextByte = byte(0x80)

// Sink is anything runs and varints can be appended to.
type Sink interface {
	PushByte(b byte)
	Len() int
}

// Source is anything runs and varints can be read back from by index.
type Source interface {
	ByteAt(i int) byte
}

// WriteUvarint appends value using 7 bits per byte, LSB first, with the
// continuation bit in bit 7.
func WriteUvarint(dst Sink, value uint64) {
	for value > uint64(dataMask) {
		dst.PushByte(byte(value&uint64(dataMask)) | nextByte)
		value >>= dataBits
	}
	dst.PushByte(byte(value))
}

// ReadUvarint reads the value starting at *pos and advances *pos past it.
func ReadUvarint(src Source, pos *int) uint64 {
	offset := uint(0)
	i := *pos
	res := uint64(src.ByteAt(i)) & uint64(dataMask)
	for src.ByteAt(i)&nextByte != 0 {
		i++
		offset += dataBits
		res += (uint64(src.ByteAt(i)) & uint64(dataMask)) << offset
	}
	i++
	*pos = i
	return res
}

// encodeBasic packs a comp value and a (clipped) run length into one byte.
func encodeBasic(comp byte, length uint64) byte {
	clipped := length - 1
	if clipped > MaxBasic-1 {
		clipped = MaxBasic - 1
	}
	return comp + byte(Sigma)*byte(clipped)
}

// decodeBasic is the inverse of encodeBasic.
func decodeBasic(code byte) (comp byte, length uint64) {
	return code % byte(Sigma), uint64(code/byte(Sigma)) + 1
}

// WriteRun appends (comp, length) to dst, splitting the run if its encoding
// would otherwise cross a BlockSize boundary.
func WriteRun(dst Sink, comp byte, length uint64) {
	for length > 0 {
		if length < MaxBasic {
			dst.PushByte(encodeBasic(comp, length))
			return
		}

		bytesRemaining := BlockSize - dst.Len()%BlockSize
		basicLength := uint64(MaxBasic)
		if bytesRemaining <= 1 {
			basicLength = MaxBasic - 1
		}
		dst.PushByte(encodeBasic(comp, basicLength))
		length -= basicLength
		bytesRemaining--

		if bytesRemaining > 0 {
			extensionLength := length
			if bitLength(length) > dataBits*bytesRemaining {
				extensionLength = (uint64(1) << uint(dataBits*bytesRemaining)) - 1
			}
			WriteUvarint(dst, extensionLength)
			length -= extensionLength
		}
	}
}

// ReadRun reads a (comp, length) pair starting at *pos and advances *pos
// past it.
func ReadRun(src Source, pos *int) (comp byte, length uint64) {
	comp, length = decodeBasic(src.ByteAt(*pos))
	*pos++
	if length >= MaxBasic {
		length += ReadUvarint(src, pos)
	}
	return comp, length
}

func bitLength(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// ByteReader is the minimal streaming source spill files decode from: a
// single forward-only byte at a time, as bufio.Reader provides.
type ByteReader interface {
	ReadByte() (byte, error)
}

// ByteWriter is the minimal streaming sink spill files encode to.
type ByteWriter interface {
	WriteByte(c byte) error
}

// StreamWriteUvarint is WriteUvarint over a plain byte stream (spill files),
// rather than an indexable Sink.
func StreamWriteUvarint(w ByteWriter, value uint64) error {
	for value > uint64(dataMask) {
		if err := w.WriteByte(byte(value&uint64(dataMask)) | nextByte); err != nil {
			return err
		}
		value >>= dataBits
	}
	return w.WriteByte(byte(value))
}

// StreamReadUvarint is ReadUvarint over a plain byte stream.
func StreamReadUvarint(r ByteReader) (uint64, error) {
	offset := uint(0)
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	res := uint64(b) & uint64(dataMask)
	for b&nextByte != 0 {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		offset += dataBits
		res += (uint64(b) & uint64(dataMask)) << offset
	}
	return res, nil
}
