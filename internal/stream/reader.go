// Package stream provides positioned, little-endian reads of fixed-width
// primitives, length-prefixed strings, and raw byte slices over an
// in-memory (typically memory-mapped) log buffer.
//
// It plays the role the foxglove mcap reader's getUint16/getUint32/getUint64
// and readPrefixedString helpers play for that format, generalized into a
// stateful cursor since frame and message parsing here is positional rather
// than purely sequential.
package stream

import (
	"encoding/binary"
	"math"

	"github.com/badger-rl/logreader/internal/logerr"
)

// Reader is a positioned cursor over a byte buffer. The zero value is not
// usable; construct with New.
type Reader struct {
	buf []byte
	pos int64
}

// New returns a Reader positioned at the start of buf. buf is not copied;
// callers are expected to pass a memory-mapped or otherwise stable buffer.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the total number of bytes in the underlying buffer.
func (r *Reader) Len() int64 {
	return int64(len(r.buf))
}

// Tell returns the current cursor position.
func (r *Reader) Tell() int64 {
	return r.pos
}

// Seek moves the cursor to an absolute position. It does not validate the
// position is in range; the next read will fail with ErrShortRead if so.
func (r *Reader) Seek(pos int64) {
	r.pos = pos
}

func (r *Reader) need(n int64) ([]byte, error) {
	if r.pos < 0 || r.pos+n > int64(len(r.buf)) {
		return nil, logerr.ErrShortRead
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads one unsigned byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.need(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadI8 reads one signed byte.
func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.need(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI16 reads a little-endian int16.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadU24 reads a little-endian 24-bit unsigned integer, as used by message
// payload-length headers.
func (r *Reader) ReadU24() (uint32, error) {
	b, err := r.need(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI64 reads a little-endian int64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF32 reads a little-endian IEEE-754 single-precision float.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64 reads a little-endian IEEE-754 double-precision float.
func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads one byte and reports whether it is non-zero.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// PeekAt reads n bytes at an absolute position without moving the cursor.
func (r *Reader) PeekAt(pos int64, n int) ([]byte, error) {
	if pos < 0 || pos+int64(n) > int64(len(r.buf)) {
		return nil, logerr.ErrShortRead
	}
	return r.buf[pos : pos+int64(n)], nil
}

// ReadBytes reads n raw bytes. The returned slice aliases the underlying
// buffer and must not be retained past the buffer's lifetime if the caller
// intends to mutate it; the log reader treats the mapping as read-only.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.need(int64(n))
}

// ReadString reads a u32-length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	b, err := r.need(int64(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// QueueHeader is the three-word header preceding an Uncompressed chunk's
// frame stream: a high/low split of the used-size field and a flag word
// whose sentinel value 0x0FFFFFFF means "no index".
type QueueHeader struct {
	UsedSizeHigh uint32
	Flags        uint32
	UsedSizeLow  uint32
}

// NoIndexFlag is the sentinel Flags value meaning the queue carries no index.
const NoIndexFlag = 0x0FFFFFFF

// UsedSize combines the high/low words into the 64-bit used-size value.
func (h QueueHeader) UsedSize() uint64 {
	return uint64(h.UsedSizeHigh)<<32 | uint64(h.UsedSizeLow)
}

// HasIndex reports whether the queue header's flag word is not the
// "no index" sentinel.
func (h QueueHeader) HasIndex() bool {
	return h.Flags != NoIndexFlag
}

// ReadQueueHeader reads the three u32 words that together encode the queue
// metadata preceding an Uncompressed chunk's message stream.
func (r *Reader) ReadQueueHeader() (QueueHeader, error) {
	a, err := r.ReadU32()
	if err != nil {
		return QueueHeader{}, err
	}
	b, err := r.ReadU32()
	if err != nil {
		return QueueHeader{}, err
	}
	c, err := r.ReadU32()
	if err != nil {
		return QueueHeader{}, err
	}
	return QueueHeader{UsedSizeHigh: a, Flags: b, UsedSizeLow: c}, nil
}
