// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package binary

import (
	"encoding/binary"
	"math"
	"math/big"
	"unsafe"

	"github.com/solidcoredata/nativewire/wireerr"
)

// Reader is a random-access view over a contiguous byte slice with a
// mutable cursor. Every read may fail with a BufferUnderflow error; on
// failure the cursor is never advanced, so callers (the block/stream
// layers) can checkpoint a Reader's position and restore it verbatim.
type Reader struct {
	buf    []byte
	cursor int

	// debugChecks counts how many times a read checked for available
	// bytes, surfaced via the `debug` decode option.
	debugChecks int
}

// NewReader wraps buf for reading starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.cursor }

// Len returns the total number of bytes in the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.cursor }

// Seek moves the cursor to an absolute offset. Used to restore a
// checkpoint after a BufferUnderflow.
func (r *Reader) Seek(pos int) { r.cursor = pos }

// DebugChecks returns the number of underflow checks performed so far.
func (r *Reader) DebugChecks() int { return r.debugChecks }

func (r *Reader) need(n int) error {
	r.debugChecks++
	if r.cursor+n > len(r.buf) {
		return wireerr.Underflow((r.cursor + n) - len(r.buf))
	}
	return nil
}

// ReadBytes borrows n bytes at the cursor without copying and advances
// the cursor. The returned slice aliases the Reader's backing array and
// is only valid until the backing array is mutated or discarded.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.cursor : r.cursor+n]
	r.cursor += n
	return b, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.cursor]
	r.cursor++
	return v, nil
}

// ReadBool reads a single 0/1 byte.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	return v != 0, err
}

// ReadU16LE reads a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.cursor:])
	r.cursor += 2
	return v, nil
}

// ReadU32LE reads a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.cursor:])
	r.cursor += 4
	return v, nil
}

// ReadU64LE reads a little-endian uint64.
func (r *Reader) ReadU64LE() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.cursor:])
	r.cursor += 8
	return v, nil
}

// ReadI8 reads a signed byte.
func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

// ReadI16LE reads a little-endian int16.
func (r *Reader) ReadI16LE() (int16, error) {
	v, err := r.ReadU16LE()
	return int16(v), err
}

// ReadI32LE reads a little-endian int32.
func (r *Reader) ReadI32LE() (int32, error) {
	v, err := r.ReadU32LE()
	return int32(v), err
}

// ReadI64LE reads a little-endian int64.
func (r *Reader) ReadI64LE() (int64, error) {
	v, err := r.ReadU64LE()
	return int64(v), err
}

// ReadF32LE reads a little-endian IEEE-754 float32. Any bit pattern is
// accepted, including signaling/quiet NaN payloads.
func (r *Reader) ReadF32LE() (float32, error) {
	v, err := r.ReadU32LE()
	return math.Float32frombits(v), err
}

// ReadF64LE reads a little-endian IEEE-754 float64.
func (r *Reader) ReadF64LE() (float64, error) {
	v, err := r.ReadU64LE()
	return math.Float64frombits(v), err
}

// ReadVarint reads an unsigned LEB128 varint.
func (r *Reader) ReadVarint() (uint64, error) {
	start := r.cursor
	var result uint64
	var shift uint
	for {
		if err := r.need(1); err != nil {
			r.cursor = start
			return 0, err
		}
		b := r.buf[r.cursor]
		r.cursor++
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			r.cursor = start
			return 0, wireerr.New(wireerr.KindInvalidWireFormat, "varint too long")
		}
	}
}

// ReadString reads a varint-prefixed UTF-8 string. On underflow the
// cursor is restored to its pre-call position so the whole read is
// atomic.
func (r *Reader) ReadString() (string, error) {
	start := r.cursor
	n, err := r.ReadVarint()
	if err != nil {
		r.cursor = start
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		r.cursor = start
		return "", err
	}
	return string(b), nil
}

// ReadBigIntLE reads byteLen bytes as a little-endian, two's complement
// integer (signed or unsigned) into a big.Int.
func (r *Reader) ReadBigIntLE(byteLen int, signed bool) (*big.Int, error) {
	b, err := r.ReadBytes(byteLen)
	if err != nil {
		return nil, err
	}
	return leToBig(b, signed), nil
}

func leToBig(le []byte, signed bool) *big.Int {
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	n := new(big.Int).SetBytes(be)
	if signed && len(be) > 0 && be[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(be)*8))
		n.Sub(n, mod)
	}
	return n
}

// ReadTypedArray reinterprets the next count*elemSize bytes as a []T
// without copying when the cursor is aligned for T's element size;
// otherwise it copies into a freshly allocated, properly aligned slice.
// T must be a fixed-size primitive (uint8/16/32/64, int8/16/32/64,
// float32/64); elemSize must equal unsafe.Sizeof(T(0)).
func ReadTypedArray[T any](r *Reader, count int, elemSize int) ([]T, error) {
	n := count * elemSize
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	addr := uintptr(unsafe.Pointer(&b[0]))
	if addr%uintptr(elemSize) == 0 {
		return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), count), nil
	}
	cp := make([]byte, n)
	copy(cp, b)
	return unsafe.Slice((*T)(unsafe.Pointer(&cp[0])), count), nil
}

// CopyBytes returns a stable copy of the next n bytes, advancing the
// cursor. Used by decoders whose column must not alias the Reader's
// buffer.
func (r *Reader) CopyBytes(n int) ([]byte, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	cp := make([]byte, n)
	copy(cp, b)
	return cp, nil
}
