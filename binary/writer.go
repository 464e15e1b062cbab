// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package binary implements the codec's low-level byte buffers: a
// growable write buffer and a random-access read buffer with varint,
// string, and typed-array support. All multi-byte primitives are
// little-endian, matching the wire formats of the database this codec
// talks to.
package binary

import (
	"encoding/binary"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/solidcoredata/nativewire/wireerr"
)

// Writer is a growable byte buffer with amortized-doubling growth,
// mirroring the teacher's chunkBuffer-reuse idiom but generalized to every
// primitive width the wire formats need.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity hint.
func NewWriter(capHint int) *Writer {
	if capHint < 64 {
		capHint = 64
	}
	return &Writer{buf: make([]byte, 0, capHint)}
}

// Reserve ensures at least n more bytes of capacity are available.
func (w *Writer) Reserve(n int) {
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	need := len(w.buf) + n
	newCap := cap(w.buf) * 2
	if newCap < need {
		newCap = need
	}
	nb := make([]byte, len(w.buf), newCap)
	copy(nb, w.buf)
	w.buf = nb
}

// Bytes returns the accumulated bytes. The slice is only valid until the
// next mutating call.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Reset empties the buffer while keeping the underlying storage.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// Write appends raw bytes.
func (w *Writer) Write(b []byte) {
	w.Reserve(len(b))
	w.buf = append(w.buf, b...)
}

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) {
	w.Reserve(1)
	w.buf = append(w.buf, v)
}

// WriteBool appends a single 0/1 byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

// WriteU16LE appends a little-endian uint16.
func (w *Writer) WriteU16LE(v uint16) {
	w.Reserve(2)
	n := len(w.buf)
	w.buf = w.buf[:n+2]
	binary.LittleEndian.PutUint16(w.buf[n:], v)
}

// WriteU32LE appends a little-endian uint32.
func (w *Writer) WriteU32LE(v uint32) {
	w.Reserve(4)
	n := len(w.buf)
	w.buf = w.buf[:n+4]
	binary.LittleEndian.PutUint32(w.buf[n:], v)
}

// WriteU64LE appends a little-endian uint64.
func (w *Writer) WriteU64LE(v uint64) {
	w.Reserve(8)
	n := len(w.buf)
	w.buf = w.buf[:n+8]
	binary.LittleEndian.PutUint64(w.buf[n:], v)
}

// WriteI8 appends a signed byte.
func (w *Writer) WriteI8(v int8) { w.WriteU8(uint8(v)) }

// WriteI16LE appends a little-endian int16.
func (w *Writer) WriteI16LE(v int16) { w.WriteU16LE(uint16(v)) }

// WriteI32LE appends a little-endian int32.
func (w *Writer) WriteI32LE(v int32) { w.WriteU32LE(uint32(v)) }

// WriteI64LE appends a little-endian int64.
func (w *Writer) WriteI64LE(v int64) { w.WriteU64LE(uint64(v)) }

// WriteF32LE appends a little-endian IEEE-754 float32. Any bit pattern,
// including NaN payloads, round-trips exactly; callers reject non-finite
// values before calling this if the type's encode contract requires it.
func (w *Writer) WriteF32LE(v float32) {
	w.WriteU32LE(math.Float32bits(v))
}

// WriteF64LE appends a little-endian IEEE-754 float64.
func (w *Writer) WriteF64LE(v float64) {
	w.WriteU64LE(math.Float64bits(v))
}

// WriteVarint appends v as unsigned LEB128: 7 data bits per byte, MSB set
// indicates continuation.
func (w *Writer) WriteVarint(v uint64) {
	w.Reserve(10)
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// WriteString appends varint(len) || utf8 bytes, per the wire contract of
// every String-typed field.
func (w *Writer) WriteString(s string) {
	w.WriteVarint(uint64(len(s)))
	w.Write([]byte(s))
}

// WriteBigIntLE appends n as a fixed-width, little-endian, two's
// complement integer of byteLen bytes. Used for Int128/256 and
// UInt128/256.
func (w *Writer) WriteBigIntLE(n *big.Int, byteLen int, signed bool) {
	w.Reserve(byteLen)
	buf := make([]byte, byteLen)
	bigToLE(n, buf, signed)
	w.buf = append(w.buf, buf...)
}

// WriteDecimal appends an unscaled integer coefficient as a fixed-width
// little-endian two's complement integer, per Decimal32/64/128/256's wire
// contract.
func (w *Writer) WriteDecimal(unscaled *big.Int, byteLen int) {
	w.WriteBigIntLE(unscaled, byteLen, true)
}

// EncodeRuneSafe validates s is valid UTF-8, returning the number of
// runes. The String and FixedString encoders do not call it.
func EncodeRuneSafe(s string) (runeCount int, ok bool) {
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size <= 1 {
				return runeCount, false
			}
		}
		runeCount++
	}
	return runeCount, true
}

func bigToLE(n *big.Int, out []byte, signed bool) {
	neg := signed && n.Sign() < 0
	var mag *big.Int
	if neg {
		// two's complement: (1<<bits) + n
		bits := uint(len(out) * 8)
		mod := new(big.Int).Lsh(big.NewInt(1), bits)
		mag = new(big.Int).Add(mod, n)
	} else {
		mag = new(big.Int).Set(n)
	}
	b := mag.Bytes() // big-endian
	for i := 0; i < len(b) && i < len(out); i++ {
		out[len(out)-1-i] = b[len(b)-1-i]
	}
}

// RangeErrorf is a convenience constructor shared by scalar encoders.
func RangeErrorf(format string, args ...interface{}) error {
	return wireerr.Newf(wireerr.KindRangeError, format, args...)
}
