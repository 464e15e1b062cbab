// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package streambuf holds the unconsumed suffix of a byte stream across
// chunk arrivals, presenting it as a single contiguous view even when the
// appended chunks were discontiguous. Mirrors the teacher's
// bytes.Buffer-reuse idiom (ts/writer.go's chunkBuffer), generalized to a
// consuming reader rather than a one-shot writer.
package streambuf

// DefaultMinBuffer is the default minimum capacity retained before
// compaction is attempted, per spec.md's 2 MiB default.
const DefaultMinBuffer = 2 << 20

// Buffer accumulates appended chunks and lets callers consume a prefix.
// It amortizes consume to O(1) by tracking a head offset and only
// compacting (shifting the unread tail to the front) once the head
// exceeds MinBuffer or compaction would otherwise avoid doubling the
// allocation.
type Buffer struct {
	data      []byte
	head      int
	MinBuffer int
}

// New returns an empty Buffer with the given minimum retained capacity.
// A zero or negative minBuffer uses DefaultMinBuffer.
func New(minBuffer int) *Buffer {
	if minBuffer <= 0 {
		minBuffer = DefaultMinBuffer
	}
	return &Buffer{MinBuffer: minBuffer}
}

// Append adds chunk to the buffer's unconsumed suffix.
func (b *Buffer) Append(chunk []byte) {
	b.data = append(b.data, chunk...)
}

// View returns the contiguous, unconsumed bytes. The returned slice is a
// borrow: it aliases the Buffer's backing array and is invalidated by the
// next Append or Consume call. Callers that need to retain bytes past
// that point (e.g. a decoder holding a zero-copy typed-array reference)
// must copy first.
func (b *Buffer) View() []byte {
	return b.data[b.head:]
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.head
}

// Consume advances the head by n bytes, which must not exceed Len().
// Compaction (shifting the tail to the front of the backing array) only
// happens when the dead prefix exceeds MinBuffer, or when it has grown to
// at least half the backing array's capacity (avoiding an unbounded
// doubling of allocation purely to hold already-consumed bytes).
func (b *Buffer) Consume(n int) {
	b.head += n
	if b.head == 0 {
		return
	}
	if b.head >= b.MinBuffer || b.head*2 >= cap(b.data) {
		b.compact()
	}
}

func (b *Buffer) compact() {
	remaining := len(b.data) - b.head
	copy(b.data[:remaining], b.data[b.head:])
	b.data = b.data[:remaining]
	b.head = 0
}

// Reset empties the buffer entirely, keeping the underlying storage for
// reuse.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.head = 0
}
