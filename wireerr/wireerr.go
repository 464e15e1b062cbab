// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wireerr defines the error taxonomy used throughout the codec
// pipeline: the kind of failure, the type string and position it occurred
// at, and (when available) the column name.
package wireerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind distinguishes the handful of ways a codec operation can fail.
type Kind int

const (
	// KindBufferUnderflow means a read ran past the available bytes.
	// Only the streaming driver is allowed to recover from this kind.
	KindBufferUnderflow Kind = iota + 1
	// KindInvalidWireFormat means the bytes on the wire do not match the
	// protocol (unknown version, bad block-info field, non-monotonic
	// offsets, out-of-range discriminator, malformed LowCardinality flags).
	KindInvalidWireFormat
	// KindRangeError means a value is outside the declared type's domain.
	KindRangeError
	// KindCoercionError means a user-supplied value cannot be coerced to
	// the target type.
	KindCoercionError
	// KindGrammarError means a type string failed to parse.
	KindGrammarError
	// KindEnumViolation means a name or value is not part of an enum's
	// declared mapping.
	KindEnumViolation
)

func (k Kind) String() string {
	switch k {
	case KindBufferUnderflow:
		return "BufferUnderflow"
	case KindInvalidWireFormat:
		return "InvalidWireFormat"
	case KindRangeError:
		return "RangeError"
	case KindCoercionError:
		return "CoercionError"
	case KindGrammarError:
		return "GrammarError"
	case KindEnumViolation:
		return "EnumViolation"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type carried through the codec pipeline.
// It always identifies the kind and, where known, the type string being
// processed and the byte offset or row index of the failure.
type Error struct {
	Kind kind
	// TypeString is the canonical type string of the column being
	// processed, if known.
	TypeString string
	// Column is the column name, if known.
	Column string
	// Offset is the byte offset into the current buffer, or -1 if not
	// applicable.
	Offset int64
	// Row is the row index, or -1 if not applicable.
	Row int64
	// Requested is the number of bytes a BufferUnderflow needed beyond
	// what was available. Zero for other kinds.
	Requested int

	msg   string
	cause error
}

type kind = Kind

// New creates an Error of the given kind with a message, capturing a
// stack trace via pkg/errors so production failures are diagnosable.
func New(k Kind, msg string) *Error {
	e := &Error{Kind: k, Offset: -1, Row: -1, msg: msg}
	e.cause = errors.New(e.Error())
	return e
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(k Kind, format string, args ...interface{}) *Error {
	return New(k, fmt.Sprintf(format, args...))
}

// Underflow builds a BufferUnderflow error requesting n more bytes than
// were available.
func Underflow(requested int) *Error {
	e := New(KindBufferUnderflow, fmt.Sprintf("buffer underflow: need %d more byte(s)", requested))
	e.Requested = requested
	return e
}

// WithType annotates the error with the type string being processed.
func (e *Error) WithType(t string) *Error {
	e.TypeString = t
	return e
}

// WithColumn annotates the error with the column name.
func (e *Error) WithColumn(name string) *Error {
	e.Column = name
	return e
}

// WithOffset annotates the error with a byte offset.
func (e *Error) WithOffset(off int64) *Error {
	e.Offset = off
	return e
}

// WithRow annotates the error with a row index.
func (e *Error) WithRow(row int64) *Error {
	e.Row = row
	return e
}

func (e *Error) Error() string {
	s := e.Kind.String() + ": " + e.msg
	if e.TypeString != "" {
		s += fmt.Sprintf(" (type=%s)", e.TypeString)
	}
	if e.Column != "" {
		s += fmt.Sprintf(" (column=%s)", e.Column)
	}
	if e.Offset >= 0 {
		s += fmt.Sprintf(" (offset=%d)", e.Offset)
	}
	if e.Row >= 0 {
		s += fmt.Sprintf(" (row=%d)", e.Row)
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsUnderflow reports whether err is (or wraps) a BufferUnderflow.
func IsUnderflow(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindBufferUnderflow
	}
	return false
}

// RequestedBytes returns the number of additional bytes a BufferUnderflow
// error requested, or 0 if err is not a BufferUnderflow.
func RequestedBytes(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindBufferUnderflow {
		return e.Requested
	}
	return 0
}
