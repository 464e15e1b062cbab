// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package column implements the in-memory columnar model: a closed set
// of column variants (typed-numeric, string, nullable, array, map,
// tuple, variant, dynamic, json, low-cardinality) distinguishing
// physical storage from the virtual row view built on top of it in
// package rowview. Generalizes the teacher's Col/Type enum
// (ts/ts.go's Hash/Int64/Bool/String/Bytes/Any) to the full column-entity
// set of spec.md §3.
package column

import (
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// Value is a single decoded cell. Its concrete Go type depends on the
// column's type: primitives for scalars, *big.Int for 128/256-bit
// integers, uuid.UUID, wiretime.* wrappers, []byte for strings/bytes,
// []Value for arrays, map-like shapes for Map/Tuple, and nil for SQL
// NULL.
type Value = any

// Column is the capability surface every column variant implements.
// Virtual dispatch is an interface rather than a vtable-like struct,
// matching spec.md §9's "virtual dispatch via a vtable-like interface or
// an enum + match is equivalent; choose what the host language makes
// efficient" — interfaces are what Go makes efficient.
type Column interface {
	// Len returns the row count.
	Len() uint64
	// Get returns the value at row i, or an error if i is out of range.
	Get(i uint64) (Value, error)
	// Type returns the column's type expression.
	Type() *typeexpr.Expr
}

// Iterator yields every value of a column in order.
type Iterator interface {
	Next() (Value, bool, error)
}

// Iter returns a generic Iterator backed by repeated Get calls; it works
// for every Column, and no variant provides a separate iterator.
func Iter(c Column) Iterator {
	return &genericIter{c: c}
}

type genericIter struct {
	c   Column
	pos uint64
}

func (it *genericIter) Next() (Value, bool, error) {
	if it.pos >= it.c.Len() {
		return nil, false, nil
	}
	v, err := it.c.Get(it.pos)
	it.pos++
	return v, true, err
}

func outOfRange(i, n uint64) error {
	return wireerr.Newf(wireerr.KindRangeError, "row index %d out of range [0,%d)", i, n)
}

// MaxSafeIndex is the largest row/offset index nativewire will convert to
// a host int without raising a RangeError, per spec.md invariant 3 ("a
// decoder must refuse to materialize as host-integer indices if the last
// offset exceeds the safe integer range of the host language").
//
// Go's int is 64-bit on every platform this module targets, so the limit
// is the largest value representable without ambiguity across a JS-style
// "safe integer" boundary: 2^53-1, matching the spec's cross-host
// contract rather than Go's own (wider) native range.
const MaxSafeIndex = (uint64(1) << 53) - 1

// CheckSafeIndex raises a RangeError if v exceeds MaxSafeIndex.
func CheckSafeIndex(v uint64, what string) error {
	if v > MaxSafeIndex {
		return wireerr.Newf(wireerr.KindRangeError, "%s (%d) exceeds safe integer range", what, v)
	}
	return nil
}

// CheckNonDecreasing raises an InvalidWireFormat error at the first index
// where offsets decreases, per spec.md's "offset non-monotonic" trigger
// for Array/Map cumulative-length arrays.
func CheckNonDecreasing(offsets []uint64, what string) error {
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return wireerr.Newf(wireerr.KindInvalidWireFormat, "%s: offset at row %d (%d) is less than the previous offset (%d)", what, i, offsets[i], offsets[i-1])
		}
	}
	return nil
}
