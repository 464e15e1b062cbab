// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// arrayCodec handles Array(T): a u64 offsets array followed by T's
// flattened payload, per spec.md §4.G. Also backs Nested(...), which
// desugars to Array(Tuple(...)) one level up in Registry.buildNested;
// nested/nestedExpr let TypeExpr() report the original Nested type.
type arrayCodec struct {
	expr       *typeexpr.Expr
	inner      Codec
	nested     bool
	nestedExpr *typeexpr.Expr
}

func (c *arrayCodec) TypeExpr() *typeexpr.Expr {
	if c.nested {
		return c.nestedExpr
	}
	return c.expr
}

func (c *arrayCodec) EstimateSize(rows uint64) uint64 {
	return rows*8 + c.inner.EstimateSize(rows*4)
}

type arrayPrefix struct {
	inner PrefixState
}

func (c *arrayCodec) WritePrefix(w *binary.Writer, col column.Column) error {
	ac, ok := col.(*column.Array)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Array codec: expected *column.Array, got %T", col)
	}
	return c.inner.WritePrefix(w, ac.Inner)
}

func (c *arrayCodec) ReadPrefix(r *binary.Reader) (PrefixState, error) {
	inner, err := c.inner.ReadPrefix(r)
	if err != nil {
		return nil, err
	}
	return arrayPrefix{inner: inner}, nil
}

func (c *arrayCodec) Encode(w *binary.Writer, col column.Column) error {
	ac, ok := col.(*column.Array)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Array codec: expected *column.Array, got %T", col)
	}
	for _, off := range ac.Offsets {
		w.WriteU64LE(off)
	}
	return c.inner.Encode(w, ac.Inner)
}

func (c *arrayCodec) Decode(r *binary.Reader, rows uint64, prefix PrefixState) (column.Column, error) {
	ap, _ := prefix.(arrayPrefix)
	offsets, err := binary.ReadTypedArray[uint64](r, int(rows), 8)
	if err != nil {
		return nil, err
	}
	if err := column.CheckNonDecreasing(offsets, "Array offsets"); err != nil {
		return nil, err
	}
	var total uint64
	if rows > 0 {
		total = offsets[rows-1]
	}
	if err := column.CheckSafeIndex(total, "array flattened length"); err != nil {
		return nil, err
	}
	inner, err := c.inner.Decode(r, total, ap.inner)
	if err != nil {
		return nil, err
	}
	return &column.Array{Expr: c.TypeExpr(), Inner: inner, Offsets: offsets}, nil
}

func (c *arrayCodec) FromValues(values []column.Value) (column.Column, error) {
	offsets := make([]uint64, len(values))
	var flattened []column.Value
	for i, v := range values {
		rowVals, ok := v.([]column.Value)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "Array codec: expected []Value row, got %T", v)
		}
		flattened = append(flattened, rowVals...)
		offsets[i] = uint64(len(flattened))
	}
	inner, err := c.inner.FromValues(flattened)
	if err != nil {
		return nil, err
	}
	return &column.Array{Expr: c.TypeExpr(), Inner: inner, Offsets: offsets}, nil
}

func (c *arrayCodec) ZeroValue() column.Value { return []column.Value{} }
