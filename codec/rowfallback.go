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

// rowFallbackCodec implements the alternate row-oriented encoder of
// spec.md §4.F: for a type string the grammar doesn't recognize natively,
// each row is an opaque varint(len)||bytes blob, invoked once per row
// rather than laid out column-major. Construction never fails; an
// unrecognized type string is always representable this way.
type rowFallbackCodec struct {
	expr *typeexpr.Expr
}

func newRowFallbackCodec(expr *typeexpr.Expr) Codec {
	return &rowFallbackCodec{expr: expr}
}

func (c *rowFallbackCodec) TypeExpr() *typeexpr.Expr                        { return c.expr }
func (c *rowFallbackCodec) EstimateSize(rows uint64) uint64                 { return rows * 17 }
func (c *rowFallbackCodec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *rowFallbackCodec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }
func (c *rowFallbackCodec) ZeroValue() column.Value                        { return []byte{} }

func (c *rowFallbackCodec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		b, err := coerceBytes(v)
		if err != nil {
			return wireerr.Newf(wireerr.KindCoercionError, "alternate encoder: row %d of %s: %v", i, c.expr.Raw, err)
		}
		w.WriteVarint(uint64(len(b)))
		w.Write(b)
	}
	return nil
}

func (c *rowFallbackCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	out := make([]column.Value, rows)
	for i := range out {
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		b, err := r.CopyBytes(int(n))
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return &column.Generic{Expr: c.expr, Rows: out}, nil
}

func (c *rowFallbackCodec) FromValues(values []column.Value) (column.Column, error) {
	out := make([]column.Value, len(values))
	copy(out, values)
	return &column.Generic{Expr: c.expr, Rows: out}, nil
}
