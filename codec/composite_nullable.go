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

// nullableCodec handles Nullable(T): row_count null-flag bytes followed
// by T's payload for the full row count (null positions hold T's zero
// value). T's prefix, if any, is written before the flags.
type nullableCodec struct {
	expr  *typeexpr.Expr
	inner Codec
}

func (c *nullableCodec) TypeExpr() *typeexpr.Expr { return c.expr }

func (c *nullableCodec) EstimateSize(rows uint64) uint64 {
	return rows + c.inner.EstimateSize(rows)
}

func (c *nullableCodec) WritePrefix(w *binary.Writer, col column.Column) error {
	nc, ok := col.(*column.Nullable)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Nullable codec: expected *column.Nullable, got %T", col)
	}
	return c.inner.WritePrefix(w, nc.Inner)
}

func (c *nullableCodec) ReadPrefix(r *binary.Reader) (PrefixState, error) {
	return c.inner.ReadPrefix(r)
}

func (c *nullableCodec) Encode(w *binary.Writer, col column.Column) error {
	nc, ok := col.(*column.Nullable)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Nullable codec: expected *column.Nullable, got %T", col)
	}
	w.Write(nc.Nulls)
	return c.inner.Encode(w, nc.Inner)
}

func (c *nullableCodec) Decode(r *binary.Reader, rows uint64, prefix PrefixState) (column.Column, error) {
	flags, err := r.CopyBytes(int(rows))
	if err != nil {
		return nil, err
	}
	inner, err := c.inner.Decode(r, rows, prefix)
	if err != nil {
		return nil, err
	}
	return &column.Nullable{Expr: c.expr, Nulls: flags, Inner: inner}, nil
}

func (c *nullableCodec) FromValues(values []column.Value) (column.Column, error) {
	nulls := make([]byte, len(values))
	inner := make([]column.Value, len(values))
	zero := c.inner.ZeroValue()
	for i, v := range values {
		if v == nil {
			nulls[i] = 1
			inner[i] = zero
			continue
		}
		inner[i] = v
	}
	innerCol, err := c.inner.FromValues(inner)
	if err != nil {
		return nil, err
	}
	return &column.Nullable{Expr: c.expr, Nulls: nulls, Inner: innerCol}, nil
}

func (c *nullableCodec) ZeroValue() column.Value { return nil }
