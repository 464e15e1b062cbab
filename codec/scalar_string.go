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

// stringCodec handles String: a sequence of varint(len)||bytes entries.
type stringCodec struct {
	expr *typeexpr.Expr
}

func (c *stringCodec) TypeExpr() *typeexpr.Expr { return c.expr }

// EstimateSize assumes an average of 16 bytes per row plus its length
// prefix; callers that know their data's real average should not rely
// on this for exact allocation.
func (c *stringCodec) EstimateSize(rows uint64) uint64 { return rows * 17 }

func (c *stringCodec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *stringCodec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }

func (c *stringCodec) Encode(w *binary.Writer, col column.Column) error {
	sc, ok := col.(*column.String)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "String codec: expected *column.String, got %T", col)
	}
	n := sc.Len()
	for i := uint64(0); i < n; i++ {
		v, err := sc.Get(i)
		if err != nil {
			return err
		}
		b := v.([]byte)
		w.WriteVarint(uint64(len(b)))
		w.Write(b)
	}
	return nil
}

func (c *stringCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	data := make([]byte, 0)
	offsets := make([]uint64, rows)
	for i := uint64(0); i < rows; i++ {
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		b, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		data = append(data, b...)
		offsets[i] = uint64(len(data))
	}
	return &column.String{Expr: c.expr, Data: data, Offsets: offsets}, nil
}

func (c *stringCodec) FromValues(values []column.Value) (column.Column, error) {
	var data []byte
	offsets := make([]uint64, len(values))
	for i, v := range values {
		b, err := coerceBytes(v)
		if err != nil {
			return nil, err
		}
		data = append(data, b...)
		offsets[i] = uint64(len(data))
	}
	return &column.String{Expr: c.expr, Data: data, Offsets: offsets}, nil
}

func (c *stringCodec) ZeroValue() column.Value { return []byte{} }

func coerceBytes(v column.Value) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return nil, wireerr.Newf(wireerr.KindCoercionError, "cannot coerce %T to a string", v)
	}
}

// fixedStringCodec handles FixedString(N): every row is exactly N raw
// bytes, zero-padded on encode if the source is shorter.
type fixedStringCodec struct {
	expr *typeexpr.Expr
}

func (c *fixedStringCodec) TypeExpr() *typeexpr.Expr { return c.expr }
func (c *fixedStringCodec) EstimateSize(rows uint64) uint64 { return rows * uint64(c.expr.Length) }
func (c *fixedStringCodec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *fixedStringCodec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }

func (c *fixedStringCodec) Encode(w *binary.Writer, col column.Column) error {
	fc, ok := col.(*column.FixedString)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "FixedString codec: expected *column.FixedString, got %T", col)
	}
	w.Write(fc.Data)
	return nil
}

func (c *fixedStringCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	n := c.expr.Length
	b, err := r.CopyBytes(int(rows) * n)
	if err != nil {
		return nil, err
	}
	return &column.FixedString{Expr: c.expr, Data: b, N: n}, nil
}

func (c *fixedStringCodec) FromValues(values []column.Value) (column.Column, error) {
	n := c.expr.Length
	data := make([]byte, len(values)*n)
	for i, v := range values {
		b, err := coerceBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) > n {
			return nil, wireerr.Newf(wireerr.KindRangeError, "FixedString(%d): value of length %d does not fit", n, len(b)).WithType(c.expr.String())
		}
		copy(data[i*n:(i+1)*n], b)
	}
	return &column.FixedString{Expr: c.expr, Data: data, N: n}, nil
}

func (c *fixedStringCodec) ZeroValue() column.Value { return make([]byte, c.expr.Length) }
