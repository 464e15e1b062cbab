// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"math/big"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
	"github.com/solidcoredata/nativewire/wiretime"
)

type dateCodec struct{ expr *typeexpr.Expr }

func (c *dateCodec) TypeExpr() *typeexpr.Expr                           { return c.expr }
func (c *dateCodec) EstimateSize(rows uint64) uint64                    { return rows * 2 }
func (c *dateCodec) WritePrefix(*binary.Writer, column.Column) error    { return nil }
func (c *dateCodec) ReadPrefix(*binary.Reader) (PrefixState, error)     { return nil, nil }
func (c *dateCodec) ZeroValue() column.Value                            { return wiretime.Date{} }

func (c *dateCodec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		d, ok := v.(wiretime.Date)
		if !ok {
			return wireerr.Newf(wireerr.KindCoercionError, "Date codec: expected wiretime.Date, got %T", v)
		}
		w.WriteU16LE(d.Days)
	}
	return nil
}

func (c *dateCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	rawData, err := binary.ReadTypedArray[uint16](r, int(rows), 2)
	if err != nil {
		return nil, err
	}
	out := make([]wiretime.Date, len(rawData))
	for i, d := range rawData {
		out[i] = wiretime.Date{Days: d}
	}
	return &column.Typed[wiretime.Date]{Expr: c.expr, Data: out}, nil
}

func (c *dateCodec) FromValues(values []column.Value) (column.Column, error) {
	out := make([]wiretime.Date, len(values))
	for i, v := range values {
		d, ok := v.(wiretime.Date)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "Date codec: expected wiretime.Date, got %T", v)
		}
		out[i] = d
	}
	return &column.Typed[wiretime.Date]{Expr: c.expr, Data: out}, nil
}

type date32Codec struct{ expr *typeexpr.Expr }

func (c *date32Codec) TypeExpr() *typeexpr.Expr                        { return c.expr }
func (c *date32Codec) EstimateSize(rows uint64) uint64                 { return rows * 4 }
func (c *date32Codec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *date32Codec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }
func (c *date32Codec) ZeroValue() column.Value                        { return wiretime.Date32{} }

func (c *date32Codec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		d, ok := v.(wiretime.Date32)
		if !ok {
			return wireerr.Newf(wireerr.KindCoercionError, "Date32 codec: expected wiretime.Date32, got %T", v)
		}
		w.WriteI32LE(d.Days)
	}
	return nil
}

func (c *date32Codec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	rawData, err := binary.ReadTypedArray[int32](r, int(rows), 4)
	if err != nil {
		return nil, err
	}
	out := make([]wiretime.Date32, len(rawData))
	for i, d := range rawData {
		out[i] = wiretime.Date32{Days: d}
	}
	return &column.Typed[wiretime.Date32]{Expr: c.expr, Data: out}, nil
}

func (c *date32Codec) FromValues(values []column.Value) (column.Column, error) {
	out := make([]wiretime.Date32, len(values))
	for i, v := range values {
		d, ok := v.(wiretime.Date32)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "Date32 codec: expected wiretime.Date32, got %T", v)
		}
		out[i] = d
	}
	return &column.Typed[wiretime.Date32]{Expr: c.expr, Data: out}, nil
}

type dateTimeCodec struct{ expr *typeexpr.Expr }

func (c *dateTimeCodec) TypeExpr() *typeexpr.Expr                        { return c.expr }
func (c *dateTimeCodec) EstimateSize(rows uint64) uint64                 { return rows * 4 }
func (c *dateTimeCodec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *dateTimeCodec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }
func (c *dateTimeCodec) ZeroValue() column.Value                        { return wiretime.DateTime{} }

func (c *dateTimeCodec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		d, ok := v.(wiretime.DateTime)
		if !ok {
			return wireerr.Newf(wireerr.KindCoercionError, "DateTime codec: expected wiretime.DateTime, got %T", v)
		}
		w.WriteU32LE(d.Seconds)
	}
	return nil
}

func (c *dateTimeCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	rawData, err := binary.ReadTypedArray[uint32](r, int(rows), 4)
	if err != nil {
		return nil, err
	}
	out := make([]wiretime.DateTime, len(rawData))
	for i, d := range rawData {
		out[i] = wiretime.DateTime{Seconds: d}
	}
	return &column.Typed[wiretime.DateTime]{Expr: c.expr, Data: out}, nil
}

func (c *dateTimeCodec) FromValues(values []column.Value) (column.Column, error) {
	out := make([]wiretime.DateTime, len(values))
	for i, v := range values {
		d, ok := v.(wiretime.DateTime)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "DateTime codec: expected wiretime.DateTime, got %T", v)
		}
		out[i] = d
	}
	return &column.Typed[wiretime.DateTime]{Expr: c.expr, Data: out}, nil
}

// dateTime64Codec handles DateTime64(P[, TZ]): a byteWidth-8 little-endian
// signed tick count (seconds * 10^P), per spec.md §4.F.
type dateTime64Codec struct{ expr *typeexpr.Expr }

func (c *dateTime64Codec) TypeExpr() *typeexpr.Expr                        { return c.expr }
func (c *dateTime64Codec) EstimateSize(rows uint64) uint64                 { return rows * 8 }
func (c *dateTime64Codec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *dateTime64Codec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }
func (c *dateTime64Codec) ZeroValue() column.Value {
	return wiretime.DateTime64{Ticks: new(big.Int), Precision: c.expr.Precision}
}

func (c *dateTime64Codec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		d, ok := v.(wiretime.DateTime64)
		if !ok {
			return wireerr.Newf(wireerr.KindCoercionError, "DateTime64 codec: expected wiretime.DateTime64, got %T", v)
		}
		w.WriteBigIntLE(d.Ticks, 8, true)
	}
	return nil
}

func (c *dateTime64Codec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	out := make([]wiretime.DateTime64, rows)
	for i := range out {
		ticks, err := r.ReadBigIntLE(8, true)
		if err != nil {
			return nil, err
		}
		out[i] = wiretime.DateTime64{Ticks: ticks, Precision: c.expr.Precision}
	}
	return &column.Typed[wiretime.DateTime64]{Expr: c.expr, Data: out}, nil
}

func (c *dateTime64Codec) FromValues(values []column.Value) (column.Column, error) {
	out := make([]wiretime.DateTime64, len(values))
	for i, v := range values {
		d, ok := v.(wiretime.DateTime64)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "DateTime64 codec: expected wiretime.DateTime64, got %T", v)
		}
		out[i] = d
	}
	return &column.Typed[wiretime.DateTime64]{Expr: c.expr, Data: out}, nil
}

