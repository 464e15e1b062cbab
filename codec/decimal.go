// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// decimalCodec handles Decimal32/64/128/256: a fixed-width, little-
// endian, two's complement unscaled integer coefficient, interpreted at
// the declared scale. Surfaced as shopspring/decimal.Decimal so callers
// get exact base-10 arithmetic instead of a float approximation.
type decimalCodec struct {
	expr      *typeexpr.Expr
	byteWidth int
}

func newDecimalCodec(expr *typeexpr.Expr) (Codec, error) {
	var width int
	switch expr.Kind {
	case typeexpr.KindDecimal32:
		width = 4
	case typeexpr.KindDecimal64:
		width = 8
	case typeexpr.KindDecimal128:
		width = 16
	case typeexpr.KindDecimal256:
		width = 32
	default:
		return nil, wireerr.Newf(wireerr.KindGrammarError, "decimal codec: unexpected kind %s", expr.Kind)
	}
	return &decimalCodec{expr: expr, byteWidth: width}, nil
}

func (c *decimalCodec) TypeExpr() *typeexpr.Expr                        { return c.expr }
func (c *decimalCodec) EstimateSize(rows uint64) uint64                 { return rows * uint64(c.byteWidth) }
func (c *decimalCodec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *decimalCodec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }
func (c *decimalCodec) ZeroValue() column.Value                        { return decimal.Zero }

func (c *decimalCodec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		d, ok := v.(decimal.Decimal)
		if !ok {
			return wireerr.Newf(wireerr.KindCoercionError, "Decimal codec: expected decimal.Decimal, got %T", v)
		}
		unscaled, err := c.rescaleToUnscaled(d)
		if err != nil {
			return err
		}
		w.WriteDecimal(unscaled, c.byteWidth)
	}
	return nil
}

// rescaleToUnscaled converts d to this column's declared scale,
// returning the resulting unscaled coefficient.
func (c *decimalCodec) rescaleToUnscaled(d decimal.Decimal) (*big.Int, error) {
	rescaled := d.Rescale(int32(-c.expr.Scale))
	return rescaled.Coefficient(), nil
}

func (c *decimalCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	out := make([]decimal.Decimal, rows)
	for i := range out {
		unscaled, err := r.ReadBigIntLE(c.byteWidth, true)
		if err != nil {
			return nil, err
		}
		out[i] = decimal.NewFromBigInt(unscaled, int32(-c.expr.Scale))
	}
	return &column.Typed[decimal.Decimal]{Expr: c.expr, Data: out}, nil
}

func (c *decimalCodec) FromValues(values []column.Value) (column.Column, error) {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		d, err := coerceDecimal(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return &column.Typed[decimal.Decimal]{Expr: c.expr, Data: out}, nil
}

func coerceDecimal(v column.Value) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Decimal{}, wireerr.Newf(wireerr.KindCoercionError, "Decimal codec: %v", err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	default:
		return decimal.Decimal{}, wireerr.Newf(wireerr.KindCoercionError, "cannot coerce %T to a decimal", v)
	}
}
