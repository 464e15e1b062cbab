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
)

// numericCodec handles every fixed-width scalar whose in-memory
// representation is a plain Go numeric type: Int/UInt 8..64, Float32/64,
// and Bool. Decode uses binary.ReadTypedArray's zero-copy reinterpret;
// Encode writes element-by-element through the supplied write func,
// since a column's backing array may have been built by FromValues
// rather than Decode.
type numericCodec[T any] struct {
	expr      *typeexpr.Expr
	size      int
	read      func(r *binary.Reader) (T, error)
	write     func(w *binary.Writer, v T)
	fromValue func(v column.Value) (T, error)
}

func (c *numericCodec[T]) TypeExpr() *typeexpr.Expr { return c.expr }

func (c *numericCodec[T]) EstimateSize(rows uint64) uint64 { return rows * uint64(c.size) }

func (c *numericCodec[T]) WritePrefix(*binary.Writer, column.Column) error { return nil }

func (c *numericCodec[T]) ReadPrefix(*binary.Reader) (PrefixState, error) { return nil, nil }

func (c *numericCodec[T]) Encode(w *binary.Writer, col column.Column) error {
	nc, ok := col.(*column.Numeric[T])
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "%s codec: expected Numeric column, got %T", c.expr.Kind, col).WithType(c.expr.String())
	}
	for _, v := range nc.Data {
		c.write(w, v)
	}
	return nil
}

func (c *numericCodec[T]) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	data, err := binary.ReadTypedArray[T](r, int(rows), c.size)
	if err != nil {
		return nil, err
	}
	return &column.Numeric[T]{Expr: c.expr, Data: data}, nil
}

func (c *numericCodec[T]) FromValues(values []column.Value) (column.Column, error) {
	data := make([]T, len(values))
	for i, v := range values {
		tv, err := c.fromValue(v)
		if err != nil {
			return nil, err
		}
		data[i] = tv
	}
	return &column.Numeric[T]{Expr: c.expr, Data: data}, nil
}

func (c *numericCodec[T]) ZeroValue() column.Value {
	var zero T
	return zero
}

// bigNumericCodec handles Int128/256 and UInt128/256, always surfaced as
// *big.Int regardless of host word size, per spec.md §3.
type bigNumericCodec struct {
	expr      *typeexpr.Expr
	byteWidth int
	signed    bool
}

func (c *bigNumericCodec) TypeExpr() *typeexpr.Expr { return c.expr }

func (c *bigNumericCodec) EstimateSize(rows uint64) uint64 { return rows * uint64(c.byteWidth) }

func (c *bigNumericCodec) WritePrefix(*binary.Writer, column.Column) error { return nil }

func (c *bigNumericCodec) ReadPrefix(*binary.Reader) (PrefixState, error) { return nil, nil }

func (c *bigNumericCodec) Encode(w *binary.Writer, col column.Column) error {
	bc, ok := col.(*column.BigNumeric)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "%s codec: expected BigNumeric column, got %T", c.expr.Kind, col).WithType(c.expr.String())
	}
	for _, v := range bc.Data {
		if v == nil {
			v = new(big.Int)
		}
		w.WriteBigIntLE(v, c.byteWidth, c.signed)
	}
	return nil
}

func (c *bigNumericCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	data := make([]*big.Int, rows)
	for i := range data {
		v, err := r.ReadBigIntLE(c.byteWidth, c.signed)
		if err != nil {
			return nil, err
		}
		data[i] = v
	}
	return &column.BigNumeric{Expr: c.expr, Data: data}, nil
}

func (c *bigNumericCodec) FromValues(values []column.Value) (column.Column, error) {
	data := make([]*big.Int, len(values))
	for i, v := range values {
		bi, err := coerceBigInt(v)
		if err != nil {
			return nil, err
		}
		data[i] = bi
	}
	return &column.BigNumeric{Expr: c.expr, Data: data}, nil
}

func (c *bigNumericCodec) ZeroValue() column.Value { return new(big.Int) }

func coerceBigInt(v column.Value) (*big.Int, error) {
	switch t := v.(type) {
	case *big.Int:
		return t, nil
	case int64:
		return big.NewInt(t), nil
	case int:
		return big.NewInt(int64(t)), nil
	case uint64:
		return new(big.Int).SetUint64(t), nil
	case string:
		n, ok := new(big.Int).SetString(t, 10)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "cannot parse %q as a big integer", t)
		}
		return n, nil
	default:
		return nil, wireerr.Newf(wireerr.KindCoercionError, "cannot coerce %T to a big integer", v)
	}
}

func coerceInt64(v column.Value) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case *big.Int:
		return t.Int64(), nil
	default:
		return 0, wireerr.Newf(wireerr.KindCoercionError, "cannot coerce %T to an integer", v)
	}
}

func coerceUint64(v column.Value) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int64:
		if t < 0 {
			return 0, wireerr.Newf(wireerr.KindRangeError, "value %d is negative, cannot coerce to an unsigned integer", t)
		}
		return uint64(t), nil
	case int:
		if t < 0 {
			return 0, wireerr.Newf(wireerr.KindRangeError, "value %d is negative, cannot coerce to an unsigned integer", t)
		}
		return uint64(t), nil
	case *big.Int:
		return t.Uint64(), nil
	default:
		return 0, wireerr.Newf(wireerr.KindCoercionError, "cannot coerce %T to an unsigned integer", v)
	}
}

func coerceFloat64(v column.Value) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int:
		return float64(t), nil
	default:
		return 0, wireerr.Newf(wireerr.KindCoercionError, "cannot coerce %T to a float", v)
	}
}

func coerceBool(v column.Value) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, wireerr.Newf(wireerr.KindCoercionError, "cannot coerce %T to a bool", v)
	}
	return b, nil
}

func buildScalarCodec(expr *typeexpr.Expr) (Codec, error) {
	switch expr.Kind {
	case typeexpr.KindInt8:
		return &numericCodec[int8]{expr: expr, size: 1,
			read:  func(r *binary.Reader) (int8, error) { return r.ReadI8() },
			write: func(w *binary.Writer, v int8) { w.WriteI8(v) },
			fromValue: func(v column.Value) (int8, error) {
				n, err := coerceInt64(v)
				return int8(n), err
			}}, nil
	case typeexpr.KindInt16:
		return &numericCodec[int16]{expr: expr, size: 2,
			read:  func(r *binary.Reader) (int16, error) { return r.ReadI16LE() },
			write: func(w *binary.Writer, v int16) { w.WriteI16LE(v) },
			fromValue: func(v column.Value) (int16, error) {
				n, err := coerceInt64(v)
				return int16(n), err
			}}, nil
	case typeexpr.KindInt32:
		return &numericCodec[int32]{expr: expr, size: 4,
			read:  func(r *binary.Reader) (int32, error) { return r.ReadI32LE() },
			write: func(w *binary.Writer, v int32) { w.WriteI32LE(v) },
			fromValue: func(v column.Value) (int32, error) {
				n, err := coerceInt64(v)
				return int32(n), err
			}}, nil
	case typeexpr.KindInt64:
		return &numericCodec[int64]{expr: expr, size: 8,
			read:      func(r *binary.Reader) (int64, error) { return r.ReadI64LE() },
			write:     func(w *binary.Writer, v int64) { w.WriteI64LE(v) },
			fromValue: coerceInt64}, nil
	case typeexpr.KindUInt8:
		return &numericCodec[uint8]{expr: expr, size: 1,
			read:  func(r *binary.Reader) (uint8, error) { return r.ReadU8() },
			write: func(w *binary.Writer, v uint8) { w.WriteU8(v) },
			fromValue: func(v column.Value) (uint8, error) {
				n, err := coerceUint64(v)
				return uint8(n), err
			}}, nil
	case typeexpr.KindUInt16:
		return &numericCodec[uint16]{expr: expr, size: 2,
			read:  func(r *binary.Reader) (uint16, error) { return r.ReadU16LE() },
			write: func(w *binary.Writer, v uint16) { w.WriteU16LE(v) },
			fromValue: func(v column.Value) (uint16, error) {
				n, err := coerceUint64(v)
				return uint16(n), err
			}}, nil
	case typeexpr.KindUInt32:
		return &numericCodec[uint32]{expr: expr, size: 4,
			read:  func(r *binary.Reader) (uint32, error) { return r.ReadU32LE() },
			write: func(w *binary.Writer, v uint32) { w.WriteU32LE(v) },
			fromValue: func(v column.Value) (uint32, error) {
				n, err := coerceUint64(v)
				return uint32(n), err
			}}, nil
	case typeexpr.KindUInt64:
		return &numericCodec[uint64]{expr: expr, size: 8,
			read:      func(r *binary.Reader) (uint64, error) { return r.ReadU64LE() },
			write:     func(w *binary.Writer, v uint64) { w.WriteU64LE(v) },
			fromValue: coerceUint64}, nil
	case typeexpr.KindInt128:
		return &bigNumericCodec{expr: expr, byteWidth: 16, signed: true}, nil
	case typeexpr.KindInt256:
		return &bigNumericCodec{expr: expr, byteWidth: 32, signed: true}, nil
	case typeexpr.KindUInt128:
		return &bigNumericCodec{expr: expr, byteWidth: 16, signed: false}, nil
	case typeexpr.KindUInt256:
		return &bigNumericCodec{expr: expr, byteWidth: 32, signed: false}, nil
	case typeexpr.KindFloat32:
		return &numericCodec[float32]{expr: expr, size: 4,
			read:  func(r *binary.Reader) (float32, error) { return r.ReadF32LE() },
			write: func(w *binary.Writer, v float32) { w.WriteF32LE(v) },
			fromValue: func(v column.Value) (float32, error) {
				f, err := coerceFloat64(v)
				return float32(f), err
			}}, nil
	case typeexpr.KindFloat64:
		return &numericCodec[float64]{expr: expr, size: 8,
			read:      func(r *binary.Reader) (float64, error) { return r.ReadF64LE() },
			write:     func(w *binary.Writer, v float64) { w.WriteF64LE(v) },
			fromValue: coerceFloat64}, nil
	case typeexpr.KindBool:
		return &numericCodec[bool]{expr: expr, size: 1,
			read:      func(r *binary.Reader) (bool, error) { return r.ReadBool() },
			write:     func(w *binary.Writer, v bool) { w.WriteBool(v) },
			fromValue: coerceBool}, nil
	case typeexpr.KindString:
		return &stringCodec{expr: expr}, nil
	case typeexpr.KindDate:
		return &dateCodec{expr: expr}, nil
	case typeexpr.KindDate32:
		return &date32Codec{expr: expr}, nil
	case typeexpr.KindDateTime:
		return &dateTimeCodec{expr: expr}, nil
	case typeexpr.KindUUID:
		return &uuidCodec{expr: expr}, nil
	case typeexpr.KindIPv4:
		return &ipv4Codec{expr: expr}, nil
	case typeexpr.KindIPv6:
		return &ipv6Codec{expr: expr}, nil
	default:
		return nil, wireerr.Newf(wireerr.KindGrammarError, "codec: no scalar codec for %s", expr.Kind)
	}
}
