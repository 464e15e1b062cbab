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

// enumCodec handles Enum8/Enum16: the declared name<->value mapping is
// part of the type string, so the wire only carries the 1- or 2-byte
// signed value per row. AsNumber selects whether Get/FromValues surface
// the declared name (default) or the raw integer.
type enumCodec struct {
	expr     *typeexpr.Expr
	width    int // 1 or 2
	asNumber bool
	nameByValue map[int64]string
	valueByName map[string]int64
	// minValue/minName are the enum member with the smallest declared
	// Value, not the first-declared member — this is what a null/missing
	// input resolves to (spec.md's "default (minimum mapped value)").
	minValue int64
	minName  string
}

func newEnumCodec(expr *typeexpr.Expr, asNumber bool) (Codec, error) {
	width := 1
	if expr.Kind == typeexpr.KindEnum16 {
		width = 2
	}
	nameByValue := make(map[int64]string, len(expr.Enum))
	valueByName := make(map[string]int64, len(expr.Enum))
	var minValue int64
	var minName string
	for i, ev := range expr.Enum {
		nameByValue[ev.Value] = ev.Name
		valueByName[ev.Name] = ev.Value
		if i == 0 || ev.Value < minValue {
			minValue = ev.Value
			minName = ev.Name
		}
	}
	return &enumCodec{expr: expr, width: width, asNumber: asNumber, nameByValue: nameByValue, valueByName: valueByName, minValue: minValue, minName: minName}, nil
}

func (c *enumCodec) TypeExpr() *typeexpr.Expr                        { return c.expr }
func (c *enumCodec) EstimateSize(rows uint64) uint64                 { return rows * uint64(c.width) }
func (c *enumCodec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *enumCodec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }

func (c *enumCodec) ZeroValue() column.Value {
	if c.asNumber {
		return c.minValue
	}
	return c.minName
}

func (c *enumCodec) writeValue(w *binary.Writer, val int64) {
	if c.width == 1 {
		w.WriteI8(int8(val))
	} else {
		w.WriteI16LE(int16(val))
	}
}

func (c *enumCodec) readValue(r *binary.Reader) (int64, error) {
	if c.width == 1 {
		v, err := r.ReadI8()
		return int64(v), err
	}
	v, err := r.ReadI16LE()
	return int64(v), err
}

func (c *enumCodec) valueFor(v column.Value) (int64, error) {
	switch t := v.(type) {
	case nil:
		return c.minValue, nil
	case string:
		val, ok := c.valueByName[t]
		if !ok {
			return 0, wireerr.Newf(wireerr.KindEnumViolation, "%q is not a member of %s", t, c.expr.Kind).WithType(c.expr.String())
		}
		return val, nil
	default:
		return coerceInt64(v)
	}
}

func (c *enumCodec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		val, err := c.valueFor(v)
		if err != nil {
			return err
		}
		c.writeValue(w, val)
	}
	return nil
}

func (c *enumCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	if c.asNumber {
		out := make([]int64, rows)
		for i := range out {
			v, err := c.readValue(r)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return &column.Typed[int64]{Expr: c.expr, Data: out}, nil
	}
	out := make([]string, rows)
	for i := range out {
		v, err := c.readValue(r)
		if err != nil {
			return nil, err
		}
		name, ok := c.nameByValue[v]
		if !ok {
			return nil, wireerr.Newf(wireerr.KindEnumViolation, "value %d has no matching name in %s", v, c.expr.Kind).WithType(c.expr.String()).WithRow(int64(i))
		}
		out[i] = name
	}
	return &column.Typed[string]{Expr: c.expr, Data: out}, nil
}

func (c *enumCodec) FromValues(values []column.Value) (column.Column, error) {
	if c.asNumber {
		out := make([]int64, len(values))
		for i, v := range values {
			val, err := c.valueFor(v)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return &column.Typed[int64]{Expr: c.expr, Data: out}, nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		val, err := c.valueFor(v)
		if err != nil {
			return nil, err
		}
		out[i] = c.nameByValue[val]
	}
	return &column.Typed[string]{Expr: c.expr, Data: out}, nil
}
