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

// dynamicCodec handles Dynamic: its type list is discovered from the
// data itself rather than the schema, so the codec resolves child
// codecs lazily from the registry as types are encountered, per
// spec.md §3/§4.G.
type dynamicCodec struct {
	expr     *typeexpr.Expr
	registry *Registry
}

// dynamicPrefix carries the resolved type list and matching child
// codecs from ReadPrefix to Decode.
type dynamicPrefix struct {
	types    []*typeexpr.Expr
	children []Codec
	states   []PrefixState
}

func dynamicDiscWidth(typeCount int) int {
	switch {
	case typeCount+1 <= 0x100:
		return 1
	case typeCount+1 <= 0x10000:
		return 2
	default:
		return 4
	}
}

func (c *dynamicCodec) TypeExpr() *typeexpr.Expr { return c.expr }

func (c *dynamicCodec) EstimateSize(rows uint64) uint64 { return rows * 2 }

func (c *dynamicCodec) WritePrefix(w *binary.Writer, col column.Column) error {
	dc, ok := col.(*column.Dynamic)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Dynamic codec: expected *column.Dynamic, got %T", col)
	}
	w.WriteU64LE(3)
	w.WriteVarint(uint64(len(dc.Types)))
	children := make([]Codec, len(dc.Types))
	for i, t := range dc.Types {
		w.WriteString(t.String())
		ch, err := c.registry.GetExpr(t)
		if err != nil {
			return err
		}
		children[i] = ch
		if err := ch.WritePrefix(w, dc.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *dynamicCodec) ReadPrefix(r *binary.Reader) (PrefixState, error) {
	version, err := r.ReadU64LE()
	if err != nil {
		return nil, err
	}
	if version != 3 {
		return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "Dynamic: unsupported prefix version %d", version).WithType(c.expr.String())
	}
	count, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	types := make([]*typeexpr.Expr, count)
	children := make([]Codec, count)
	states := make([]PrefixState, count)
	for i := range types {
		typeStr, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		t, err := typeexpr.Parse(typeStr)
		if err != nil {
			return nil, err
		}
		types[i] = t
		ch, err := c.registry.GetExpr(t)
		if err != nil {
			return nil, err
		}
		children[i] = ch
		st, err := ch.ReadPrefix(r)
		if err != nil {
			return nil, err
		}
		states[i] = st
	}
	return dynamicPrefix{types: types, children: children, states: states}, nil
}

func (c *dynamicCodec) Encode(w *binary.Writer, col column.Column) error {
	dc, ok := col.(*column.Dynamic)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Dynamic codec: expected *column.Dynamic, got %T", col)
	}
	width := dynamicDiscWidth(len(dc.Types))
	for _, d := range dc.Discriminators {
		writeIndex(w, uint64(d), width)
	}
	for i, t := range dc.Types {
		ch, err := c.registry.GetExpr(t)
		if err != nil {
			return err
		}
		if err := ch.Encode(w, dc.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *dynamicCodec) Decode(r *binary.Reader, rows uint64, prefix PrefixState) (column.Column, error) {
	dp, ok := prefix.(dynamicPrefix)
	if !ok {
		return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "Dynamic: decode called without a matching prefix").WithType(c.expr.String())
	}
	nullDisc := uint32(len(dp.types))
	width := dynamicDiscWidth(len(dp.types))
	discriminators := make([]uint32, rows)
	counts := make([]uint64, len(dp.types))
	for i := range discriminators {
		v, err := readIndex(r, width)
		if err != nil {
			return nil, err
		}
		d := uint32(v)
		if d != nullDisc {
			if int(d) >= len(dp.types) {
				return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "Dynamic: discriminator %d out of range [0,%d]", d, nullDisc).WithType(c.expr.String())
			}
			counts[d]++
		}
		discriminators[i] = d
	}
	groups := make([]column.Column, len(dp.types))
	for i, ch := range dp.children {
		g, err := ch.Decode(r, counts[i], dp.states[i])
		if err != nil {
			return nil, err
		}
		groups[i] = g
	}
	return column.NewDynamic(c.expr, dp.types, discriminators, groups), nil
}

func (c *dynamicCodec) FromValues(values []column.Value) (column.Column, error) {
	var types []*typeexpr.Expr
	typeIndex := make(map[string]int)
	discriminators := make([]uint32, len(values))
	var perChild [][]column.Value

	for i, v := range values {
		if v == nil {
			continue // corrected to the null discriminator in the second pass below
		}
		dv, ok := v.(column.DynamicValue)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "Dynamic codec: expected column.DynamicValue row, got %T", v)
		}
		key := dv.Type.String()
		idx, ok := typeIndex[key]
		if !ok {
			idx = len(types)
			typeIndex[key] = idx
			types = append(types, dv.Type)
			perChild = append(perChild, nil)
		}
		discriminators[i] = uint32(idx)
		perChild[idx] = append(perChild[idx], dv.Value)
	}

	nullDisc := uint32(len(types))
	for i, v := range values {
		if v == nil {
			discriminators[i] = nullDisc
		}
	}

	groups := make([]column.Column, len(types))
	for i, t := range types {
		ch, err := c.registry.GetExpr(t)
		if err != nil {
			return nil, err
		}
		g, err := ch.FromValues(perChild[i])
		if err != nil {
			return nil, err
		}
		groups[i] = g
	}
	return column.NewDynamic(c.expr, types, discriminators, groups), nil
}

func (c *dynamicCodec) ZeroValue() column.Value { return nil }
