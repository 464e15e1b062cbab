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

// mapCodec handles Map(K,V): identical framing to Array(Tuple(K,V)), but
// K and V prefixes are written once each at the Map level over the
// flattened key/value sequences, per spec.md §4.G.
type mapCodec struct {
	expr     *typeexpr.Expr
	keyCodec Codec
	valCodec Codec
	hashStyle bool
}

type mapPrefix struct {
	key PrefixState
	val PrefixState
}

func (c *mapCodec) TypeExpr() *typeexpr.Expr { return c.expr }

func (c *mapCodec) EstimateSize(rows uint64) uint64 {
	return rows*8 + c.keyCodec.EstimateSize(rows*2) + c.valCodec.EstimateSize(rows*2)
}

func (c *mapCodec) WritePrefix(w *binary.Writer, col column.Column) error {
	mc, ok := col.(*column.Map)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Map codec: expected *column.Map, got %T", col)
	}
	if err := c.keyCodec.WritePrefix(w, mc.Keys); err != nil {
		return err
	}
	return c.valCodec.WritePrefix(w, mc.Values)
}

func (c *mapCodec) ReadPrefix(r *binary.Reader) (PrefixState, error) {
	kp, err := c.keyCodec.ReadPrefix(r)
	if err != nil {
		return nil, err
	}
	vp, err := c.valCodec.ReadPrefix(r)
	if err != nil {
		return nil, err
	}
	return mapPrefix{key: kp, val: vp}, nil
}

func (c *mapCodec) Encode(w *binary.Writer, col column.Column) error {
	mc, ok := col.(*column.Map)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Map codec: expected *column.Map, got %T", col)
	}
	for _, off := range mc.Offsets {
		w.WriteU64LE(off)
	}
	if err := c.keyCodec.Encode(w, mc.Keys); err != nil {
		return err
	}
	return c.valCodec.Encode(w, mc.Values)
}

func (c *mapCodec) Decode(r *binary.Reader, rows uint64, prefix PrefixState) (column.Column, error) {
	mp, _ := prefix.(mapPrefix)
	offsets, err := binary.ReadTypedArray[uint64](r, int(rows), 8)
	if err != nil {
		return nil, err
	}
	if err := column.CheckNonDecreasing(offsets, "Map offsets"); err != nil {
		return nil, err
	}
	var total uint64
	if rows > 0 {
		total = offsets[rows-1]
	}
	if err := column.CheckSafeIndex(total, "map flattened length"); err != nil {
		return nil, err
	}
	keys, err := c.keyCodec.Decode(r, total, mp.key)
	if err != nil {
		return nil, err
	}
	vals, err := c.valCodec.Decode(r, total, mp.val)
	if err != nil {
		return nil, err
	}
	return &column.Map{Expr: c.expr, Keys: keys, Values: vals, Offsets: offsets, HashStyle: c.hashStyle}, nil
}

func (c *mapCodec) FromValues(values []column.Value) (column.Column, error) {
	offsets := make([]uint64, len(values))
	var flatKeys, flatVals []column.Value
	for i, v := range values {
		switch t := v.(type) {
		case []column.KV:
			for _, kv := range t {
				flatKeys = append(flatKeys, kv.Key)
				flatVals = append(flatVals, kv.Value)
			}
		case map[string]column.Value:
			for k, val := range t {
				flatKeys = append(flatKeys, k)
				flatVals = append(flatVals, val)
			}
		default:
			return nil, wireerr.Newf(wireerr.KindCoercionError, "Map codec: expected []column.KV or map[string]Value row, got %T", v)
		}
		offsets[i] = uint64(len(flatKeys))
	}
	keys, err := c.keyCodec.FromValues(flatKeys)
	if err != nil {
		return nil, err
	}
	vals, err := c.valCodec.FromValues(flatVals)
	if err != nil {
		return nil, err
	}
	return &column.Map{Expr: c.expr, Keys: keys, Values: vals, Offsets: offsets, HashStyle: c.hashStyle}, nil
}

func (c *mapCodec) ZeroValue() column.Value { return map[string]column.Value{} }
