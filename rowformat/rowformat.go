// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rowformat implements the row-oriented auxiliary wire format of
// spec.md §6: a header of column names (and, optionally, types) followed
// by rows, each the concatenation of per-column values. It shares the
// scalar codecs of package codec but frames composites itself (a length
// varint for Array, a 1-byte flag for Nullable, inline type tags for
// Variant/Dynamic/JSON) rather than the block-level offset arrays and
// shared prefixes of package codec's columnar framing.
package rowformat

import (
	"sort"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/codec"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/rowview"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// Flavor selects whether the header carries type strings alongside
// names, per spec.md §6 ("types present only in the WithNamesAndTypes
// flavor").
type Flavor int

const (
	NamesOnly Flavor = iota
	WithNamesAndTypes
)

// Options configures one Encode/Decode call.
type Options struct {
	Flavor Flavor
}

// Encode writes the row-oriented format's header and every row of rows
// to w, using registry to resolve each column's scalar codec.
func Encode(w *binary.Writer, registry *codec.Registry, schema []rowview.ColumnDef, rows [][]column.Value, opt Options) error {
	w.WriteVarint(uint64(len(schema)))
	for _, cd := range schema {
		w.WriteString(cd.Name)
	}
	if opt.Flavor == WithNamesAndTypes {
		for _, cd := range schema {
			w.WriteString(cd.Type.String())
		}
	}
	for _, row := range rows {
		if len(row) != len(schema) {
			return wireerr.Newf(wireerr.KindCoercionError, "rowformat: row has %d values, expected %d", len(row), len(schema))
		}
		for i, cd := range schema {
			if err := encodeValue(w, registry, cd.Type, row[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode reads the header and every following row until r is exhausted.
// When opt.Flavor is NamesOnly, the wire carries no type strings, so
// knownTypes (parallel to the decoded names, in the same order the
// caller expects) supplies them; it is ignored for WithNamesAndTypes.
func Decode(r *binary.Reader, registry *codec.Registry, opt Options, knownTypes []*typeexpr.Expr) (schema []rowview.ColumnDef, rows [][]column.Value, err error) {
	count, err := r.ReadVarint()
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, count)
	for i := range names {
		names[i], err = r.ReadString()
		if err != nil {
			return nil, nil, err
		}
	}
	types := make([]*typeexpr.Expr, count)
	if opt.Flavor == WithNamesAndTypes {
		for i := range types {
			typeStr, err2 := r.ReadString()
			if err2 != nil {
				return nil, nil, err2
			}
			types[i], err = typeexpr.Parse(typeStr)
			if err != nil {
				return nil, nil, err
			}
		}
	} else {
		if len(knownTypes) != int(count) {
			return nil, nil, wireerr.Newf(wireerr.KindCoercionError, "rowformat: NamesOnly decode needs %d known types, got %d", count, len(knownTypes))
		}
		copy(types, knownTypes)
	}
	schema = make([]rowview.ColumnDef, count)
	for i := range schema {
		schema[i] = rowview.ColumnDef{Name: names[i], Type: types[i]}
	}

	for r.Remaining() > 0 {
		row := make([]column.Value, count)
		for i, cd := range schema {
			v, err2 := decodeValue(r, registry, cd.Type)
			if err2 != nil {
				return nil, nil, err2
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return schema, rows, nil
}

func encodeValue(w *binary.Writer, registry *codec.Registry, expr *typeexpr.Expr, v column.Value) error {
	switch expr.Kind {
	case typeexpr.KindArray, typeexpr.KindNested:
		elems, err := coerceValueSlice(v)
		if err != nil {
			return err
		}
		child := expr.Child()
		if expr.Kind == typeexpr.KindNested {
			child = &typeexpr.Expr{Kind: typeexpr.KindTuple, Elements: expr.Elements, Named: true}
		}
		w.WriteVarint(uint64(len(elems)))
		for _, elem := range elems {
			if err := encodeValue(w, registry, child, elem); err != nil {
				return err
			}
		}
		return nil

	case typeexpr.KindNullable:
		if v == nil {
			w.WriteU8(1)
			return nil
		}
		w.WriteU8(0)
		return encodeValue(w, registry, expr.Child(), v)

	case typeexpr.KindLowCardinality:
		return encodeValue(w, registry, expr.Child(), v)

	case typeexpr.KindTuple:
		vals, err := tupleValues(v, len(expr.Elements))
		if err != nil {
			return err
		}
		for i, el := range expr.Elements {
			if err := encodeValue(w, registry, el.Type, vals[i]); err != nil {
				return err
			}
		}
		return nil

	case typeexpr.KindMap:
		kvs, err := coerceKVSlice(v)
		if err != nil {
			return err
		}
		w.WriteVarint(uint64(len(kvs)))
		for _, kv := range kvs {
			if err := encodeValue(w, registry, expr.Args[0], kv.Key); err != nil {
				return err
			}
			if err := encodeValue(w, registry, expr.Args[1], kv.Value); err != nil {
				return err
			}
		}
		return nil

	case typeexpr.KindVariant:
		if v == nil {
			w.WriteI8(-1)
			return nil
		}
		tagged, ok := v.(column.Tagged)
		if !ok {
			return wireerr.Newf(wireerr.KindCoercionError, "rowformat: Variant expects column.Tagged, got %T", v)
		}
		if tagged.Discriminator < 0 {
			w.WriteI8(-1)
			return nil
		}
		if tagged.Discriminator >= len(expr.Args) {
			return wireerr.Newf(wireerr.KindRangeError, "rowformat: Variant discriminator %d out of range", tagged.Discriminator)
		}
		w.WriteI8(int8(tagged.Discriminator))
		return encodeValue(w, registry, expr.Args[tagged.Discriminator], tagged.Value)

	case typeexpr.KindDynamic:
		if v == nil {
			w.WriteBool(false)
			return nil
		}
		dv, ok := v.(column.DynamicValue)
		if !ok {
			return wireerr.Newf(wireerr.KindCoercionError, "rowformat: Dynamic expects column.DynamicValue, got %T", v)
		}
		w.WriteBool(true)
		w.WriteString(dv.Type.String())
		return encodeValue(w, registry, dv.Type, dv.Value)

	case typeexpr.KindJSON:
		m, _ := v.(map[string]column.Value)
		paths := make([]string, 0, len(m))
		for path, pv := range m {
			if pv == nil {
				continue
			}
			paths = append(paths, path)
		}
		sort.Strings(paths)
		w.WriteVarint(uint64(len(paths)))
		for _, path := range paths {
			dv, ok := m[path].(column.DynamicValue)
			if !ok {
				return wireerr.Newf(wireerr.KindCoercionError, "rowformat: JSON path %q expects column.DynamicValue, got %T", path, m[path])
			}
			w.WriteString(path)
			w.WriteString(dv.Type.String())
			if err := encodeValue(w, registry, dv.Type, dv.Value); err != nil {
				return err
			}
		}
		return nil

	default:
		ch, err := registry.GetExpr(expr)
		if err != nil {
			return err
		}
		col, err := ch.FromValues([]column.Value{v})
		if err != nil {
			return err
		}
		return ch.Encode(w, col)
	}
}

func decodeValue(r *binary.Reader, registry *codec.Registry, expr *typeexpr.Expr) (column.Value, error) {
	switch expr.Kind {
	case typeexpr.KindArray, typeexpr.KindNested:
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		child := expr.Child()
		if expr.Kind == typeexpr.KindNested {
			child = &typeexpr.Expr{Kind: typeexpr.KindTuple, Elements: expr.Elements, Named: true}
		}
		out := make([]column.Value, n)
		for i := range out {
			v, err := decodeValue(r, registry, child)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case typeexpr.KindNullable:
		flag, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if flag == 1 {
			return nil, nil
		}
		return decodeValue(r, registry, expr.Child())

	case typeexpr.KindLowCardinality:
		return decodeValue(r, registry, expr.Child())

	case typeexpr.KindTuple:
		vals := make([]column.Value, len(expr.Elements))
		for i, el := range expr.Elements {
			v, err := decodeValue(r, registry, el.Type)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		if expr.Named {
			names := make([]string, len(expr.Elements))
			for i, el := range expr.Elements {
				names[i] = el.Name
			}
			return column.OrderedTuple{Names: names, Values: vals}, nil
		}
		return vals, nil

	case typeexpr.KindMap:
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		out := make([]column.KV, n)
		for i := range out {
			k, err := decodeValue(r, registry, expr.Args[0])
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(r, registry, expr.Args[1])
			if err != nil {
				return nil, err
			}
			out[i] = column.KV{Key: k, Value: v}
		}
		return out, nil

	case typeexpr.KindVariant:
		d, err := r.ReadI8()
		if err != nil {
			return nil, err
		}
		if d < 0 {
			return nil, nil
		}
		if int(d) >= len(expr.Args) {
			return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "rowformat: Variant discriminator %d out of range", d)
		}
		v, err := decodeValue(r, registry, expr.Args[d])
		if err != nil {
			return nil, err
		}
		return column.Tagged{Discriminator: int(d), Value: v}, nil

	case typeexpr.KindDynamic:
		present, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, nil
		}
		typeStr, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		t, err := typeexpr.Parse(typeStr)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(r, registry, t)
		if err != nil {
			return nil, err
		}
		return column.DynamicValue{Type: t, Value: v}, nil

	case typeexpr.KindJSON:
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		out := make(map[string]column.Value, n)
		for i := uint64(0); i < n; i++ {
			path, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			typeStr, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			t, err := typeexpr.Parse(typeStr)
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(r, registry, t)
			if err != nil {
				return nil, err
			}
			out[path] = column.DynamicValue{Type: t, Value: v}
		}
		return out, nil

	default:
		ch, err := registry.GetExpr(expr)
		if err != nil {
			return nil, err
		}
		col, err := ch.Decode(r, 1, nil)
		if err != nil {
			return nil, err
		}
		return col.Get(0)
	}
}

func coerceValueSlice(v column.Value) ([]column.Value, error) {
	if v == nil {
		return nil, nil
	}
	elems, ok := v.([]column.Value)
	if !ok {
		return nil, wireerr.Newf(wireerr.KindCoercionError, "rowformat: Array expects []column.Value, got %T", v)
	}
	return elems, nil
}

func coerceKVSlice(v column.Value) ([]column.KV, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []column.KV:
		return t, nil
	case map[string]column.Value:
		out := make([]column.KV, 0, len(t))
		for k, val := range t {
			out = append(out, column.KV{Key: k, Value: val})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key.(string) < out[j].Key.(string) })
		return out, nil
	default:
		return nil, wireerr.Newf(wireerr.KindCoercionError, "rowformat: Map expects []column.KV or map[string]column.Value, got %T", v)
	}
}

func tupleValues(v column.Value, n int) ([]column.Value, error) {
	switch t := v.(type) {
	case []column.Value:
		if len(t) != n {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "rowformat: Tuple has %d elements, expected %d", len(t), n)
		}
		return t, nil
	case column.OrderedTuple:
		if len(t.Values) != n {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "rowformat: Tuple has %d elements, expected %d", len(t.Values), n)
		}
		return t.Values, nil
	default:
		return nil, wireerr.Newf(wireerr.KindCoercionError, "rowformat: expected a positional or named tuple row, got %T", v)
	}
}
