// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"sort"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// jsonCodec handles JSON: a sorted list of path names, each backed by a
// Dynamic column, per spec.md §3/§4.G. Declared JSONPaths on the type
// string are informative only; the wire carries the authoritative path
// list in the prefix.
type jsonCodec struct {
	expr     *typeexpr.Expr
	registry *Registry
}

var dynamicExpr = &typeexpr.Expr{Kind: typeexpr.KindDynamic}

type jsonPrefix struct {
	paths   []string
	dynamic Codec
	states  []PrefixState
}

func (c *jsonCodec) TypeExpr() *typeexpr.Expr { return c.expr }

func (c *jsonCodec) EstimateSize(rows uint64) uint64 { return rows * 2 }

func (c *jsonCodec) dynamicCodec() (Codec, error) {
	return c.registry.GetExpr(dynamicExpr)
}

func (c *jsonCodec) WritePrefix(w *binary.Writer, col column.Column) error {
	jc, ok := col.(*column.JSON)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "JSON codec: expected *column.JSON, got %T", col)
	}
	dyn, err := c.dynamicCodec()
	if err != nil {
		return err
	}
	w.WriteU64LE(3)
	w.WriteVarint(uint64(len(jc.Paths)))
	for i, path := range jc.Paths {
		w.WriteString(path)
		if err := dyn.WritePrefix(w, jc.Columns[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *jsonCodec) ReadPrefix(r *binary.Reader) (PrefixState, error) {
	dyn, err := c.dynamicCodec()
	if err != nil {
		return nil, err
	}
	version, err := r.ReadU64LE()
	if err != nil {
		return nil, err
	}
	if version != 3 {
		return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "JSON: unsupported prefix version %d", version).WithType(c.expr.String())
	}
	count, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	paths := make([]string, count)
	states := make([]PrefixState, count)
	for i := range paths {
		p, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		paths[i] = p
		st, err := dyn.ReadPrefix(r)
		if err != nil {
			return nil, err
		}
		states[i] = st
	}
	return jsonPrefix{paths: paths, dynamic: dyn, states: states}, nil
}

func (c *jsonCodec) Encode(w *binary.Writer, col column.Column) error {
	jc, ok := col.(*column.JSON)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "JSON codec: expected *column.JSON, got %T", col)
	}
	dyn, err := c.dynamicCodec()
	if err != nil {
		return err
	}
	for _, pathCol := range jc.Columns {
		if err := dyn.Encode(w, pathCol); err != nil {
			return err
		}
	}
	return nil
}

func (c *jsonCodec) Decode(r *binary.Reader, rows uint64, prefix PrefixState) (column.Column, error) {
	jp, ok := prefix.(jsonPrefix)
	if !ok {
		return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "JSON: decode called without a matching prefix").WithType(c.expr.String())
	}
	columns := make([]*column.Dynamic, len(jp.paths))
	for i := range jp.paths {
		g, err := jp.dynamic.Decode(r, rows, jp.states[i])
		if err != nil {
			return nil, err
		}
		dc, ok := g.(*column.Dynamic)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "JSON: path column decoded as %T, not Dynamic", g).WithType(c.expr.String())
		}
		columns[i] = dc
	}
	return column.NewJSON(c.expr, jp.paths, columns), nil
}

func (c *jsonCodec) FromValues(values []column.Value) (column.Column, error) {
	dyn, err := c.dynamicCodec()
	if err != nil {
		return nil, err
	}
	pathSet := make(map[string]struct{})
	rows := make([]map[string]column.Value, len(values))
	for i, v := range values {
		m, ok := v.(map[string]column.Value)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "JSON codec: expected map[string]Value row, got %T", v)
		}
		rows[i] = m
		for path := range m {
			pathSet[path] = struct{}{}
		}
	}
	paths := make([]string, 0, len(pathSet))
	for path := range pathSet {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	perPath := make([][]column.Value, len(paths))
	for idx := range paths {
		perPath[idx] = make([]column.Value, len(values))
	}
	for i, m := range rows {
		for idx, path := range paths {
			if v, ok := m[path]; ok {
				perPath[idx][i] = v
			}
		}
	}

	columns := make([]*column.Dynamic, len(paths))
	for i := range paths {
		g, err := dyn.FromValues(perPath[i])
		if err != nil {
			return nil, err
		}
		dc, ok := g.(*column.Dynamic)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "JSON codec: path column built as %T, not Dynamic", g)
		}
		columns[i] = dc
	}
	return column.NewJSON(c.expr, paths, columns), nil
}

func (c *jsonCodec) ZeroValue() column.Value { return map[string]column.Value{} }
