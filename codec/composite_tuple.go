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

// tupleCodec handles Tuple(...): each child's prefix in element order,
// then each child's payload in element order, with no separators. Also
// backs the Tuple half of Nested(...)'s Array(Tuple(...)) desugaring.
type tupleCodec struct {
	expr     *typeexpr.Expr
	children []Codec
	names    []string
	named    bool
}

func (c *tupleCodec) TypeExpr() *typeexpr.Expr { return c.expr }

func (c *tupleCodec) EstimateSize(rows uint64) uint64 {
	var total uint64
	for _, ch := range c.children {
		total += ch.EstimateSize(rows)
	}
	return total
}

func (c *tupleCodec) WritePrefix(w *binary.Writer, col column.Column) error {
	tc, ok := col.(*column.Tuple)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Tuple codec: expected *column.Tuple, got %T", col)
	}
	for i, ch := range c.children {
		if err := ch.WritePrefix(w, tc.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *tupleCodec) ReadPrefix(r *binary.Reader) (PrefixState, error) {
	states := make([]PrefixState, len(c.children))
	for i, ch := range c.children {
		s, err := ch.ReadPrefix(r)
		if err != nil {
			return nil, err
		}
		states[i] = s
	}
	return states, nil
}

func (c *tupleCodec) Encode(w *binary.Writer, col column.Column) error {
	tc, ok := col.(*column.Tuple)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Tuple codec: expected *column.Tuple, got %T", col)
	}
	for i, ch := range c.children {
		if err := ch.Encode(w, tc.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *tupleCodec) Decode(r *binary.Reader, rows uint64, prefix PrefixState) (column.Column, error) {
	states, _ := prefix.([]PrefixState)
	children := make([]column.Column, len(c.children))
	for i, ch := range c.children {
		var st PrefixState
		if states != nil {
			st = states[i]
		}
		col, err := ch.Decode(r, rows, st)
		if err != nil {
			return nil, err
		}
		children[i] = col
	}
	return column.NewTuple(c.expr, children, c.names, c.named), nil
}

func (c *tupleCodec) FromValues(values []column.Value) (column.Column, error) {
	perChild := make([][]column.Value, len(c.children))
	for i := range perChild {
		perChild[i] = make([]column.Value, len(values))
	}
	for rowIdx, v := range values {
		switch t := v.(type) {
		case []column.Value:
			if len(t) != len(c.children) {
				return nil, wireerr.Newf(wireerr.KindCoercionError, "Tuple codec: row has %d elements, expected %d", len(t), len(c.children))
			}
			for i, elem := range t {
				perChild[i][rowIdx] = elem
			}
		case column.OrderedTuple:
			if len(t.Values) != len(c.children) {
				return nil, wireerr.Newf(wireerr.KindCoercionError, "Tuple codec: row has %d elements, expected %d", len(t.Values), len(c.children))
			}
			for i, elem := range t.Values {
				perChild[i][rowIdx] = elem
			}
		default:
			return nil, wireerr.Newf(wireerr.KindCoercionError, "Tuple codec: expected a positional or named tuple row, got %T", v)
		}
	}
	children := make([]column.Column, len(c.children))
	for i, ch := range c.children {
		col, err := ch.FromValues(perChild[i])
		if err != nil {
			return nil, err
		}
		children[i] = col
	}
	return column.NewTuple(c.expr, children, c.names, c.named), nil
}

func (c *tupleCodec) ZeroValue() column.Value {
	vals := make([]column.Value, len(c.children))
	for i, ch := range c.children {
		vals[i] = ch.ZeroValue()
	}
	return vals
}
