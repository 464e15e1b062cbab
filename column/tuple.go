// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// Tuple is an ordered list of child columns, all equal length. When
// Named is set, Get materializes an OrderedTuple (names plus values, see
// below) instead of a positional []Value.
type Tuple struct {
	Expr     *typeexpr.Expr
	Children []Column
	Names    []string // parallel to Children; empty entries if unnamed
	Named    bool
	length   uint64
}

// NewTuple builds a Tuple column, deriving row count from the first
// child (all children must already be equal length per spec.md
// invariant 1).
func NewTuple(expr *typeexpr.Expr, children []Column, names []string, named bool) *Tuple {
	var length uint64
	if len(children) > 0 {
		length = children[0].Len()
	}
	return &Tuple{Expr: expr, Children: children, Names: names, Named: named, length: length}
}

func (c *Tuple) Len() uint64 { return c.length }
func (c *Tuple) Type() *typeexpr.Expr { return c.Expr }

// OrderedTuple is the materialized row view of a Tuple: element values in
// declaration order, with optional parallel names.
type OrderedTuple struct {
	Names  []string
	Values []Value
}

func (c *Tuple) Get(i uint64) (Value, error) {
	if i >= c.length {
		return nil, outOfRange(i, c.length)
	}
	vals := make([]Value, len(c.Children))
	for idx, child := range c.Children {
		v, err := child.Get(i)
		if err != nil {
			return nil, err
		}
		vals[idx] = v
	}
	if c.Named {
		return OrderedTuple{Names: c.Names, Values: vals}, nil
	}
	return vals, nil
}
