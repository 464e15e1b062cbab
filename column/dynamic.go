// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// Dynamic is a column whose per-row type is discovered at decode/encode
// time rather than declared in the schema. Discriminators are sized by
// ceil(log256(n+1)) on the wire but stored as uint32 in memory; the null
// discriminator equals len(Types) (not a sentinel byte, since the width
// is chosen to fit it), per spec.md §3.
type Dynamic struct {
	Expr           *typeexpr.Expr
	Types          []*typeexpr.Expr
	Discriminators []uint32 // len(Types) means null
	Groups         []Column
	GroupIndex     []uint32
}

// NewDynamic builds a Dynamic column and precomputes GroupIndex in O(n),
// mirroring Variant's construction.
func NewDynamic(expr *typeexpr.Expr, types []*typeexpr.Expr, discriminators []uint32, groups []Column) *Dynamic {
	counters := make([]uint32, len(groups))
	groupIndex := make([]uint32, len(discriminators))
	nullDisc := uint32(len(types))
	for i, d := range discriminators {
		if d == nullDisc {
			continue
		}
		groupIndex[i] = counters[d]
		counters[d]++
	}
	return &Dynamic{Expr: expr, Types: types, Discriminators: discriminators, Groups: groups, GroupIndex: groupIndex}
}

func (c *Dynamic) Len() uint64 { return uint64(len(c.Discriminators)) }
func (c *Dynamic) Type() *typeexpr.Expr { return c.Expr }

func (c *Dynamic) NullDiscriminator() uint32 { return uint32(len(c.Types)) }

func (c *Dynamic) Get(i uint64) (Value, error) {
	n := uint64(len(c.Discriminators))
	if i >= n {
		return nil, outOfRange(i, n)
	}
	d := c.Discriminators[i]
	if d == c.NullDiscriminator() {
		return nil, nil
	}
	if int(d) >= len(c.Groups) {
		return nil, outOfRange(uint64(d), uint64(len(c.Groups)))
	}
	return c.Groups[d].Get(uint64(c.GroupIndex[i]))
}

// DynamicValue is the FromValues row shape for a Dynamic column: unlike
// Variant, Dynamic has no fixed declared type list, so each row must
// carry its own type alongside its value.
type DynamicValue struct {
	Type  *typeexpr.Expr
	Value Value
}

// GetTagged returns the row's resolved type and value.
func (c *Dynamic) GetTagged(i uint64) (Tagged, *typeexpr.Expr, error) {
	n := uint64(len(c.Discriminators))
	if i >= n {
		return Tagged{}, nil, outOfRange(i, n)
	}
	d := c.Discriminators[i]
	if d == c.NullDiscriminator() {
		return Tagged{Discriminator: -1}, nil, nil
	}
	v, err := c.Groups[d].Get(uint64(c.GroupIndex[i]))
	if err != nil {
		return Tagged{}, nil, err
	}
	return Tagged{Discriminator: int(d), Value: v}, c.Types[d], nil
}
