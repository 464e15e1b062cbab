// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// NullDiscriminator is the wire value for a null Variant row: 0xFF,
// distinct from Dynamic's null discriminator which is sized to the type
// count instead (see Dynamic).
const NullDiscriminator = 0xFF

// Variant holds row-parallel discriminator bytes (0..n-1, or
// NullDiscriminator for null) plus n grouped child columns, where group g
// contains only rows whose discriminator is g, in original row order. A
// precomputed per-row GroupIndex (spec.md §4.D: "construction precomputes
// a per-row group index array so Get(i) is O(1)") avoids rescanning
// discriminators on every access.
type Variant struct {
	Expr           *typeexpr.Expr
	Discriminators []byte
	Groups         []Column
	GroupIndex     []uint32
}

// NewVariant builds a Variant column and precomputes GroupIndex in O(n).
func NewVariant(expr *typeexpr.Expr, discriminators []byte, groups []Column) *Variant {
	counters := make([]uint32, len(groups))
	groupIndex := make([]uint32, len(discriminators))
	for i, d := range discriminators {
		if d == NullDiscriminator {
			continue
		}
		groupIndex[i] = counters[d]
		counters[d]++
	}
	return &Variant{Expr: expr, Discriminators: discriminators, Groups: groups, GroupIndex: groupIndex}
}

func (c *Variant) Len() uint64 { return uint64(len(c.Discriminators)) }
func (c *Variant) Type() *typeexpr.Expr { return c.Expr }

// Discriminator returns the raw discriminator byte for row i.
func (c *Variant) Discriminator(i uint64) (byte, error) {
	n := uint64(len(c.Discriminators))
	if i >= n {
		return 0, outOfRange(i, n)
	}
	return c.Discriminators[i], nil
}

func (c *Variant) Get(i uint64) (Value, error) {
	d, err := c.Discriminator(i)
	if err != nil {
		return nil, err
	}
	if d == NullDiscriminator {
		return nil, nil
	}
	if int(d) >= len(c.Groups) {
		return nil, outOfRange(uint64(d), uint64(len(c.Groups)))
	}
	return c.Groups[d].Get(uint64(c.GroupIndex[i]))
}

// Tagged is the canonical [discriminator, value] row shape for Variant
// and Dynamic columns (spec.md §9's resolved Open Question).
type Tagged struct {
	Discriminator int
	Value         Value
}

// GetTagged returns the row as a Tagged value (discriminator + value),
// the columnar-native shape; rowview adapts this to the legacy
// {type, value} object shape for callers that need it.
func (c *Variant) GetTagged(i uint64) (Tagged, error) {
	d, err := c.Discriminator(i)
	if err != nil {
		return Tagged{}, err
	}
	if d == NullDiscriminator {
		return Tagged{Discriminator: -1, Value: nil}, nil
	}
	v, err := c.Groups[d].Get(uint64(c.GroupIndex[i]))
	if err != nil {
		return Tagged{}, err
	}
	return Tagged{Discriminator: int(d), Value: v}, nil
}
