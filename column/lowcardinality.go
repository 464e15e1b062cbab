// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// LowCardinality is a dictionary (a column of unique values, possibly
// Nullable-unwrapped per spec.md §3) plus a per-row index array. Indices
// are stored as uint64 in memory regardless of the on-wire width; the
// wire's 1/2/4/8-byte encoding is a codec-level concern, not a storage
// one.
type LowCardinality struct {
	Expr       *typeexpr.Expr
	Dict       Column // the unwrapped T, or Nullable(T) collapsed per InnerNullable
	Index      []uint64
	InnerNullable bool // true if the declared type is LowCardinality(Nullable(T))
}

func (c *LowCardinality) Len() uint64 { return uint64(len(c.Index)) }
func (c *LowCardinality) Type() *typeexpr.Expr { return c.Expr }

func (c *LowCardinality) Get(i uint64) (Value, error) {
	n := uint64(len(c.Index))
	if i >= n {
		return nil, outOfRange(i, n)
	}
	idx := c.Index[i]
	if c.InnerNullable && idx == 0 {
		return nil, nil
	}
	if err := CheckSafeIndex(idx, "low-cardinality index"); err != nil {
		return nil, err
	}
	return c.Dict.Get(idx)
}
