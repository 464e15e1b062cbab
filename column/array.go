// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// Array is an inner column plus an ascending offsets array of length =
// row count, whose i-th entry is the exclusive end of row i in the inner
// column (offset[-1] implicitly 0).
type Array struct {
	Expr    *typeexpr.Expr
	Inner   Column
	Offsets []uint64
}

func (c *Array) Len() uint64 { return uint64(len(c.Offsets)) }
func (c *Array) Type() *typeexpr.Expr { return c.Expr }

// Bounds returns the [start,end) range of inner-column rows that make up
// row i.
func (c *Array) Bounds(i uint64) (start, end uint64, err error) {
	n := uint64(len(c.Offsets))
	if i >= n {
		return 0, 0, outOfRange(i, n)
	}
	start = 0
	if i > 0 {
		start = c.Offsets[i-1]
	}
	end = c.Offsets[i]
	return start, end, nil
}

func (c *Array) Get(i uint64) (Value, error) {
	start, end, err := c.Bounds(i)
	if err != nil {
		return nil, err
	}
	if err := CheckSafeIndex(end, "array offset"); err != nil {
		return nil, err
	}
	out := make([]Value, 0, end-start)
	for j := start; j < end; j++ {
		v, err := c.Inner.Get(j)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
