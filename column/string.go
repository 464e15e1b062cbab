// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// String is an ordered sequence of byte strings, stored as a flat data
// buffer plus a cumulative offsets array (offsets[i] is the exclusive end
// of row i, mirroring Array's offset convention so the same codec
// machinery can size and slice it).
type String struct {
	Expr    *typeexpr.Expr
	Data    []byte
	Offsets []uint64
}

func (c *String) Len() uint64 { return uint64(len(c.Offsets)) }
func (c *String) Type() *typeexpr.Expr { return c.Expr }

func (c *String) Get(i uint64) (Value, error) {
	n := uint64(len(c.Offsets))
	if i >= n {
		return nil, outOfRange(i, n)
	}
	start := uint64(0)
	if i > 0 {
		start = c.Offsets[i-1]
	}
	end := c.Offsets[i]
	return c.Data[start:end], nil
}

// FixedString is a String variant where every row occupies exactly N
// bytes; offsets are implicit (i*N) so no offsets array is stored.
type FixedString struct {
	Expr *typeexpr.Expr
	Data []byte
	N    int
}

func (c *FixedString) Len() uint64 {
	if c.N == 0 {
		return 0
	}
	return uint64(len(c.Data) / c.N)
}
func (c *FixedString) Type() *typeexpr.Expr { return c.Expr }

func (c *FixedString) Get(i uint64) (Value, error) {
	n := c.Len()
	if i >= n {
		return nil, outOfRange(i, n)
	}
	start := int(i) * c.N
	return c.Data[start : start+c.N], nil
}
