// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// Nullable wraps an inner column with a parallel byte array of null
// flags (1 = null). The inner column holds a placeholder value at null
// positions; lengths are always equal (spec.md invariant 1).
type Nullable struct {
	Expr  *typeexpr.Expr
	Nulls []byte // 0/1 per row
	Inner Column
}

func (c *Nullable) Len() uint64 { return uint64(len(c.Nulls)) }
func (c *Nullable) Type() *typeexpr.Expr { return c.Expr }

func (c *Nullable) Get(i uint64) (Value, error) {
	n := uint64(len(c.Nulls))
	if i >= n {
		return nil, outOfRange(i, n)
	}
	if c.Nulls[i] != 0 {
		return nil, nil
	}
	return c.Inner.Get(i)
}

// IsNull reports whether row i is null without materializing the inner
// value.
func (c *Nullable) IsNull(i uint64) bool {
	return i < uint64(len(c.Nulls)) && c.Nulls[i] != 0
}
