// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// Generic is a boxed, row-per-Value column used by the alternate
// row-oriented encoder fallback (spec.md §4.F) for type strings the
// columnar path has no native codec for. It is the closed column sum's
// escape hatch, per spec.md §9's "generic-boxed" variant.
type Generic struct {
	Expr *typeexpr.Expr
	Rows []Value
}

func (c *Generic) Len() uint64 { return uint64(len(c.Rows)) }
func (c *Generic) Type() *typeexpr.Expr { return c.Expr }

func (c *Generic) Get(i uint64) (Value, error) {
	n := uint64(len(c.Rows))
	if i >= n {
		return nil, outOfRange(i, n)
	}
	return c.Rows[i], nil
}
