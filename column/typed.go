// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// Typed[T] is a plain Value-per-row column backing for scalar Go types
// that don't fit Numeric's zero-copy fixed-width reinterpret: wiretime.*
// wrapper types, uuid.UUID, and net.IP.
type Typed[T any] struct {
	Expr *typeexpr.Expr
	Data []T
}

func (c *Typed[T]) Len() uint64         { return uint64(len(c.Data)) }
func (c *Typed[T]) Type() *typeexpr.Expr { return c.Expr }

func (c *Typed[T]) Get(i uint64) (Value, error) {
	n := uint64(len(c.Data))
	if i >= n {
		return nil, outOfRange(i, n)
	}
	return c.Data[i], nil
}
