// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import (
	"math/big"

	"github.com/solidcoredata/nativewire/typeexpr"
)

// Numeric[T] is a raw buffer of fixed-width primitives, one per row.
// Shared and immutable once decoded; decoding may re-use the wire
// bytes zero-copy when alignment allows (see package binary's
// ReadTypedArray).
type Numeric[T any] struct {
	Expr *typeexpr.Expr
	Data []T
}

func (c *Numeric[T]) Len() uint64 { return uint64(len(c.Data)) }
func (c *Numeric[T]) Type() *typeexpr.Expr { return c.Expr }
func (c *Numeric[T]) Get(i uint64) (Value, error) {
	if i >= uint64(len(c.Data)) {
		return nil, outOfRange(i, uint64(len(c.Data)))
	}
	return c.Data[i], nil
}

// BigNumeric holds Int128/256 and UInt128/256 columns, which are always
// surfaced as *big.Int at the API level regardless of host word size.
type BigNumeric struct {
	Expr *typeexpr.Expr
	Data []*big.Int
}

func (c *BigNumeric) Len() uint64 { return uint64(len(c.Data)) }
func (c *BigNumeric) Type() *typeexpr.Expr { return c.Expr }
func (c *BigNumeric) Get(i uint64) (Value, error) {
	if i >= uint64(len(c.Data)) {
		return nil, outOfRange(i, uint64(len(c.Data)))
	}
	return c.Data[i], nil
}
