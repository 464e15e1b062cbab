// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// variantCodec handles Variant(T1,...,Tn): row_count discriminator bytes
// (0..n-1, or column.NullDiscriminator for null), then each child
// group's payload in ascending type index, per spec.md §4.G.
type variantCodec struct {
	expr     *typeexpr.Expr
	children []Codec
}

func (c *variantCodec) TypeExpr() *typeexpr.Expr { return c.expr }

func (c *variantCodec) EstimateSize(rows uint64) uint64 {
	total := rows
	for _, ch := range c.children {
		total += ch.EstimateSize(rows / uint64(len(c.children)+1))
	}
	return total
}

func (c *variantCodec) WritePrefix(w *binary.Writer, col column.Column) error {
	vc, ok := col.(*column.Variant)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Variant codec: expected *column.Variant, got %T", col)
	}
	w.WriteU64LE(0)
	for i, ch := range c.children {
		if err := ch.WritePrefix(w, vc.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *variantCodec) ReadPrefix(r *binary.Reader) (PrefixState, error) {
	mode, err := r.ReadU64LE()
	if err != nil {
		return nil, err
	}
	if mode != 0 {
		return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "Variant: unsupported mode %d", mode).WithType(c.expr.String())
	}
	states := make([]PrefixState, len(c.children))
	for i, ch := range c.children {
		s, err := ch.ReadPrefix(r)
		if err != nil {
			return nil, err
		}
		states[i] = s
	}
	return states, nil
}

func (c *variantCodec) Encode(w *binary.Writer, col column.Column) error {
	vc, ok := col.(*column.Variant)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "Variant codec: expected *column.Variant, got %T", col)
	}
	w.Write(vc.Discriminators)
	for i, ch := range c.children {
		if err := ch.Encode(w, vc.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *variantCodec) Decode(r *binary.Reader, rows uint64, prefix PrefixState) (column.Column, error) {
	states, _ := prefix.([]PrefixState)
	discriminators, err := r.CopyBytes(int(rows))
	if err != nil {
		return nil, err
	}
	counts := make([]uint64, len(c.children))
	for _, d := range discriminators {
		if d == column.NullDiscriminator {
			continue
		}
		if int(d) >= len(c.children) {
			return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "Variant: discriminator %d out of range [0,%d)", d, len(c.children)).WithType(c.expr.String())
		}
		counts[d]++
	}
	groups := make([]column.Column, len(c.children))
	for i, ch := range c.children {
		var st PrefixState
		if states != nil {
			st = states[i]
		}
		g, err := ch.Decode(r, counts[i], st)
		if err != nil {
			return nil, err
		}
		groups[i] = g
	}
	return column.NewVariant(c.expr, discriminators, groups), nil
}

func (c *variantCodec) FromValues(values []column.Value) (column.Column, error) {
	discriminators := make([]byte, len(values))
	perChild := make([][]column.Value, len(c.children))
	for i, v := range values {
		if v == nil {
			discriminators[i] = column.NullDiscriminator
			continue
		}
		tagged, ok := v.(column.Tagged)
		if !ok {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "Variant codec: expected column.Tagged row, got %T", v)
		}
		if tagged.Discriminator < 0 || tagged.Discriminator >= len(c.children) {
			return nil, wireerr.Newf(wireerr.KindRangeError, "Variant codec: discriminator %d out of range", tagged.Discriminator)
		}
		discriminators[i] = byte(tagged.Discriminator)
		perChild[tagged.Discriminator] = append(perChild[tagged.Discriminator], tagged.Value)
	}
	groups := make([]column.Column, len(c.children))
	for i, ch := range c.children {
		g, err := ch.FromValues(perChild[i])
		if err != nil {
			return nil, err
		}
		groups[i] = g
	}
	return column.NewVariant(c.expr, discriminators, groups), nil
}

func (c *variantCodec) ZeroValue() column.Value { return nil }
