// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package block assembles and disassembles one wire block: an optional
// block-info header, a column count, a row count, and per-column
// [name, type, serialization-kind, prefix, data], per spec.md §4.H. It
// generalizes the teacher's CHUNK marker-framed format in ts/writer.go
// (FS "C" <chunk-length> <table-id><row-count><row-offset-list><row-data>)
// from ASCII control-byte markers to the varint-fieldId block-info
// framing this spec requires.
package block

import (
	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/codec"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/rowview"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// Protocol revision thresholds gating optional block framing, named here
// per SPEC_FULL.md §9 rather than hard-coded at each call site.
const (
	// revisionWithBlockInfo: block-info is emitted/expected only when
	// ClientVersion is strictly greater than this.
	revisionWithBlockInfo = 0
	// revisionWithCustomSerialization: the per-column serialization-kind
	// byte is emitted/expected only when ClientVersion is at least this.
	revisionWithCustomSerialization = 1
)

const (
	blockInfoFieldEnd         = 0
	blockInfoFieldIsOverflows = 1
	blockInfoFieldBucketNum   = 2
)

const (
	serializationDense  = 0
	serializationCustom = 1
	customKindSparse    = 1
)

// sparseFinalFlag marks the last entry of a sparse column's gap stream.
const sparseFinalFlag = uint64(1) << 62

// Options controls the revision-gated framing of one block. It mirrors
// the subset of stream.Options the block codec needs directly, so that
// package block does not import package stream (stream imports block,
// not the reverse).
type Options struct {
	ClientVersion int
}

// BlockInfo carries the per-block metadata fields of spec.md §4.H:
// whether this block holds GROUP BY overflow rows, and which
// parallel-aggregation bucket it belongs to (-1 if not applicable).
type BlockInfo struct {
	IsOverflows bool
	BucketNum   int32
}

// Decode reads one block starting at the reader's current cursor. On any
// error (including BufferUnderflow) the cursor is restored to its
// pre-call position, so a caller may retry once more bytes are
// available, per spec.md §4.I's resumability invariant.
func Decode(r *binary.Reader, registry *codec.Registry, opt Options) (batch *rowview.Batch, info BlockInfo, isEndMarker bool, err error) {
	start := r.Pos()
	defer func() {
		if err != nil {
			r.Seek(start)
		}
	}()

	info = BlockInfo{BucketNum: -1}
	if opt.ClientVersion > revisionWithBlockInfo {
		info, err = readBlockInfo(r)
		if err != nil {
			return nil, BlockInfo{}, false, err
		}
	}

	numCols, err := r.ReadVarint()
	if err != nil {
		return nil, BlockInfo{}, false, err
	}
	numRows, err := r.ReadVarint()
	if err != nil {
		return nil, BlockInfo{}, false, err
	}
	if numCols == 0 && numRows == 0 {
		return rowview.NewBatch(nil, nil), info, true, nil
	}

	schema := make([]rowview.ColumnDef, numCols)
	data := make([]column.Column, numCols)
	for i := range schema {
		name, err2 := r.ReadString()
		if err2 != nil {
			return nil, BlockInfo{}, false, err2
		}
		typeStr, err2 := r.ReadString()
		if err2 != nil {
			return nil, BlockInfo{}, false, err2
		}
		expr, err2 := typeexpr.Parse(typeStr)
		if err2 != nil {
			return nil, BlockInfo{}, false, err2
		}
		schema[i] = rowview.ColumnDef{Name: name, Type: expr}

		ch, err2 := registry.GetExpr(expr)
		if err2 != nil {
			return nil, BlockInfo{}, false, err2
		}

		if numRows == 0 {
			// Schema-only block: the type string alone conveys schema,
			// prefix and payload bytes are omitted entirely.
			empty, err3 := ch.FromValues(nil)
			if err3 != nil {
				return nil, BlockInfo{}, false, err3
			}
			data[i] = empty
			continue
		}

		kind := serializationDense
		if opt.ClientVersion >= revisionWithCustomSerialization {
			flag, err3 := r.ReadU8()
			if err3 != nil {
				return nil, BlockInfo{}, false, err3
			}
			if flag == serializationCustom {
				kindByte, err4 := r.ReadU8()
				if err4 != nil {
					return nil, BlockInfo{}, false, err4
				}
				kind = int(kindByte)
			}
		}

		prefix, err3 := ch.ReadPrefix(r)
		if err3 != nil {
			return nil, BlockInfo{}, false, err3
		}

		var col column.Column
		switch kind {
		case serializationDense:
			col, err3 = ch.Decode(r, numRows, prefix)
		case customKindSparse:
			col, err3 = decodeSparse(r, ch, numRows, prefix)
		default:
			err3 = wireerr.Newf(wireerr.KindInvalidWireFormat, "block: unknown serialization kind %d", kind).WithColumn(name).WithType(typeStr)
		}
		if err3 != nil {
			return nil, BlockInfo{}, false, err3
		}
		data[i] = col
	}

	return rowview.NewBatch(schema, data), info, false, nil
}

// Encode writes one block. A nil info writes the default (not an
// overflow block, no bucket). This encoder never emits the sparse
// serialization kind: sparse is spec.md's decode-only path, produced by
// the peer, not by this library.
func Encode(w *binary.Writer, registry *codec.Registry, batch *rowview.Batch, info *BlockInfo, opt Options) error {
	if opt.ClientVersion > revisionWithBlockInfo {
		writeBlockInfo(w, info)
	}
	w.WriteVarint(uint64(len(batch.Schema)))
	w.WriteVarint(batch.RowCount)
	for i, cd := range batch.Schema {
		w.WriteString(cd.Name)
		w.WriteString(cd.Type.String())

		ch, err := registry.GetExpr(cd.Type)
		if err != nil {
			return err
		}

		if opt.ClientVersion >= revisionWithCustomSerialization {
			w.WriteU8(serializationDense)
		}

		if batch.RowCount == 0 {
			continue
		}
		col := batch.Data[i]
		if err := ch.WritePrefix(w, col); err != nil {
			return err
		}
		if err := ch.Encode(w, col); err != nil {
			return err
		}
	}
	return nil
}

// EncodeEndMarker writes the numCols==0/numRows==0 separator block.
func EncodeEndMarker(w *binary.Writer, opt Options) {
	if opt.ClientVersion > revisionWithBlockInfo {
		writeBlockInfo(w, nil)
	}
	w.WriteVarint(0)
	w.WriteVarint(0)
}

func readBlockInfo(r *binary.Reader) (BlockInfo, error) {
	info := BlockInfo{BucketNum: -1}
	for {
		fieldID, err := r.ReadVarint()
		if err != nil {
			return BlockInfo{}, err
		}
		switch fieldID {
		case blockInfoFieldEnd:
			return info, nil
		case blockInfoFieldIsOverflows:
			v, err := r.ReadBool()
			if err != nil {
				return BlockInfo{}, err
			}
			info.IsOverflows = v
		case blockInfoFieldBucketNum:
			v, err := r.ReadI32LE()
			if err != nil {
				return BlockInfo{}, err
			}
			info.BucketNum = v
		default:
			return BlockInfo{}, wireerr.Newf(wireerr.KindInvalidWireFormat, "block-info: unknown field id %d", fieldID)
		}
	}
}

func writeBlockInfo(w *binary.Writer, info *BlockInfo) {
	if info == nil {
		info = &BlockInfo{BucketNum: -1}
	}
	w.WriteVarint(blockInfoFieldIsOverflows)
	w.WriteBool(info.IsOverflows)
	w.WriteVarint(blockInfoFieldBucketNum)
	w.WriteI32LE(info.BucketNum)
	w.WriteVarint(blockInfoFieldEnd)
}

// decodeSparse reads a gap-stream-prefixed dense payload and reconstructs
// a full `rows`-length column, placing the codec's zero value at every
// row the gap stream did not mark as present, per spec.md §4.G's
// "Sparse serialization (decode-only path)".
//
// Gap stream: each entry before the final one is the count of default
// rows since the previous non-default row (or stream start) and is
// followed conceptually by one non-default row; the final entry has
// sparseFinalFlag set and carries the trailing default-row count with no
// non-default row of its own.
func decodeSparse(r *binary.Reader, ch codec.Codec, rows uint64, prefix codec.PrefixState) (column.Column, error) {
	var positions []uint64
	pos := uint64(0)
	for {
		g, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		final := g&sparseFinalFlag != 0
		g &^= sparseFinalFlag
		if final {
			break
		}
		pos += g
		positions = append(positions, pos)
		pos++
	}

	dense, err := ch.Decode(r, uint64(len(positions)), prefix)
	if err != nil {
		return nil, err
	}

	vals := make([]column.Value, rows)
	zero := ch.ZeroValue()
	for i := range vals {
		vals[i] = zero
	}
	for j, p := range positions {
		if p >= rows {
			return nil, wireerr.Newf(wireerr.KindInvalidWireFormat, "sparse gap position %d out of range [0,%d)", p, rows)
		}
		v, err := dense.Get(uint64(j))
		if err != nil {
			return nil, err
		}
		vals[p] = v
	}
	return ch.FromValues(vals)
}
