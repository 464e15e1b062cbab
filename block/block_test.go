// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/codec"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/rowview"
)

func buildBatch(t *testing.T, registry *codec.Registry) *rowview.Batch {
	t.Helper()
	idCodec, err := registry.Get("Int64")
	require.NoError(t, err)
	idCol, err := idCodec.FromValues([]column.Value{int64(1), int64(2), int64(3)})
	require.NoError(t, err)

	nameCodec, err := registry.Get("String")
	require.NoError(t, err)
	nameCol, err := nameCodec.FromValues([]column.Value{[]byte("a"), []byte("bb"), []byte("ccc")})
	require.NoError(t, err)

	schema := []rowview.ColumnDef{
		{Name: "id", Type: idCodec.TypeExpr()},
		{Name: "name", Type: nameCodec.TypeExpr()},
	}
	return rowview.NewBatch(schema, []column.Column{idCol, nameCol})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	registry := codec.NewRegistry(codec.Options{})
	batch := buildBatch(t, registry)

	w := binary.NewWriter(256)
	require.NoError(t, Encode(w, registry, batch, nil, Options{}))

	r := binary.NewReader(w.Bytes())
	got, info, isEnd, err := Decode(r, registry, Options{})
	require.NoError(t, err)
	require.False(t, isEnd)
	require.Equal(t, int32(-1), info.BucketNum)
	require.Equal(t, uint64(3), got.Len())
	require.Equal(t, []string{"id", "name"}, got.ColumnNames())

	v, err := got.At(1, "name")
	require.NoError(t, err)
	require.Equal(t, []byte("bb"), v)
}

func TestDecodeUnderflowRestoresCursor(t *testing.T) {
	registry := codec.NewRegistry(codec.Options{})
	batch := buildBatch(t, registry)

	w := binary.NewWriter(256)
	require.NoError(t, Encode(w, registry, batch, nil, Options{}))
	full := w.Bytes()

	r := binary.NewReader(full[:len(full)-1])
	start := r.Pos()
	_, _, _, err := Decode(r, registry, Options{})
	require.Error(t, err)
	require.Equal(t, start, r.Pos())
}

func TestEndMarker(t *testing.T) {
	registry := codec.NewRegistry(codec.Options{})
	w := binary.NewWriter(16)
	EncodeEndMarker(w, Options{})

	r := binary.NewReader(w.Bytes())
	batch, _, isEnd, err := Decode(r, registry, Options{})
	require.NoError(t, err)
	require.True(t, isEnd)
	require.Equal(t, uint64(0), batch.Len())
}

func TestSchemaOnlyBlock(t *testing.T) {
	registry := codec.NewRegistry(codec.Options{})
	idCodec, err := registry.Get("Int64")
	require.NoError(t, err)
	empty, err := idCodec.FromValues(nil)
	require.NoError(t, err)
	schema := []rowview.ColumnDef{{Name: "id", Type: idCodec.TypeExpr()}}
	batch := rowview.NewBatch(schema, []column.Column{empty})

	w := binary.NewWriter(64)
	require.NoError(t, Encode(w, registry, batch, nil, Options{}))

	r := binary.NewReader(w.Bytes())
	got, _, isEnd, err := Decode(r, registry, Options{})
	require.NoError(t, err)
	require.False(t, isEnd)
	require.Equal(t, uint64(0), got.Len())
	require.Equal(t, []string{"id"}, got.ColumnNames())
}

func TestDecodeSparse(t *testing.T) {
	registry := codec.NewRegistry(codec.Options{})
	idCodec, err := registry.Get("Int64")
	require.NoError(t, err)

	w := binary.NewWriter(64)
	writeBlockInfo(w, nil) // revision 1 also gates block-info on
	w.WriteVarint(1)       // numCols
	w.WriteVarint(5) // numRows
	w.WriteString("v")
	w.WriteString("Int64")
	w.WriteU8(serializationCustom)
	w.WriteU8(customKindSparse)
	// rows 0..4 default except row 2 (value 42) and row 4 (value 7).
	w.WriteVarint(2) // 2 default rows, then a non-default row (row 2)
	w.WriteVarint(1) // 1 default row (row 3), then a non-default row (row 4)
	w.WriteVarint(0 | sparseFinalFlag)
	dense, err := idCodec.FromValues([]column.Value{int64(42), int64(7)})
	require.NoError(t, err)
	require.NoError(t, idCodec.Encode(w, dense))

	r := binary.NewReader(w.Bytes())
	batch, _, isEnd, err := Decode(r, registry, Options{ClientVersion: revisionWithCustomSerialization})
	require.NoError(t, err)
	require.False(t, isEnd)
	require.Equal(t, uint64(5), batch.Len())

	for i, want := range []int64{0, 0, 42, 0, 7} {
		v, err := batch.At(uint64(i), "v")
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
}
