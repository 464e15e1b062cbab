// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/nativewire/block"
	"github.com/solidcoredata/nativewire/codec"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/rowview"
)

func buildBatch(t *testing.T, registry *codec.Registry) *rowview.Batch {
	t.Helper()
	idCodec, err := registry.Get("UInt32")
	require.NoError(t, err)
	idCol, err := idCodec.FromValues([]column.Value{uint32(1), uint32(2), uint32(3)})
	require.NoError(t, err)
	schema := []rowview.ColumnDef{{Name: "id", Type: idCodec.TypeExpr()}}
	return rowview.NewBatch(schema, []column.Column{idCol})
}

func TestDriverFeedAcrossChunkBoundaries(t *testing.T) {
	opt := Options{}
	registry := codec.NewRegistry(opt.CodecOptions())
	batch := buildBatch(t, registry)

	enc := NewEncoder(opt)
	encoded, err := enc.EncodeBatch(batch, nil)
	require.NoError(t, err)

	driver := NewDriver(opt)
	mid := len(encoded) / 2

	batches, err := driver.Feed(encoded[:mid])
	require.NoError(t, err)
	require.Empty(t, batches)
	require.Equal(t, int64(1), driver.Stats().Underruns)

	batches, err = driver.Feed(encoded[mid:])
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Equal(t, uint64(3), batches[0].Len())
}

func TestDriverFinishAbsorbsTrailingUnderflow(t *testing.T) {
	opt := Options{}
	registry := codec.NewRegistry(opt.CodecOptions())
	batch := buildBatch(t, registry)

	enc := NewEncoder(opt)
	encoded, err := enc.EncodeBatch(batch, nil)
	require.NoError(t, err)

	driver := NewDriver(opt)
	batches, err := driver.Feed(append(encoded, 0xFF)) // trailing garbage byte
	require.NoError(t, err)
	require.Len(t, batches, 1)

	batches, err = driver.Finish()
	require.NoError(t, err)
	require.Empty(t, batches)
}

func TestEncoderEndMarkerRoundTrip(t *testing.T) {
	opt := Options{}
	enc := NewEncoder(opt)
	marker := enc.EncodeEndMarker()

	driver := NewDriver(opt)
	batches, err := driver.Feed(marker)
	require.NoError(t, err)
	require.Empty(t, batches)
	require.Equal(t, int64(1), driver.Stats().BlocksDecoded)
}

func TestBlockInfoSurvivesEncodeDecode(t *testing.T) {
	opt := Options{ClientVersion: 2}
	registry := codec.NewRegistry(opt.CodecOptions())
	batch := buildBatch(t, registry)

	enc := NewEncoder(opt)
	info := &block.BlockInfo{IsOverflows: true, BucketNum: 7}
	encoded, err := enc.EncodeBatch(batch, info)
	require.NoError(t, err)

	driver := NewDriver(opt)
	batches, err := driver.Feed(encoded)
	require.NoError(t, err)
	require.Len(t, batches, 1)
}
