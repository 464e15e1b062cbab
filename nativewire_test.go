// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nativewire

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/nativewire/codec"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/rowview"
	"github.com/solidcoredata/nativewire/stream"
)

func buildBatch(t *testing.T) rowview.Batch {
	t.Helper()
	registry := codec.NewRegistry(codec.Options{})
	idCodec, err := registry.Get("UInt32")
	require.NoError(t, err)
	idCol, err := idCodec.FromValues([]column.Value{uint32(1), uint32(2)})
	require.NoError(t, err)
	schema := []rowview.ColumnDef{{Name: "id", Type: idCodec.TypeExpr()}}
	return *rowview.NewBatch(schema, []column.Column{idCol})
}

func TestEncodeDecodeBlock(t *testing.T) {
	batch := buildBatch(t)

	bytes, err := EncodeBlock(batch)
	require.NoError(t, err)

	got, consumed, isEnd, err := DecodeBlock(bytes, 0, stream.Options{})
	require.NoError(t, err)
	require.False(t, isEnd)
	require.Equal(t, len(bytes), consumed)
	require.Equal(t, uint64(2), got.Len())
}

func TestDecodeBlocksFansOutConcurrently(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch := buildBatch(t)
	bytes, err := EncodeBlock(batch)
	require.NoError(t, err)

	bufs := [][]byte{bytes, bytes, bytes}
	got, err := DecodeBlocks(ctx, bufs, stream.Options{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, b := range got {
		require.Equal(t, uint64(2), b.Len())
	}
}

func TestDecodeBlocksPropagatesError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := DecodeBlocks(ctx, [][]byte{{0x00}}, stream.Options{})
	require.Error(t, err)
}

func TestEncodeDecodeStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches := make(chan rowview.Batch, 1)
	batches <- buildBatch(t)
	close(batches)

	chunks, encErrs := EncodeStream(ctx, batches)

	feed := make(chan []byte)
	decodedOut, decErrs := DecodeStream(ctx, feed, stream.Options{})

	go func() {
		defer close(feed)
		for c := range chunks {
			feed <- c
		}
	}()

	var got []rowview.Batch
	for b := range decodedOut {
		got = append(got, b)
	}
	require.NoError(t, <-decErrs)
	require.NoError(t, <-encErrs)
	require.Len(t, got, 1)
	require.Equal(t, uint64(2), got[0].Len())
}
