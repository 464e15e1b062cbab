// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nativewire decodes and encodes the native columnar wire
// format described by spec.md and SPEC_FULL.md. The package-level
// functions below are this module's external interface (spec.md §6):
// channel pairs for streaming decode/encode, and single-block functions
// for callers that already have a whole block in memory.
package nativewire

import (
	"context"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/block"
	"github.com/solidcoredata/nativewire/codec"
	"github.com/solidcoredata/nativewire/fanout"
	"github.com/solidcoredata/nativewire/rowview"
	"github.com/solidcoredata/nativewire/stream"
)

// DecodeStream drives a stream.Driver over chunks, emitting one batch
// per decoded block on the returned channel. Both returned channels are
// closed once chunks is closed and the final drain completes, or once
// ctx is canceled, or on the first decode error (sent once on the error
// channel before closing).
func DecodeStream(ctx context.Context, chunks <-chan []byte, opt stream.Options) (<-chan rowview.Batch, <-chan error) {
	out := make(chan rowview.Batch)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		driver := stream.NewDriver(opt)
		emit := func(batches []*rowview.Batch) bool {
			for _, b := range batches {
				select {
				case out <- *b:
				case <-ctx.Done():
					errc <- ctx.Err()
					return false
				}
			}
			return true
		}

		for {
			select {
			case chunk, ok := <-chunks:
				if !ok {
					batches, err := driver.Finish()
					if err != nil {
						errc <- err
						return
					}
					emit(batches)
					return
				}
				batches, err := driver.Feed(chunk)
				if err != nil {
					errc <- err
					return
				}
				if !emit(batches) {
					return
				}
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	return out, errc
}

// EncodeStream renders each batch as a block and emits it, followed by
// the end-of-stream marker once batches is closed.
func EncodeStream(ctx context.Context, batches <-chan rowview.Batch) (<-chan []byte, <-chan error) {
	out := make(chan []byte)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		enc := stream.NewEncoder(stream.Options{})
		for {
			select {
			case b, ok := <-batches:
				if !ok {
					select {
					case out <- enc.EncodeEndMarker():
					case <-ctx.Done():
						errc <- ctx.Err()
					}
					return
				}
				bytes, err := enc.EncodeBatch(&b, nil)
				if err != nil {
					errc <- err
					return
				}
				select {
				case out <- bytes:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	return out, errc
}

// DecodeBlock decodes exactly one block from buf starting at offset,
// returning how many bytes from offset were consumed. A short buf
// yields a BufferUnderflow error (wireerr.IsUnderflow), same as the
// streaming driver's mid-feed case.
func DecodeBlock(buf []byte, offset int, opt stream.Options) (batch rowview.Batch, consumed int, isEndMarker bool, err error) {
	registry := codec.NewRegistry(opt.CodecOptions())
	r := binary.NewReader(buf[offset:])
	b, _, isEnd, err := block.Decode(r, registry, opt.BlockOptions())
	if err != nil {
		return rowview.Batch{}, 0, false, err
	}
	return *b, r.Pos(), isEnd, nil
}

// DecodeBlocks decodes each of bufs as a standalone block concurrently,
// one fanout.Pipeline per buffer, and returns the batches in the same
// order as bufs. Each pipeline builds its own codec.Registry from opt,
// matching spec.md §5's "multiple pipelines may run in parallel on
// separate worker threads; they share only the immutable codec cache" —
// here each gets its own cache since the buffers may use unrelated type
// strings. The first pipeline error cancels the rest and is returned.
func DecodeBlocks(ctx context.Context, bufs [][]byte, opt stream.Options) ([]rowview.Batch, error) {
	out := make([]rowview.Batch, len(bufs))
	pipelines := make([]fanout.Pipeline, len(bufs))
	for i, buf := range bufs {
		i, buf := i, buf
		pipelines[i] = func(ctx context.Context) error {
			batch, _, _, err := DecodeBlock(buf, 0, opt)
			if err != nil {
				return err
			}
			out[i] = batch
			return nil
		}
	}
	if err := fanout.Run(ctx, pipelines...); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeBlock renders batch as one block's bytes, using the wire's
// default revision (no block-info, dense serialization only).
func EncodeBlock(batch rowview.Batch) ([]byte, error) {
	registry := codec.NewRegistry(codec.Options{})
	w := binary.NewWriter(1024)
	if err := block.Encode(w, registry, &batch, nil, block.Options{}); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
