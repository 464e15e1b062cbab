// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stream drives block decoding across arbitrary chunk
// boundaries: a single-threaded cooperative loop that appends each
// incoming chunk to a streambuf.Buffer and drains as many whole blocks
// as it can before suspending for the next chunk, per spec.md §4.I. It
// generalizes the teacher's Writer.Flush chunk-boundary idiom (ts/writer.go)
// to a resumable decode-side driver.
package stream

import (
	"github.com/rs/zerolog"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/block"
	"github.com/solidcoredata/nativewire/codec"
	"github.com/solidcoredata/nativewire/rowview"
	"github.com/solidcoredata/nativewire/streambuf"
	"github.com/solidcoredata/nativewire/wireerr"
)

// Options configures a Driver, matching spec.md §6's exhaustive decode
// option table.
type Options struct {
	// ClientVersion gates block-info and custom-serialization headers.
	ClientVersion int
	// EnumAsNumber decodes Enum columns as integers instead of names.
	EnumAsNumber bool
	// MapAsArray is false by default, which decodes Map rows as ordered
	// [key,value] pairs; set true to opt into the historical hash-style
	// mapping that drops duplicate keys.
	MapAsArray bool
	// MinBufferSize is the stream buffer's retained minimum capacity
	// (default 2 MiB, see streambuf.DefaultMinBuffer).
	MinBufferSize int
	// Debug sends per-event Debug() messages to Logger (chunk received,
	// block decoded, underflow, end marker). The counters in Stats (blocks
	// decoded, underruns, too-small checks) are kept whether or not Debug
	// is set.
	Debug bool
	// Logger receives Debug() events when Debug is set. A nil Logger is
	// treated as disabled.
	Logger *zerolog.Logger
}

// BlockOptions translates these stream options into the block package's
// narrower Options, exported so package nativewire's single-block
// DecodeBlock/EncodeBlock can reuse it without duplicating the mapping.
func (o Options) BlockOptions() block.Options {
	return block.Options{ClientVersion: o.ClientVersion}
}

// CodecOptions translates these stream options into the codec
// registry's Options, exported for the same reason as BlockOptions.
func (o Options) CodecOptions() codec.Options {
	return codec.Options{EnumAsNumber: o.EnumAsNumber, MapAsArray: o.MapAsArray}
}

func (o Options) log() *zerolog.Logger {
	if !o.Debug || o.Logger == nil {
		disabled := zerolog.Nop()
		return &disabled
	}
	return o.Logger
}

// Stats are the counters spec.md §6's `debug` option asks for.
type Stats struct {
	BlocksDecoded  int64
	Underruns      int64
	TooSmallChecks int64
}

// Driver decodes a stream of byte chunks into a sequence of batches. It
// holds no state beyond the streambuf.Buffer and the codec registry it
// was built with; suspension happens only between chunks (spec.md §5).
type Driver struct {
	registry *codec.Registry
	opt      Options
	buf      *streambuf.Buffer
	stats    Stats
}

// NewDriver builds a Driver with a fresh codec registry configured from
// opt's EnumAsNumber/MapAsArray.
func NewDriver(opt Options) *Driver {
	return &Driver{
		registry: codec.NewRegistry(opt.CodecOptions()),
		opt:      opt,
		buf:      streambuf.New(opt.MinBufferSize),
	}
}

// Stats returns a snapshot of this Driver's debug counters.
func (d *Driver) Stats() Stats { return d.stats }

// Feed appends chunk and drains as many whole blocks as the buffered
// prefix contains, emitting one rowview.Batch per decoded block. End
// markers are consumed silently (not returned as batches).
func (d *Driver) Feed(chunk []byte) ([]*rowview.Batch, error) {
	d.buf.Append(chunk)
	log := d.opt.log()
	log.Debug().Int("bytes", len(chunk)).Msg("stream: chunk received")

	var batches []*rowview.Batch
	for {
		buffered := d.buf.View()
		if len(buffered) == 0 {
			break
		}
		// View borrows d.buf's backing array; Consume below may compact it
		// in place, which would corrupt any zero-copy typed-array slice a
		// codec decoded straight out of buffered. Decode from an owned
		// copy instead, per streambuf.Buffer.View's contract.
		owned := make([]byte, len(buffered))
		copy(owned, buffered)
		r := binary.NewReader(owned)
		batch, _, isEnd, err := block.Decode(r, d.registry, d.opt.BlockOptions())
		d.stats.TooSmallChecks += int64(r.DebugChecks())
		if err != nil {
			if wireerr.IsUnderflow(err) {
				d.stats.Underruns++
				log.Debug().Msg("stream: underflow, awaiting more bytes")
				break
			}
			return batches, err
		}
		d.buf.Consume(r.Pos())
		d.stats.BlocksDecoded++
		if isEnd {
			log.Debug().Msg("stream: end marker")
			continue
		}
		log.Debug().Int("cols", batch.NumCols()).Uint64("rows", batch.Len()).Msg("stream: block decoded")
		batches = append(batches, batch)
	}
	return batches, nil
}

// Finish runs the final drain pass: input has ended, so exactly one
// trailing BufferUnderflow is tolerated silently (a truncated tail is
// discarded) rather than treated as an error.
func (d *Driver) Finish() ([]*rowview.Batch, error) {
	log := d.opt.log()
	var batches []*rowview.Batch
	for {
		buffered := d.buf.View()
		if len(buffered) == 0 {
			break
		}
		owned := make([]byte, len(buffered))
		copy(owned, buffered)
		r := binary.NewReader(owned)
		batch, _, isEnd, err := block.Decode(r, d.registry, d.opt.BlockOptions())
		d.stats.TooSmallChecks += int64(r.DebugChecks())
		if err != nil {
			if wireerr.IsUnderflow(err) {
				log.Debug().Msg("stream: final drain absorbed trailing underflow")
				break
			}
			return batches, err
		}
		d.buf.Consume(r.Pos())
		d.stats.BlocksDecoded++
		if isEnd {
			continue
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// Encoder turns batches into wire-format blocks, one per batch, mirroring
// the teacher's Writer/Flush chunk-emission idiom on the encode side.
type Encoder struct {
	registry *codec.Registry
	opt      Options
}

// NewEncoder builds an Encoder with a fresh codec registry configured
// from opt's EnumAsNumber/MapAsArray.
func NewEncoder(opt Options) *Encoder {
	return &Encoder{registry: codec.NewRegistry(opt.CodecOptions()), opt: opt}
}

// EncodeBatch renders one batch as a complete block's bytes. A nil info
// writes the default block-info (not an overflow block, no bucket).
func (e *Encoder) EncodeBatch(batch *rowview.Batch, info *block.BlockInfo) ([]byte, error) {
	w := binary.NewWriter(1024)
	if err := block.Encode(w, e.registry, batch, info, e.opt.BlockOptions()); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeEndMarker renders the numCols==0/numRows==0 separator block.
func (e *Encoder) EncodeEndMarker() []byte {
	w := binary.NewWriter(16)
	block.EncodeEndMarker(w, e.opt.BlockOptions())
	return w.Bytes()
}
