// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"net"

	"github.com/google/uuid"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// uuidCodec handles UUID: 16 bytes per row, written as two 64-bit
// halves, each with its 8 bytes in reverse order relative to the
// RFC 4122 byte layout that github.com/google/uuid holds in memory.
type uuidCodec struct{ expr *typeexpr.Expr }

func (c *uuidCodec) TypeExpr() *typeexpr.Expr                        { return c.expr }
func (c *uuidCodec) EstimateSize(rows uint64) uint64                 { return rows * 16 }
func (c *uuidCodec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *uuidCodec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }
func (c *uuidCodec) ZeroValue() column.Value                        { return uuid.Nil }

func (c *uuidCodec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		id, ok := v.(uuid.UUID)
		if !ok {
			return wireerr.Newf(wireerr.KindCoercionError, "UUID codec: expected uuid.UUID, got %T", v)
		}
		var b [16]byte
		for j := 0; j < 8; j++ {
			b[j] = id[7-j]
			b[8+j] = id[15-j]
		}
		w.Write(b[:])
	}
	return nil
}

func (c *uuidCodec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	out := make([]uuid.UUID, rows)
	for i := range out {
		b, err := r.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		for j := 0; j < 8; j++ {
			out[i][j] = b[7-j]
			out[i][8+j] = b[15-j]
		}
	}
	return &column.Typed[uuid.UUID]{Expr: c.expr, Data: out}, nil
}

func (c *uuidCodec) FromValues(values []column.Value) (column.Column, error) {
	out := make([]uuid.UUID, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case uuid.UUID:
			out[i] = t
		case string:
			id, err := uuid.Parse(t)
			if err != nil {
				return nil, wireerr.Newf(wireerr.KindCoercionError, "UUID codec: %v", err)
			}
			out[i] = id
		default:
			return nil, wireerr.Newf(wireerr.KindCoercionError, "UUID codec: cannot coerce %T", v)
		}
	}
	return &column.Typed[uuid.UUID]{Expr: c.expr, Data: out}, nil
}

// ipv4Codec handles IPv4: 4 raw bytes, network byte order, surfaced as
// net.IP (4-byte form).
type ipv4Codec struct{ expr *typeexpr.Expr }

func (c *ipv4Codec) TypeExpr() *typeexpr.Expr                        { return c.expr }
func (c *ipv4Codec) EstimateSize(rows uint64) uint64                 { return rows * 4 }
func (c *ipv4Codec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *ipv4Codec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }
func (c *ipv4Codec) ZeroValue() column.Value                        { return net.IPv4zero }

func (c *ipv4Codec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		ip, err := coerceIP(v, net.IPv4len)
		if err != nil {
			return err
		}
		w.Write(ip)
	}
	return nil
}

func (c *ipv4Codec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	out := make([]net.IP, rows)
	for i := range out {
		b, err := r.CopyBytes(net.IPv4len)
		if err != nil {
			return nil, err
		}
		out[i] = net.IP(b)
	}
	return &column.Typed[net.IP]{Expr: c.expr, Data: out}, nil
}

func (c *ipv4Codec) FromValues(values []column.Value) (column.Column, error) {
	out := make([]net.IP, len(values))
	for i, v := range values {
		ip, err := coerceIP(v, net.IPv4len)
		if err != nil {
			return nil, err
		}
		out[i] = ip
	}
	return &column.Typed[net.IP]{Expr: c.expr, Data: out}, nil
}

// ipv6Codec handles IPv6: 16 raw bytes, network byte order.
type ipv6Codec struct{ expr *typeexpr.Expr }

func (c *ipv6Codec) TypeExpr() *typeexpr.Expr                        { return c.expr }
func (c *ipv6Codec) EstimateSize(rows uint64) uint64                 { return rows * 16 }
func (c *ipv6Codec) WritePrefix(*binary.Writer, column.Column) error { return nil }
func (c *ipv6Codec) ReadPrefix(*binary.Reader) (PrefixState, error)  { return nil, nil }
func (c *ipv6Codec) ZeroValue() column.Value                        { return net.IPv6zero }

func (c *ipv6Codec) Encode(w *binary.Writer, col column.Column) error {
	n := col.Len()
	for i := uint64(0); i < n; i++ {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		ip, err := coerceIP(v, net.IPv6len)
		if err != nil {
			return err
		}
		w.Write(ip)
	}
	return nil
}

func (c *ipv6Codec) Decode(r *binary.Reader, rows uint64, _ PrefixState) (column.Column, error) {
	out := make([]net.IP, rows)
	for i := range out {
		b, err := r.CopyBytes(net.IPv6len)
		if err != nil {
			return nil, err
		}
		out[i] = net.IP(b)
	}
	return &column.Typed[net.IP]{Expr: c.expr, Data: out}, nil
}

func (c *ipv6Codec) FromValues(values []column.Value) (column.Column, error) {
	out := make([]net.IP, len(values))
	for i, v := range values {
		ip, err := coerceIP(v, net.IPv6len)
		if err != nil {
			return nil, err
		}
		out[i] = ip
	}
	return &column.Typed[net.IP]{Expr: c.expr, Data: out}, nil
}

func coerceIP(v column.Value, width int) (net.IP, error) {
	switch t := v.(type) {
	case net.IP:
		if width == net.IPv4len {
			if v4 := t.To4(); v4 != nil {
				return v4, nil
			}
			return nil, wireerr.Newf(wireerr.KindCoercionError, "IPv4 codec: %v is not an IPv4 address", t)
		}
		if v16 := t.To16(); v16 != nil {
			return v16, nil
		}
		return nil, wireerr.Newf(wireerr.KindCoercionError, "IPv6 codec: %v is not convertible to 16 bytes", t)
	case string:
		ip := net.ParseIP(t)
		if ip == nil {
			return nil, wireerr.Newf(wireerr.KindCoercionError, "cannot parse %q as an IP address", t)
		}
		return coerceIP(ip, width)
	default:
		return nil, wireerr.Newf(wireerr.KindCoercionError, "cannot coerce %T to an IP address", v)
	}
}
