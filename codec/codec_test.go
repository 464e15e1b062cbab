// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
)

func roundTrip(t *testing.T, registry *Registry, typeString string, values []column.Value) []column.Value {
	t.Helper()
	ch, err := registry.Get(typeString)
	require.NoError(t, err)

	col, err := ch.FromValues(values)
	require.NoError(t, err)

	w := binary.NewWriter(128)
	require.NoError(t, ch.WritePrefix(w, col))
	require.NoError(t, ch.Encode(w, col))

	r := binary.NewReader(w.Bytes())
	prefix, err := ch.ReadPrefix(r)
	require.NoError(t, err)
	got, err := ch.Decode(r, uint64(len(values)), prefix)
	require.NoError(t, err)

	out := make([]column.Value, len(values))
	for i := range out {
		out[i], err = got.Get(uint64(i))
		require.NoError(t, err)
	}
	return out
}

func TestScalarCodecRoundTrips(t *testing.T) {
	registry := NewRegistry(Options{})

	t.Run("Int64", func(t *testing.T) {
		out := roundTrip(t, registry, "Int64", []column.Value{int64(-5), int64(0), int64(42)})
		require.Equal(t, []column.Value{int64(-5), int64(0), int64(42)}, out)
	})

	t.Run("String", func(t *testing.T) {
		out := roundTrip(t, registry, "String", []column.Value{[]byte("hello"), []byte("")})
		require.Equal(t, []column.Value{[]byte("hello"), []byte("")}, out)
	})

	t.Run("FixedString", func(t *testing.T) {
		out := roundTrip(t, registry, "FixedString(4)", []column.Value{[]byte("ab")})
		require.Equal(t, []byte("ab\x00\x00"), out[0])
	})

	t.Run("UUID", func(t *testing.T) {
		id := uuid.New()
		out := roundTrip(t, registry, "UUID", []column.Value{id})
		require.Equal(t, id, out[0])
	})

	t.Run("Decimal", func(t *testing.T) {
		d := decimal.RequireFromString("123.45")
		out := roundTrip(t, registry, "Decimal(18,4)", []column.Value{d})
		require.True(t, d.Equal(out[0].(decimal.Decimal)))
	})

	t.Run("Int128", func(t *testing.T) {
		n := big.NewInt(-123456789)
		out := roundTrip(t, registry, "Int128", []column.Value{n})
		require.Equal(t, 0, n.Cmp(out[0].(*big.Int)))
	})

	t.Run("Enum8", func(t *testing.T) {
		out := roundTrip(t, registry, "Enum8('a' = 1, 'b' = 2)", []column.Value{"b", "a"})
		require.Equal(t, []column.Value{"b", "a"}, out)
	})

	t.Run("Enum8/null defaults to minimum value", func(t *testing.T) {
		out := roundTrip(t, registry, "Enum8('b' = 2, 'a' = 1, 'c' = 3)", []column.Value{nil, "c"})
		require.Equal(t, []column.Value{"a", "c"}, out)
	})
}

func TestCompositeCodecRoundTrips(t *testing.T) {
	registry := NewRegistry(Options{})

	t.Run("Array", func(t *testing.T) {
		out := roundTrip(t, registry, "Array(Int32)", []column.Value{
			[]column.Value{int32(1), int32(2)},
			[]column.Value{},
			[]column.Value{int32(3)},
		})
		require.Equal(t, []column.Value{int32(1), int32(2)}, out[0])
		require.Empty(t, out[1])
		require.Equal(t, []column.Value{int32(3)}, out[2])
	})

	t.Run("Array/decreasing offsets rejected", func(t *testing.T) {
		ch, err := registry.Get("Array(Int32)")
		require.NoError(t, err)
		prefix, err := ch.ReadPrefix(nil)
		require.NoError(t, err)

		w := binary.NewWriter(32)
		w.WriteU64LE(5)
		w.WriteU64LE(2) // decreases, must be rejected before it's used as a length
		r := binary.NewReader(w.Bytes())
		_, err = ch.Decode(r, 2, prefix)
		require.Error(t, err)
	})

	t.Run("Map/decreasing offsets rejected", func(t *testing.T) {
		registry := NewRegistry(Options{})
		ch, err := registry.Get("Map(String, UInt64)")
		require.NoError(t, err)
		prefix, err := ch.ReadPrefix(binary.NewReader(nil))
		require.NoError(t, err)

		w := binary.NewWriter(32)
		w.WriteU64LE(3)
		w.WriteU64LE(1) // decreases
		r := binary.NewReader(w.Bytes())
		_, err = ch.Decode(r, 2, prefix)
		require.Error(t, err)
	})

	t.Run("Nullable", func(t *testing.T) {
		out := roundTrip(t, registry, "Nullable(Int32)", []column.Value{int32(7), nil, int32(9)})
		require.Equal(t, []column.Value{int32(7), nil, int32(9)}, out)
	})

	t.Run("LowCardinality", func(t *testing.T) {
		out := roundTrip(t, registry, "LowCardinality(String)", []column.Value{
			[]byte("x"), []byte("y"), []byte("x"), []byte("x"),
		})
		require.Equal(t, []column.Value{[]byte("x"), []byte("y"), []byte("x"), []byte("x")}, out)
	})

	t.Run("Tuple", func(t *testing.T) {
		out := roundTrip(t, registry, "Tuple(UInt64, String)", []column.Value{
			[]column.Value{uint64(1), []byte("a")},
		})
		require.Equal(t, []column.Value{uint64(1), []byte("a")}, out[0])
	})

	t.Run("Map/default is ordered pairs", func(t *testing.T) {
		registry := NewRegistry(Options{})
		out := roundTrip(t, registry, "Map(String, UInt64)", []column.Value{
			[]column.KV{{Key: []byte("a"), Value: uint64(1)}, {Key: []byte("b"), Value: uint64(2)}},
		})
		require.Equal(t, []column.KV{{Key: []byte("a"), Value: uint64(1)}, {Key: []byte("b"), Value: uint64(2)}}, out[0])
	})

	t.Run("Map/MapAsArray opts into hash style", func(t *testing.T) {
		registry := NewRegistry(Options{MapAsArray: true})
		out := roundTrip(t, registry, "Map(String, UInt64)", []column.Value{
			[]column.KV{{Key: []byte("a"), Value: uint64(1)}, {Key: []byte("b"), Value: uint64(2)}},
		})
		require.Equal(t, map[string]column.Value{"a": uint64(1), "b": uint64(2)}, out[0])
	})

	t.Run("JSON/paths are sorted", func(t *testing.T) {
		ch, err := registry.Get("JSON")
		require.NoError(t, err)
		intType, err := typeexpr.Parse("Int64")
		require.NoError(t, err)

		col, err := ch.FromValues([]column.Value{
			map[string]column.Value{
				"z": column.DynamicValue{Type: intType, Value: int64(1)},
				"a": column.DynamicValue{Type: intType, Value: int64(2)},
				"m": column.DynamicValue{Type: intType, Value: int64(3)},
			},
		})
		require.NoError(t, err)

		jc, ok := col.(*column.JSON)
		require.True(t, ok)
		require.Equal(t, []string{"a", "m", "z"}, jc.Paths)
	})

	t.Run("Variant", func(t *testing.T) {
		out := roundTrip(t, registry, "Variant(String, UInt64)", []column.Value{
			column.Tagged{Discriminator: 0, Value: []byte("hi")},
			column.Tagged{Discriminator: 1, Value: uint64(9)},
			nil,
		})
		require.Equal(t, []byte("hi"), out[0])
		require.Equal(t, uint64(9), out[1])
		require.Nil(t, out[2])
	})
}
