// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rowformat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/nativewire/binary"
	"github.com/solidcoredata/nativewire/codec"
	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/rowview"
	"github.com/solidcoredata/nativewire/typeexpr"
)

func TestEncodeDecodeScalarsWithTypes(t *testing.T) {
	registry := codec.NewRegistry(codec.Options{})
	idType, err := typeexpr.Parse("Int64")
	require.NoError(t, err)
	nameType, err := typeexpr.Parse("String")
	require.NoError(t, err)
	schema := []rowview.ColumnDef{{Name: "id", Type: idType}, {Name: "name", Type: nameType}}
	rows := [][]column.Value{
		{int64(1), []byte("alice")},
		{int64(2), []byte("bob")},
	}

	w := binary.NewWriter(128)
	require.NoError(t, Encode(w, registry, schema, rows, Options{Flavor: WithNamesAndTypes}))

	r := binary.NewReader(w.Bytes())
	gotSchema, gotRows, err := Decode(r, registry, Options{Flavor: WithNamesAndTypes}, nil)
	require.NoError(t, err)
	require.Equal(t, "id", gotSchema[0].Name)
	require.Equal(t, "name", gotSchema[1].Name)
	require.Equal(t, rows, gotRows)
}

func TestEncodeDecodeNamesOnlyNeedsKnownTypes(t *testing.T) {
	registry := codec.NewRegistry(codec.Options{})
	idType, err := typeexpr.Parse("UInt32")
	require.NoError(t, err)
	schema := []rowview.ColumnDef{{Name: "id", Type: idType}}
	rows := [][]column.Value{{uint32(10)}, {uint32(20)}}

	w := binary.NewWriter(64)
	require.NoError(t, Encode(w, registry, schema, rows, Options{Flavor: NamesOnly}))

	r := binary.NewReader(w.Bytes())
	_, gotRows, err := Decode(r, registry, Options{Flavor: NamesOnly}, []*typeexpr.Expr{idType})
	require.NoError(t, err)
	require.Equal(t, rows, gotRows)
}

func TestEncodeDecodeArrayAndNullable(t *testing.T) {
	registry := codec.NewRegistry(codec.Options{})
	colType, err := typeexpr.Parse("Array(Nullable(Int32))")
	require.NoError(t, err)
	schema := []rowview.ColumnDef{{Name: "vals", Type: colType}}
	rows := [][]column.Value{
		{[]column.Value{int32(1), nil, int32(3)}},
		{[]column.Value{}},
	}

	w := binary.NewWriter(128)
	require.NoError(t, Encode(w, registry, schema, rows, Options{Flavor: WithNamesAndTypes}))

	r := binary.NewReader(w.Bytes())
	_, gotRows, err := Decode(r, registry, Options{Flavor: WithNamesAndTypes}, nil)
	require.NoError(t, err)
	require.Equal(t, rows, gotRows)
}

func TestEncodeDecodeJSON(t *testing.T) {
	registry := codec.NewRegistry(codec.Options{})
	jsonType, err := typeexpr.Parse("JSON")
	require.NoError(t, err)
	schema := []rowview.ColumnDef{{Name: "doc", Type: jsonType}}
	strType, err := typeexpr.Parse("String")
	require.NoError(t, err)
	rows := [][]column.Value{
		{map[string]column.Value{
			"name": column.DynamicValue{Type: strType, Value: []byte("x")},
		}},
	}

	w := binary.NewWriter(64)
	require.NoError(t, Encode(w, registry, schema, rows, Options{Flavor: WithNamesAndTypes}))

	r := binary.NewReader(w.Bytes())
	_, gotRows, err := Decode(r, registry, Options{Flavor: WithNamesAndTypes}, nil)
	require.NoError(t, err)
	require.Equal(t, rows, gotRows)
}
