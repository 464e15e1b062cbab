// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rowview

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
)

func TestBatchRowAccess(t *testing.T) {
	idType, err := typeexpr.Parse("Int64")
	require.NoError(t, err)
	nameType, err := typeexpr.Parse("String")
	require.NoError(t, err)

	schema := []ColumnDef{{Name: "id", Type: idType}, {Name: "name", Type: nameType}}
	data := []column.Column{
		&column.Numeric[int64]{Expr: idType, Data: []int64{1, 2}},
		&column.String{Expr: nameType, Data: []byte("abbb"), Offsets: []uint64{1, 4}},
	}
	batch := NewBatch(schema, data)

	require.Equal(t, uint64(2), batch.Len())
	require.Equal(t, []string{"id", "name"}, batch.ColumnNames())

	row := batch.Row(1)
	v, err := row.Get("name")
	require.NoError(t, err)
	require.Equal(t, []byte("bbb"), v)

	obj, err := row.ToObject()
	require.NoError(t, err)
	require.Equal(t, int64(2), obj["id"])

	arr, err := row.ToArray()
	require.NoError(t, err)
	require.Equal(t, int64(2), arr[0])
}

func TestBatchBigIntAsString(t *testing.T) {
	idType, err := typeexpr.Parse("Int64")
	require.NoError(t, err)
	schema := []ColumnDef{{Name: "id", Type: idType}}
	data := []column.Column{&column.Numeric[int64]{Expr: idType, Data: []int64{42}}}
	batch := NewBatch(schema, data)
	batch.BigIntAsString = true

	v, err := batch.At(0, "id")
	require.NoError(t, err)
	require.Equal(t, "42", v)
}

func TestVariantAsObject(t *testing.T) {
	variantType, err := typeexpr.Parse("Variant(String, UInt64)")
	require.NoError(t, err)
	schema := []ColumnDef{{Name: "v", Type: variantType}}
	vc := column.NewVariant(variantType, []byte{0}, []column.Column{
		&column.String{Expr: variantType.Args[0], Data: []byte("hi"), Offsets: []uint64{2}},
		&column.Numeric[uint64]{Expr: variantType.Args[1], Data: nil},
	})
	batch := NewBatch(schema, []column.Column{vc})

	obj, err := batch.Row(0).VariantAsObject("v")
	require.NoError(t, err)
	require.Equal(t, "String", obj.Type)
	require.Equal(t, []byte("hi"), obj.Value)
}
