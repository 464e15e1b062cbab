// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typeexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"UInt32",
		"String",
		"Array(Int32)",
		"Nullable(String)",
		"LowCardinality(Nullable(String))",
		"Array(Nullable(LowCardinality(String)))",
		"Map(String, UInt64)",
		"Tuple(UInt64, String)",
		"Tuple(k UInt64, v Array(Int32))",
		"Nested(a UInt64, b String)",
		"Variant(String, UInt64)",
		"FixedString(16)",
		"DateTime64(3)",
		"DateTime64(6, 'UTC')",
		"Decimal(18, 4)",
		"Decimal32(9, 2)",
		"Decimal256(76, 10)",
		"Enum8('a' = 1, 'b' = 2)",
		"Enum16('x\\'y' = -1)",
		"JSON",
		"JSON(a Int64, max_dynamic_paths=10)",
	}
	for _, c := range cases {
		c := c
		t.Run(c, func(t *testing.T) {
			e, err := Parse(c)
			require.NoError(t, err)
			require.Equal(t, c, e.String())
		})
	}
}

func TestParseNestedParametric(t *testing.T) {
	e, err := Parse("Map(String, Tuple(k UInt64, v Array(Nullable(String))))")
	require.NoError(t, err)
	require.Equal(t, KindMap, e.Kind)
	require.Equal(t, KindString, e.Args[0].Kind)
	tup := e.Args[1]
	require.Equal(t, KindTuple, tup.Kind)
	require.True(t, tup.Named)
	require.Equal(t, "k", tup.Elements[0].Name)
	require.Equal(t, KindArray, tup.Elements[1].Type.Kind)
}

func TestParseDecimalWidthSelection(t *testing.T) {
	cases := []struct {
		precision int
		want      Kind
	}{
		{9, KindDecimal32},
		{18, KindDecimal64},
		{38, KindDecimal128},
		{76, KindDecimal256},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Kind(decimalKindForWidth(DecimalByteWidth(c.precision))))
	}
}

func TestParseRejectsMixedTupleNaming(t *testing.T) {
	_, err := Parse("Tuple(UInt64, v String)")
	require.Error(t, err)
}

func TestParseRejectsEmptyEnum(t *testing.T) {
	_, err := Parse("Enum8()")
	require.Error(t, err)
}

func TestParseRejectsDuplicateEnumName(t *testing.T) {
	_, err := Parse("Enum8('a' = 1, 'a' = 2)")
	require.Error(t, err)
}

func TestParseUnknownFallsBackToRaw(t *testing.T) {
	e, err := Parse("SomethingExotic(1, 2)")
	require.NoError(t, err)
	require.Equal(t, KindUnknownScalar, e.Kind)
	require.Equal(t, "SomethingExotic(1, 2)", e.Raw)
}
