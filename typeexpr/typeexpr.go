// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package typeexpr parses the database's type-string grammar into a tree
// and renders trees back to their canonical string form. It generalizes
// the teacher's table/column definition grammar (ts/ts.go's doc comment,
// `name Type`) into a real recursive, parametric type grammar.
package typeexpr

// Kind names one of the fixed scalar or parametric type constructors.
type Kind string

const (
	KindInt8    Kind = "Int8"
	KindInt16   Kind = "Int16"
	KindInt32   Kind = "Int32"
	KindInt64   Kind = "Int64"
	KindInt128  Kind = "Int128"
	KindInt256  Kind = "Int256"
	KindUInt8   Kind = "UInt8"
	KindUInt16  Kind = "UInt16"
	KindUInt32  Kind = "UInt32"
	KindUInt64  Kind = "UInt64"
	KindUInt128 Kind = "UInt128"
	KindUInt256 Kind = "UInt256"
	KindFloat32 Kind = "Float32"
	KindFloat64 Kind = "Float64"
	KindBool    Kind = "Bool"
	KindString  Kind = "String"

	KindDate       Kind = "Date"
	KindDate32     Kind = "Date32"
	KindDateTime   Kind = "DateTime"
	KindDateTime64 Kind = "DateTime64"

	KindUUID Kind = "UUID"
	KindIPv4 Kind = "IPv4"
	KindIPv6 Kind = "IPv6"

	KindFixedString Kind = "FixedString"

	KindDecimal   Kind = "Decimal"
	KindDecimal32 Kind = "Decimal32"
	KindDecimal64 Kind = "Decimal64"
	KindDecimal128 Kind = "Decimal128"
	KindDecimal256 Kind = "Decimal256"

	KindEnum8  Kind = "Enum8"
	KindEnum16 Kind = "Enum16"

	KindArray         Kind = "Array"
	KindNullable      Kind = "Nullable"
	KindLowCardinality Kind = "LowCardinality"
	KindMap           Kind = "Map"
	KindTuple         Kind = "Tuple"
	KindNested        Kind = "Nested"
	KindVariant       Kind = "Variant"
	KindDynamic       Kind = "Dynamic"
	KindJSON          Kind = "JSON"

	// KindUnknownScalar is the fallback node for type strings the grammar
	// doesn't recognize, routed to the alternate row-oriented encoder
	// (spec.md §4.F "Alternate encoder fallback").
	KindUnknownScalar Kind = "__unknown__"
)

// scalarKinds is the fixed set of leaf (non-parametric, non-composite)
// type names, per spec.md's Glossary.
var scalarKinds = map[Kind]bool{
	KindInt8: true, KindInt16: true, KindInt32: true, KindInt64: true,
	KindInt128: true, KindInt256: true,
	KindUInt8: true, KindUInt16: true, KindUInt32: true, KindUInt64: true,
	KindUInt128: true, KindUInt256: true,
	KindFloat32: true, KindFloat64: true,
	KindBool: true, KindString: true,
	KindDate: true, KindDate32: true, KindDateTime: true,
	KindUUID: true, KindIPv4: true, KindIPv6: true,
}

// EnumValue is one name=value pair of an Enum8/Enum16 definition.
type EnumValue struct {
	Name  string
	Value int64
}

// Element is one member of a Tuple or Nested type: either unnamed
// (Name == "") or named.
type Element struct {
	Name string
	Type *Expr
}

// JSONPath is one optional typed-path declaration inside a JSON(...)
// type string.
type JSONPath struct {
	Name string
	Type *Expr
}

// Expr is a node in the parsed type tree. Leaves are scalars; internal
// nodes are parameterized by child types (Args), numeric arguments
// (Precision/Scale/Length), an enum's name<->value map (Enum), named or
// positional child elements (Elements), or JSON-specific settings.
type Expr struct {
	Kind Kind

	// Args holds child types for Array/Nullable/LowCardinality (1),
	// Map (2), Variant (N).
	Args []*Expr

	// Elements holds Tuple/Nested members, each optionally named. Mixed
	// naming (some named, some not) is rejected by the parser.
	Elements []Element
	Named    bool // true if Elements carry names

	// FixedString(N), DateTime64(P), Decimal(P,S).
	Length    int // FixedString N
	Precision int // DateTime64 / Decimal P
	Scale     int // Decimal S
	Timezone  string

	// Enum8/Enum16.
	Enum []EnumValue

	// JSON(...).
	JSONPaths       []JSONPath
	MaxDynamicPaths int // -1 if unset
	HasMaxDynamicPaths bool

	// Raw is the original, as-written type string for KindUnknownScalar
	// nodes, preserved verbatim for the alternate-encoder fallback.
	Raw string
}

// IsScalar reports whether e is a fixed (non-parametric) leaf type.
func (e *Expr) IsScalar() bool {
	return scalarKinds[e.Kind]
}

// Child returns Args[0], or nil if Args is empty. Convenience for single-
// child nodes (Array, Nullable, LowCardinality).
func (e *Expr) Child() *Expr {
	if len(e.Args) == 0 {
		return nil
	}
	return e.Args[0]
}

// DecimalByteWidth returns the wire width in bytes for a Decimal(P,S)
// node, selecting width by precision per spec.md §4.C: P<=9 -> 4,
// P<=18 -> 8, P<=38 -> 16, else 32.
func DecimalByteWidth(precision int) int {
	switch {
	case precision <= 9:
		return 4
	case precision <= 18:
		return 8
	case precision <= 38:
		return 16
	default:
		return 32
	}
}
