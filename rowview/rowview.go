// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rowview offers a row-oriented view over a columnar Batch
// without copying column data: field access performs a name lookup then
// a single Column.Get call, per spec.md §4.J. It generalizes the
// teacher's Row/Table pair in ts/ts.go, which offered the same kind of
// lazy field access over a fixed control-table shape.
package rowview

import (
	"math/big"
	"strconv"

	"github.com/solidcoredata/nativewire/column"
	"github.com/solidcoredata/nativewire/typeexpr"
	"github.com/solidcoredata/nativewire/wireerr"
)

// ColumnDef names one column of a Batch's schema.
type ColumnDef struct {
	Name string
	Type *typeexpr.Expr
}

// Batch is a record batch: a stable schema plus the decoded column data
// for it, kept separate per SPEC_FULL.md §3 so a schema-only block can be
// compared against a later data-bearing block for the same query.
type Batch struct {
	Schema   []ColumnDef
	Data     []column.Column
	RowCount uint64

	// BigIntAsString converts host big-integers (Int64/UInt64 and the
	// Int128/256 family) to decimal strings at materialization time, for
	// downstream systems that cannot represent them, per spec.md §4.J.
	BigIntAsString bool

	nameIndex map[string]int
}

// NewBatch builds a Batch and its name→index lookup table. RowCount is
// taken from the first column if data is non-empty, else 0 (an
// end-of-stream or empty-schema batch).
func NewBatch(schema []ColumnDef, data []column.Column) *Batch {
	b := &Batch{Schema: schema, Data: data}
	if len(data) > 0 {
		b.RowCount = data[0].Len()
	}
	b.nameIndex = make(map[string]int, len(schema))
	for i, cd := range schema {
		b.nameIndex[cd.Name] = i
	}
	return b
}

func (b *Batch) Len() uint64  { return b.RowCount }
func (b *Batch) NumCols() int { return len(b.Schema) }

// ColumnNames returns the schema's column names in wire order.
func (b *Batch) ColumnNames() []string {
	names := make([]string, len(b.Schema))
	for i, cd := range b.Schema {
		names[i] = cd.Name
	}
	return names
}

// Column returns the named column's data and whether it was found.
func (b *Batch) Column(name string) (column.Column, bool) {
	idx, ok := b.nameIndex[name]
	if !ok {
		return nil, false
	}
	return b.Data[idx], true
}

// ColumnAt returns the column at wire position i.
func (b *Batch) ColumnAt(i int) (column.Column, error) {
	if i < 0 || i >= len(b.Data) {
		return nil, wireerr.Newf(wireerr.KindRangeError, "column index %d out of range [0,%d)", i, len(b.Data))
	}
	return b.Data[i], nil
}

// At fetches the value at (row, col) by column name.
func (b *Batch) At(row uint64, col string) (column.Value, error) {
	c, ok := b.Column(col)
	if !ok {
		return nil, wireerr.Newf(wireerr.KindRangeError, "no such column %q", col)
	}
	v, err := c.Get(row)
	if err != nil {
		return nil, err
	}
	return b.materialize(v), nil
}

// Row returns a lazy row proxy over row i. Field access resolves a
// name→index lookup then a single Column.Get call; no data is copied
// until ToObject/ToArray is called.
func (b *Batch) Row(i uint64) Row {
	return Row{batch: b, index: i}
}

// Rows returns every row as a lazy proxy, in order. Each element is a
// distinct row object safe to collect; for hot loops, prefer iterating
// columns directly via Batch.ColumnAt and Column.Get.
func (b *Batch) Rows() []Row {
	rows := make([]Row, b.RowCount)
	for i := range rows {
		rows[i] = b.Row(uint64(i))
	}
	return rows
}

// materialize applies the BigIntAsString option to v if it is a host
// big-integer type.
func (b *Batch) materialize(v column.Value) column.Value {
	if !b.BigIntAsString {
		return v
	}
	switch t := v.(type) {
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case *big.Int:
		return t.String()
	default:
		return v
	}
}

// Row is a lazy proxy over one row of a Batch.
type Row struct {
	batch *Batch
	index uint64
}

// Get returns the value of the named column for this row.
func (r Row) Get(name string) (column.Value, error) {
	return r.batch.At(r.index, name)
}

// GetAt returns the value of the column at wire position i for this row.
func (r Row) GetAt(i int) (column.Value, error) {
	c, err := r.batch.ColumnAt(i)
	if err != nil {
		return nil, err
	}
	v, err := c.Get(r.index)
	if err != nil {
		return nil, err
	}
	return r.batch.materialize(v), nil
}

// ToObject materializes the row as a name→value map.
func (r Row) ToObject() (map[string]column.Value, error) {
	out := make(map[string]column.Value, len(r.batch.Schema))
	for _, cd := range r.batch.Schema {
		v, err := r.Get(cd.Name)
		if err != nil {
			return nil, err
		}
		out[cd.Name] = v
	}
	return out, nil
}

// ToArray materializes the row as a positional slice in wire order.
func (r Row) ToArray() ([]column.Value, error) {
	out := make([]column.Value, len(r.batch.Schema))
	for i := range r.batch.Schema {
		v, err := r.GetAt(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// VariantObject is the legacy {type, value} rendering of a Variant or
// Dynamic row, offered as an adapter over the canonical column.Tagged
// shape (spec.md §9's resolved Open Question).
type VariantObject struct {
	Type  string
	Value column.Value
}

// VariantAsObject adapts the named column's row i, which must be a
// *column.Variant or *column.Dynamic, to the legacy {type, value} object
// shape for consumers that have not migrated to the Tagged row shape.
func (r Row) VariantAsObject(name string) (VariantObject, error) {
	c, ok := r.batch.Column(name)
	if !ok {
		return VariantObject{}, wireerr.Newf(wireerr.KindRangeError, "no such column %q", name)
	}
	switch vc := c.(type) {
	case *column.Variant:
		tagged, err := vc.GetTagged(r.index)
		if err != nil {
			return VariantObject{}, err
		}
		if tagged.Discriminator < 0 {
			return VariantObject{}, nil
		}
		children := vc.Type().Args
		typ := ""
		if tagged.Discriminator < len(children) {
			typ = children[tagged.Discriminator].String()
		}
		return VariantObject{Type: typ, Value: tagged.Value}, nil
	case *column.Dynamic:
		tagged, typ, err := vc.GetTagged(r.index)
		if err != nil {
			return VariantObject{}, err
		}
		if tagged.Discriminator < 0 {
			return VariantObject{}, nil
		}
		return VariantObject{Type: typ.String(), Value: tagged.Value}, nil
	default:
		return VariantObject{}, wireerr.Newf(wireerr.KindCoercionError, "column %q is %T, not Variant or Dynamic", name, c)
	}
}
