// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import (
	"sort"

	"github.com/solidcoredata/nativewire/typeexpr"
)

// JSON is a sorted list of path names plus a Dynamic column per path.
// Row reconstruction emits only paths whose per-row value is non-null,
// per spec.md §3.
type JSON struct {
	Expr    *typeexpr.Expr
	Paths   []string
	Columns []*Dynamic // parallel to Paths
	length  uint64
}

// NewJSON builds a JSON column; all per-path Dynamic columns must share
// the same row count. paths/columns are reordered into sorted-path order
// if the caller didn't already provide them that way.
func NewJSON(expr *typeexpr.Expr, paths []string, columns []*Dynamic) *JSON {
	idx := make([]int, len(paths))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return paths[idx[i]] < paths[idx[j]] })

	sortedPaths := make([]string, len(paths))
	sortedColumns := make([]*Dynamic, len(columns))
	for i, j := range idx {
		sortedPaths[i] = paths[j]
		sortedColumns[i] = columns[j]
	}

	var length uint64
	if len(sortedColumns) > 0 {
		length = sortedColumns[0].Len()
	}
	return &JSON{Expr: expr, Paths: sortedPaths, Columns: sortedColumns, length: length}
}

func (c *JSON) Len() uint64 { return c.length }
func (c *JSON) Type() *typeexpr.Expr { return c.Expr }

func (c *JSON) Get(i uint64) (Value, error) {
	if i >= c.length {
		return nil, outOfRange(i, c.length)
	}
	out := make(map[string]Value, len(c.Paths))
	for idx, path := range c.Paths {
		v, err := c.Columns[idx].Get(i)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		out[path] = v
	}
	return out, nil
}
