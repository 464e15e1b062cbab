// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "github.com/solidcoredata/nativewire/typeexpr"

// KV is one key-value pair of a Map row, used when the row is rendered
// as an ordered sequence rather than a hash-style mapping.
type KV struct {
	Key   Value
	Value Value
}

// Map has the same physical shape as Array(Tuple(K,V)): offsets, a keys
// column, and a values column. HashStyle selects the row rendering:
// false (the Go zero value) yields an ordered []KV preserving duplicate
// keys — spec.md's documented conformant default — true yields a
// hash-style map[string]Value keyed by a best-effort string form of the
// key (spec.md's "render hint" opt-in).
type Map struct {
	Expr      *typeexpr.Expr
	Keys      Column
	Values    Column
	Offsets   []uint64
	HashStyle bool
}

func (c *Map) Len() uint64 { return uint64(len(c.Offsets)) }
func (c *Map) Type() *typeexpr.Expr { return c.Expr }

func (c *Map) Bounds(i uint64) (start, end uint64, err error) {
	n := uint64(len(c.Offsets))
	if i >= n {
		return 0, 0, outOfRange(i, n)
	}
	start = 0
	if i > 0 {
		start = c.Offsets[i-1]
	}
	end = c.Offsets[i]
	return start, end, nil
}

func (c *Map) Get(i uint64) (Value, error) {
	start, end, err := c.Bounds(i)
	if err != nil {
		return nil, err
	}
	if !c.HashStyle {
		out := make([]KV, 0, end-start)
		for j := start; j < end; j++ {
			k, err := c.Keys.Get(j)
			if err != nil {
				return nil, err
			}
			v, err := c.Values.Get(j)
			if err != nil {
				return nil, err
			}
			out = append(out, KV{Key: k, Value: v})
		}
		return out, nil
	}
	out := make(map[string]Value, end-start)
	for j := start; j < end; j++ {
		k, err := c.Keys.Get(j)
		if err != nil {
			return nil, err
		}
		v, err := c.Values.Get(j)
		if err != nil {
			return nil, err
		}
		// Hash-style rendering silently drops duplicate keys, matching
		// spec.md §9's note on the historical default.
		out[mapKeyString(k)] = v
	}
	return out, nil
}

func mapKeyString(v Value) string {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return toStringFallback(t)
	}
}
