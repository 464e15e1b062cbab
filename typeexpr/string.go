// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typeexpr

import (
	"strconv"
	"strings"
)

// String renders e back to its canonical type string: whitespace
// collapsed, single-quoted enum names and timezones re-escaped.
func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	if e.Kind == KindUnknownScalar {
		b.WriteString(e.Raw)
		return
	}
	if e.IsScalar() {
		b.WriteString(string(e.Kind))
		return
	}
	switch e.Kind {
	case KindArray, KindNullable, KindLowCardinality:
		b.WriteString(string(e.Kind))
		b.WriteByte('(')
		e.Args[0].write(b)
		b.WriteByte(')')
	case KindMap:
		b.WriteString("Map(")
		e.Args[0].write(b)
		b.WriteString(", ")
		e.Args[1].write(b)
		b.WriteByte(')')
	case KindVariant:
		b.WriteString("Variant(")
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			a.write(b)
		}
		b.WriteByte(')')
	case KindTuple, KindNested:
		b.WriteString(string(e.Kind))
		b.WriteByte('(')
		for i, el := range e.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			if el.Name != "" {
				b.WriteString(el.Name)
				b.WriteByte(' ')
			}
			el.Type.write(b)
		}
		b.WriteByte(')')
	case KindFixedString:
		b.WriteString("FixedString(")
		b.WriteString(strconv.Itoa(e.Length))
		b.WriteByte(')')
	case KindDateTime64:
		b.WriteString("DateTime64(")
		b.WriteString(strconv.Itoa(e.Precision))
		if e.Timezone != "" {
			b.WriteString(", '")
			b.WriteString(escapeQuoted(e.Timezone))
			b.WriteString("'")
		}
		b.WriteByte(')')
	case KindDecimal32, KindDecimal64, KindDecimal128, KindDecimal256:
		b.WriteString(string(e.Kind))
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(e.Precision))
		b.WriteString(", ")
		b.WriteString(strconv.Itoa(e.Scale))
		b.WriteByte(')')
	case KindEnum8, KindEnum16:
		b.WriteString(string(e.Kind))
		b.WriteByte('(')
		for i, v := range e.Enum {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('\'')
			b.WriteString(escapeQuoted(v.Name))
			b.WriteString("' = ")
			b.WriteString(strconv.FormatInt(v.Value, 10))
		}
		b.WriteByte(')')
	case KindJSON:
		if len(e.JSONPaths) == 0 && !e.HasMaxDynamicPaths {
			b.WriteString("JSON")
			return
		}
		b.WriteString("JSON(")
		first := true
		for _, p := range e.JSONPaths {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(p.Name)
			b.WriteByte(' ')
			p.Type.write(b)
		}
		if e.HasMaxDynamicPaths {
			if !first {
				b.WriteString(", ")
			}
			b.WriteString("max_dynamic_paths=")
			b.WriteString(strconv.Itoa(e.MaxDynamicPaths))
		}
		b.WriteByte(')')
	default:
		b.WriteString(string(e.Kind))
	}
}

func escapeQuoted(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
