// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typeexpr

import (
	"strconv"
	"strings"

	"github.com/solidcoredata/nativewire/wireerr"
)

// Parse parses a canonical type string into an Expr tree. Unrecognized
// type strings fall back to a KindUnknownScalar leaf rather than failing,
// per spec.md §4.C ("unknown type strings fall back to a 'scalar via
// alternate encoder' node").
func Parse(s string) (*Expr, error) {
	p := &parser{src: s}
	p.skipSpace()
	e, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, grammarErrf(s, "unexpected trailing input at byte %d", p.pos)
	}
	return e, nil
}

type parser struct {
	src string
	pos int
}

func grammarErrf(typeString, format string, args ...interface{}) error {
	return wireerr.Newf(wireerr.KindGrammarError, format, args...).WithType(typeString)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// parseIdent reads a bare identifier: letters, digits, underscore. Used
// both for type names and for Tuple/Nested element names.
func (p *parser) parseIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// parseType parses one full type expression starting at the current
// position.
func (p *parser) parseType() (*Expr, error) {
	p.skipSpace()
	start := p.pos
	name := p.parseIdent()
	if name == "" {
		return nil, grammarErrf(p.src, "expected type name at byte %d", p.pos)
	}
	p.skipSpace()

	if p.peek() != '(' {
		return p.parseBareScalar(name, p.src[start:p.pos])
	}

	// Parametric form: Name(args...)
	argsSrc, err := p.readParenGroup()
	if err != nil {
		return nil, err
	}
	return p.parseParametric(name, argsSrc)
}

// parseBareScalar handles a type name with no parens: fixed scalars plus
// bare JSON (no settings).
func (p *parser) parseBareScalar(name, raw string) (*Expr, error) {
	if k, ok := scalarByName[name]; ok {
		return &Expr{Kind: k}, nil
	}
	if name == "JSON" {
		return &Expr{Kind: KindJSON}, nil
	}
	return &Expr{Kind: KindUnknownScalar, Raw: raw}, nil
}

var scalarByName = map[string]Kind{
	"Int8": KindInt8, "Int16": KindInt16, "Int32": KindInt32, "Int64": KindInt64,
	"Int128": KindInt128, "Int256": KindInt256,
	"UInt8": KindUInt8, "UInt16": KindUInt16, "UInt32": KindUInt32, "UInt64": KindUInt64,
	"UInt128": KindUInt128, "UInt256": KindUInt256,
	"Float32": KindFloat32, "Float64": KindFloat64,
	"Bool": KindBool, "String": KindString,
	"Date": KindDate, "Date32": KindDate32, "DateTime": KindDateTime,
	"UUID": KindUUID, "IPv4": KindIPv4, "IPv6": KindIPv6,
}

// readParenGroup consumes a balanced "(...)" starting at the current '('
// and returns its interior, leaving pos just past the closing ')'.
func (p *parser) readParenGroup() (string, error) {
	if p.peek() != '(' {
		return "", grammarErrf(p.src, "expected '(' at byte %d", p.pos)
	}
	start := p.pos + 1
	depth := 0
	inQuote := false
	i := p.pos
	for i < len(p.src) {
		c := p.src[i]
		switch {
		case inQuote:
			if c == '\\' && i+1 < len(p.src) {
				i++
			} else if c == '\'' {
				inQuote = false
			}
		case c == '\'':
			inQuote = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				p.pos = i + 1
				return p.src[start:i], nil
			}
		}
		i++
	}
	return "", grammarErrf(p.src, "unbalanced parentheses starting at byte %d", p.pos)
}

// splitArgsTopLevel splits s on commas at nesting depth 0, respecting
// parens and single-quoted strings.
func splitArgsTopLevel(s string) []string {
	var parts []string
	depth := 0
	inQuote := false
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			if c == '\\' && i+1 < len(s) {
				i++
			} else if c == '\'' {
				inQuote = false
			}
		case c == '\'':
			inQuote = true
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	parts = append(parts, s[last:])
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 && parts[0] == "" {
		return nil
	}
	return parts
}

func (p *parser) parseParametric(name, argsSrc string) (*Expr, error) {
	switch name {
	case "Array":
		return p.parseSingleChild(KindArray, argsSrc)
	case "Nullable":
		return p.parseSingleChild(KindNullable, argsSrc)
	case "LowCardinality":
		return p.parseSingleChild(KindLowCardinality, argsSrc)
	case "Map":
		return p.parseMap(argsSrc)
	case "Tuple":
		return p.parseTuple(KindTuple, argsSrc)
	case "Nested":
		return p.parseTuple(KindNested, argsSrc)
	case "Variant":
		return p.parseVariant(argsSrc)
	case "FixedString":
		return p.parseFixedString(argsSrc)
	case "DateTime64":
		return p.parseDateTime64(argsSrc)
	case "Decimal":
		return p.parseDecimal(argsSrc, 0)
	case "Decimal32":
		return p.parseDecimalFixed(argsSrc, 32)
	case "Decimal64":
		return p.parseDecimalFixed(argsSrc, 64)
	case "Decimal128":
		return p.parseDecimalFixed(argsSrc, 128)
	case "Decimal256":
		return p.parseDecimalFixed(argsSrc, 256)
	case "Enum8":
		return p.parseEnum(KindEnum8, argsSrc, -128, 127)
	case "Enum16":
		return p.parseEnum(KindEnum16, argsSrc, -32768, 32767)
	case "JSON":
		return p.parseJSON(argsSrc)
	default:
		return &Expr{Kind: KindUnknownScalar, Raw: name + "(" + argsSrc + ")"}, nil
	}
}

func (p *parser) parseSingleChild(k Kind, argsSrc string) (*Expr, error) {
	parts := splitArgsTopLevel(argsSrc)
	if len(parts) != 1 {
		return nil, grammarErrf(p.src, "%s requires exactly one type argument, got %d", k, len(parts))
	}
	child, err := Parse(parts[0])
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: k, Args: []*Expr{child}}, nil
}

func (p *parser) parseMap(argsSrc string) (*Expr, error) {
	parts := splitArgsTopLevel(argsSrc)
	if len(parts) != 2 {
		return nil, grammarErrf(p.src, "Map requires exactly two type arguments, got %d", len(parts))
	}
	k, err := Parse(parts[0])
	if err != nil {
		return nil, err
	}
	v, err := Parse(parts[1])
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: KindMap, Args: []*Expr{k, v}}, nil
}

func (p *parser) parseTuple(k Kind, argsSrc string) (*Expr, error) {
	parts := splitArgsTopLevel(argsSrc)
	if len(parts) == 0 {
		return nil, grammarErrf(p.src, "%s requires at least one element", k)
	}
	elems := make([]Element, 0, len(parts))
	namedCount := 0
	for _, part := range parts {
		name, typeStr, hasName := splitElement(part)
		t, err := Parse(typeStr)
		if err != nil {
			return nil, err
		}
		if hasName {
			namedCount++
		}
		elems = append(elems, Element{Name: name, Type: t})
	}
	if namedCount != 0 && namedCount != len(elems) {
		return nil, grammarErrf(p.src, "%s mixes named and unnamed elements", k)
	}
	named := namedCount == len(elems)
	if k == KindNested && !named {
		return nil, grammarErrf(p.src, "Nested requires all elements to be named")
	}
	return &Expr{Kind: k, Elements: elems, Named: named}, nil
}

// splitElement splits a Tuple/Nested member "ident Type" from "Type",
// distinguishing by whether the first token is a bare identifier
// immediately followed by whitespace and then more content that itself
// parses as a type name.
func splitElement(s string) (name, typeStr string, hasName bool) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			i++
			continue
		}
		break
	}
	if i == 0 || i == len(s) {
		return "", s, false
	}
	if s[i] != ' ' && s[i] != '\t' {
		return "", s, false
	}
	ident := s[:i]
	rest := strings.TrimLeft(s[i:], " \t")
	if rest == "" {
		return "", s, false
	}
	return ident, rest, true
}

func (p *parser) parseVariant(argsSrc string) (*Expr, error) {
	parts := splitArgsTopLevel(argsSrc)
	if len(parts) == 0 {
		return nil, grammarErrf(p.src, "Variant requires at least one type argument")
	}
	children := make([]*Expr, 0, len(parts))
	for _, part := range parts {
		t, err := Parse(part)
		if err != nil {
			return nil, err
		}
		children = append(children, t)
	}
	return &Expr{Kind: KindVariant, Args: children}, nil
}

func (p *parser) parseFixedString(argsSrc string) (*Expr, error) {
	n, err := strconv.Atoi(strings.TrimSpace(argsSrc))
	if err != nil || n < 1 {
		return nil, grammarErrf(p.src, "FixedString length must be a positive integer, got %q", argsSrc)
	}
	return &Expr{Kind: KindFixedString, Length: n}, nil
}

func (p *parser) parseDateTime64(argsSrc string) (*Expr, error) {
	parts := splitArgsTopLevel(argsSrc)
	if len(parts) < 1 || len(parts) > 2 {
		return nil, grammarErrf(p.src, "DateTime64 requires 1 or 2 arguments, got %d", len(parts))
	}
	prec, err := strconv.Atoi(parts[0])
	if err != nil || prec < 0 || prec > 9 {
		return nil, grammarErrf(p.src, "DateTime64 precision must be 0..9, got %q", parts[0])
	}
	tz := ""
	if len(parts) == 2 {
		tz, err = unquote(parts[1])
		if err != nil {
			return nil, grammarErrf(p.src, "DateTime64 timezone: %v", err)
		}
	}
	return &Expr{Kind: KindDateTime64, Precision: prec, Timezone: tz}, nil
}

func (p *parser) parseDecimal(argsSrc string, _ int) (*Expr, error) {
	parts := splitArgsTopLevel(argsSrc)
	if len(parts) != 2 {
		return nil, grammarErrf(p.src, "Decimal requires (precision, scale), got %d args", len(parts))
	}
	prec, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	scale, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || prec < 1 || prec > 76 || scale < 0 || scale > prec {
		return nil, grammarErrf(p.src, "Decimal precision/scale out of range: %q", argsSrc)
	}
	width := DecimalByteWidth(prec)
	return &Expr{Kind: decimalKindForWidth(width), Precision: prec, Scale: scale}, nil
}

func (p *parser) parseDecimalFixed(argsSrc string, bits int) (*Expr, error) {
	parts := splitArgsTopLevel(argsSrc)
	if len(parts) != 2 {
		return nil, grammarErrf(p.src, "Decimal%d requires (precision, scale), got %d args", bits, len(parts))
	}
	prec, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	scale, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || prec < 1 || scale < 0 || scale > prec {
		return nil, grammarErrf(p.src, "Decimal%d precision/scale out of range: %q", bits, argsSrc)
	}
	return &Expr{Kind: decimalKindForWidth(bits / 8), Precision: prec, Scale: scale}, nil
}

func decimalKindForWidth(byteWidth int) Kind {
	switch byteWidth {
	case 4:
		return KindDecimal32
	case 8:
		return KindDecimal64
	case 16:
		return KindDecimal128
	default:
		return KindDecimal256
	}
}

func (p *parser) parseEnum(k Kind, argsSrc string, lo, hi int64) (*Expr, error) {
	parts := splitArgsTopLevel(argsSrc)
	if len(parts) == 0 {
		return nil, grammarErrf(p.src, "%s requires at least one name=value pair", k)
	}
	seenNames := map[string]bool{}
	seenValues := map[int64]bool{}
	vals := make([]EnumValue, 0, len(parts))
	for _, part := range parts {
		eqIdx := strings.LastIndexByte(part, '=')
		if eqIdx < 0 {
			return nil, grammarErrf(p.src, "%s entry missing '=': %q", k, part)
		}
		rawName := strings.TrimSpace(part[:eqIdx])
		rawVal := strings.TrimSpace(part[eqIdx+1:])
		name, err := unquote(rawName)
		if err != nil {
			return nil, grammarErrf(p.src, "%s name: %v", k, err)
		}
		val, err := strconv.ParseInt(rawVal, 10, 64)
		if err != nil {
			return nil, grammarErrf(p.src, "%s value must be an integer: %q", k, rawVal)
		}
		if val < lo || val > hi {
			return nil, grammarErrf(p.src, "%s value %d out of range [%d,%d]", k, val, lo, hi)
		}
		if seenNames[name] {
			return nil, grammarErrf(p.src, "%s duplicate name %q", k, name)
		}
		if seenValues[val] {
			return nil, grammarErrf(p.src, "%s duplicate value %d", k, val)
		}
		seenNames[name] = true
		seenValues[val] = true
		vals = append(vals, EnumValue{Name: name, Value: val})
	}
	return &Expr{Kind: k, Enum: vals}, nil
}

// unquote parses a single-quoted string recognizing \\, \', \t, \n, \xHH.
func unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", wireerr.Newf(wireerr.KindGrammarError, "expected a single-quoted string, got %q", s)
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(inner) {
			return "", wireerr.New(wireerr.KindGrammarError, "dangling escape at end of string")
		}
		switch inner[i] {
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'x':
			if i+2 >= len(inner) {
				return "", wireerr.New(wireerr.KindGrammarError, "truncated \\xHH escape")
			}
			n, err := strconv.ParseUint(inner[i+1:i+3], 16, 8)
			if err != nil {
				return "", wireerr.Newf(wireerr.KindGrammarError, "invalid \\xHH escape: %v", err)
			}
			b.WriteByte(byte(n))
			i += 2
		default:
			return "", wireerr.Newf(wireerr.KindGrammarError, "unknown escape \\%c", inner[i])
		}
	}
	return b.String(), nil
}

func (p *parser) parseJSON(argsSrc string) (*Expr, error) {
	e := &Expr{Kind: KindJSON, MaxDynamicPaths: -1}
	parts := splitArgsTopLevel(argsSrc)
	for _, part := range parts {
		if part == "" {
			continue
		}
		if eqIdx := strings.IndexByte(part, '='); eqIdx >= 0 && !looksLikeTypedPath(part, eqIdx) {
			key := strings.TrimSpace(part[:eqIdx])
			val := strings.TrimSpace(part[eqIdx+1:])
			if key == "max_dynamic_paths" {
				n, err := strconv.Atoi(val)
				if err == nil {
					e.MaxDynamicPaths = n
					e.HasMaxDynamicPaths = true
				}
			}
			// Unknown settings are ignored, per spec.md §4.C.
			continue
		}
		name, typeStr, hasName := splitElement(part)
		if !hasName {
			// A bare setting name (flag-style) with no '='; ignore.
			continue
		}
		t, err := Parse(typeStr)
		if err != nil {
			return nil, err
		}
		e.JSONPaths = append(e.JSONPaths, JSONPath{Name: name, Type: t})
	}
	return e, nil
}

// looksLikeTypedPath distinguishes "path Type" (no '=') from a
// "key=value" setting when a path name itself might contain '=' inside a
// nested Decimal(9,2)-style argument; eqIdx here is always top-level
// (splitArgsTopLevel already resolved nesting), so a top-level '=' always
// means a setting, not a typed path.
func looksLikeTypedPath(_ string, _ int) bool {
	return false
}
