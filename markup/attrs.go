package markup

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SpreadPrefix starts the key of a spread attribute {...expr}. The key is the prefix followed by
// the expression, and the value is the expression as Raw.
const SpreadPrefix = "..."

var (
	intLiteral = regexp.MustCompile(`^-?\d+$`)
	decLiteral = regexp.MustCompile(`^-?\d*\.\d+$`)
)

// ParseAttrs splits the raw attribute substring of a tag and classifies each attribute into a
// typed Value. It never fails: malformed or unrecognized syntax degrades to a Raw (or Str) value
// and a warning.
func ParseAttrs(raw string) (Attrs, []string) {
	p := &attrParser{}
	var attrs Attrs
	for _, piece := range splitAttrs(raw) {
		key, v, ok := p.parseAttr(piece)
		if !ok {
			continue
		}
		if _, dup := attrs.Get(key); dup {
			p.warnf("duplicate attribute %q, last value wins", key)
		}
		attrs.Set(key, v)
	}
	return attrs, p.warnings
}

type attrParser struct {
	warnings []string
}

func (p *attrParser) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *attrParser) parseAttr(piece string) (string, Value, bool) {
	if piece[0] == '{' {
		inner := strings.TrimSpace(strings.TrimSuffix(piece[1:], "}"))
		if rest, ok := strings.CutPrefix(inner, SpreadPrefix); ok {
			expr := strings.TrimSpace(rest)
			p.warnf("spread attribute {...%s} not evaluated", expr)
			return SpreadPrefix + expr, Raw(expr), true
		}
		p.warnf("unnamed expression %s dropped", piece)
		return "", nil, false
	}

	eq := strings.IndexByte(piece, '=')
	if eq < 0 {
		return piece, Bool(true), true
	}
	key, val := piece[:eq], piece[eq+1:]
	if key == "" {
		p.warnf("attribute value %s without a name dropped", val)
		return "", nil, false
	}

	switch {
	case val == "":
		p.warnf("attribute %q: missing value", key)
		return key, Str(""), true
	case val[0] == '"' || val[0] == '\'':
		if len(val) >= 2 && val[len(val)-1] == val[0] {
			return key, Str(val[1 : len(val)-1]), true
		}
		p.warnf("attribute %q: unterminated string", key)
		return key, Str(val[1:]), true
	case val[0] == '{':
		if !enclosed(val, '{', '}') {
			p.warnf("attribute %q: unterminated expression %s", key, val)
			return key, Raw(strings.TrimSpace(val[1:])), true
		}
		return key, p.parseExpr(key, val[1:len(val)-1]), true
	default:
		if v, ok := parseScalar(val); ok {
			return key, v, true
		}
		return key, Str(val), true
	}
}

// parseExpr classifies the content of an attribute expression {...}.
func (p *attrParser) parseExpr(key, inner string) Value {
	t := strings.TrimSpace(inner)
	if t == "" {
		p.warnf("attribute %q: empty expression", key)
		return Raw("")
	}
	if v, ok := p.parseLiteral(key, t, false); ok {
		return v
	}
	p.warnf("attribute %q: expression {%s} not evaluated", key, t)
	return Raw(t)
}

// parseLiteral classifies a trimmed literal. inObj is set for values nested in an object literal,
// where array values are reduced to their first element.
func (p *attrParser) parseLiteral(path, t string, inObj bool) (Value, bool) {
	if t == "" {
		return nil, false
	}
	if v, ok := parseScalar(t); ok {
		return v, true
	}
	switch t[0] {
	case '"', '\'', '`':
		if t[0] == '`' && strings.Contains(t, "${") {
			return nil, false
		}
		if end := closingQuote(t, 0); end == len(t)-1 {
			return Str(unquoteString(t)), true
		}
	case '{':
		if enclosed(t, '{', '}') {
			return p.parseObject(path, t[1:len(t)-1])
		}
	case '[':
		if enclosed(t, '[', ']') {
			if inObj {
				return p.reduceArray(path, t), true
			}
			return p.parseArray(path, t[1:len(t)-1])
		}
	}
	return nil, false
}

func (p *attrParser) parseObject(path, body string) (Value, bool) {
	entries, ok := splitTopLevel(body, ',')
	if !ok {
		return nil, false
	}
	obj := Obj{}
	for i, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			if i == len(entries)-1 {
				continue // trailing comma
			}
			return nil, false
		}
		kv, ok := splitTopLevel(e, ':')
		if !ok || len(kv) < 2 {
			return nil, false
		}
		key := strings.TrimSpace(kv[0])
		switch {
		case isIdent(key):
		case len(key) >= 2 && (key[0] == '"' || key[0] == '\'') && closingQuote(key, 0) == len(key)-1:
			key = unquoteString(key)
		case intLiteral.MatchString(key):
		default:
			return nil, false
		}
		// the value may itself contain ':' (e.g. a ternary), so rejoin the rest
		raw := strings.TrimSpace(strings.Join(kv[1:], ":"))
		fieldPath := path + "." + key
		v, ok := p.parseLiteral(fieldPath, raw, true)
		if !ok {
			p.warnf("%s: expression %s not evaluated", fieldPath, raw)
			v = Raw(raw)
		}
		if _, dup := obj.Get(key); dup {
			p.warnf("%s: duplicate key, last value wins", fieldPath)
			obj = removeField(obj, key)
		}
		obj = append(obj, Field{Key: key, Val: v})
	}
	return obj, true
}

func (p *attrParser) parseArray(path, body string) (Value, bool) {
	elems, ok := splitTopLevel(body, ',')
	if !ok {
		return nil, false
	}
	arr := Arr{}
	for i, e := range elems {
		e = strings.TrimSpace(e)
		if e == "" {
			if i == len(elems)-1 {
				continue
			}
			return nil, false
		}
		elemPath := path + "[" + strconv.Itoa(i) + "]"
		v, ok := p.parseLiteral(elemPath, e, false)
		if !ok {
			p.warnf("%s: expression %s not evaluated", elemPath, e)
			v = Raw(e)
		}
		arr = append(arr, v)
	}
	return arr, true
}

// reduceArray implements the lossy policy for arrays nested in objects: the value is replaced by
// the array's first element.
func (p *attrParser) reduceArray(path, t string) Value {
	elems, ok := splitTopLevel(t[1:len(t)-1], ',')
	first := ""
	if ok && len(elems) > 0 {
		first = strings.TrimSpace(elems[0])
	}
	if first == "" {
		p.warnf("%s: empty array literal kept as raw expression", path)
		return Raw(t)
	}
	p.warnf("%s: array literal %s reduced to its first element (lossy)", path, t)
	v, ok := p.parseLiteral(path+"[0]", first, true)
	if !ok {
		p.warnf("%s[0]: expression %s not evaluated", path, first)
		return Raw(first)
	}
	return v
}

func removeField(o Obj, key string) Obj {
	out := o[:0]
	for _, f := range o {
		if f.Key != key {
			out = append(out, f)
		}
	}
	return out
}

// parseScalar recognizes boolean and numeric literals.
func parseScalar(t string) (Value, bool) {
	switch {
	case t == "true":
		return Bool(true), true
	case t == "false":
		return Bool(false), true
	case intLiteral.MatchString(t), decLiteral.MatchString(t):
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, false
		}
		return Num(f), true
	}
	return nil, false
}

// splitAttrs splits the raw attribute string on whitespace found outside quotes and braces.
// Whitespace around '=' does not split.
func splitAttrs(raw string) []string {
	var (
		pieces []string
		cur    strings.Builder
		quote  byte
		depth  int
	)
	flush := func() {
		if cur.Len() > 0 {
			pieces = append(pieces, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quote != 0 {
			cur.WriteByte(c)
			if c == '\\' && depth > 0 && i+1 < len(raw) {
				i++
				cur.WriteByte(raw[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'' || c == '`' && depth > 0:
			quote = c
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case isSpace(c) && depth == 0:
			j := i
			for j < len(raw) && isSpace(raw[j]) {
				j++
			}
			s := cur.String()
			if (s != "" && s[len(s)-1] == '=') || (j < len(raw) && raw[j] == '=') {
				i = j - 1
				continue
			}
			flush()
			i = j - 1
			continue
		}
		cur.WriteByte(c)
	}
	flush()
	return pieces
}

// splitTopLevel splits s on sep found outside quotes and brackets. It returns false if the
// brackets or quotes in s are unbalanced.
func splitTopLevel(s string, sep byte) ([]string, bool) {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'', '`':
			end := closingQuote(s, i)
			if end < 0 {
				return nil, false
			}
			i = end
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, false
	}
	return append(parts, s[start:]), true
}

// closingQuote returns the index of the quote closing the one at s[i], honouring backslash
// escapes, or -1.
func closingQuote(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return -1
}

// enclosed reports whether s starts with open and the bracket matching it is the last byte.
func enclosed(s string, open, close byte) bool {
	if len(s) < 2 || s[0] != open || s[len(s)-1] != close {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'', '`':
			end := closingQuote(s, i)
			if end < 0 {
				return false
			}
			i = end
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
			if depth < 0 {
				return false
			}
		}
	}
	return false
}
