package markup

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the concrete type of a Value.
type Kind int

const (
	StrKind Kind = iota
	NumKind
	BoolKind
	ObjKind
	ArrKind
	RawKind
)

var kindNames = [...]string{"str", "num", "bool", "obj", "arr", "raw"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Value is a typed attribute value. The set of implementations is closed: Str, Num, Bool, Obj,
// Arr and Raw.
type Value interface {
	Kind() Kind
	isValue()
}

// Str is a string value.
type Str string

// Num is a numeric value.
type Num float64

// Bool is a boolean value.
type Bool bool

// Raw is an expression that was not interpreted. It is kept verbatim for round-trip.
type Raw string

// Arr is an array literal.
type Arr []Value

// Field is one entry of an object literal.
type Field struct {
	Key string
	Val Value
}

// Obj is an object literal. Fields keep their source order.
type Obj []Field

func (Str) Kind() Kind  { return StrKind }
func (Num) Kind() Kind  { return NumKind }
func (Bool) Kind() Kind { return BoolKind }
func (Obj) Kind() Kind  { return ObjKind }
func (Arr) Kind() Kind  { return ArrKind }
func (Raw) Kind() Kind  { return RawKind }

func (Str) isValue()  {}
func (Num) isValue()  {}
func (Bool) isValue() {}
func (Obj) isValue()  {}
func (Arr) isValue()  {}
func (Raw) isValue()  {}

// Get returns the value of the field with the given key.
func (o Obj) Get(key string) (Value, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Val, true
		}
	}
	return nil, false
}

// Literal renders v in literal syntax, as it appears between the braces of an attribute
// expression. Raw values are rendered verbatim.
func Literal(v Value) string {
	var b strings.Builder
	writeLiteral(&b, v)
	return b.String()
}

func writeLiteral(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case Str:
		b.WriteString(quoteString(string(v)))
	case Num:
		b.WriteString(formatNum(float64(v)))
	case Bool:
		b.WriteString(strconv.FormatBool(bool(v)))
	case Raw:
		b.WriteString(string(v))
	case Arr:
		b.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeLiteral(b, e)
		}
		b.WriteByte(']')
	case Obj:
		b.WriteByte('{')
		for i, f := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			if isIdent(f.Key) {
				b.WriteString(f.Key)
			} else {
				b.WriteString(quoteString(f.Key))
			}
			b.WriteString(": ")
			writeLiteral(b, f.Val)
		}
		b.WriteByte('}')
	case nil:
		b.WriteString("null")
	}
}

func formatNum(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// quoteString renders s as a double-quoted literal. Only the escapes understood by
// unquoteString are produced.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// unquoteString strips the quotes of a quoted literal and resolves backslash escapes. Unknown
// escapes keep the escaped character.
func unquoteString(s string) string {
	if len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			if i+4 < len(s) {
				if r, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += 4
					continue
				}
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Equal reports whether two values are semantically equal.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Obj:
		b, ok := b.(Obj)
		if !ok || len(a) != len(b) {
			return false
		}
		for _, f := range a {
			bv, ok := b.Get(f.Key)
			if !ok || !Equal(f.Val, bv) {
				return false
			}
		}
		return true
	case Arr:
		b, ok := b.(Arr)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case Raw:
		b, ok := b.(Raw)
		return ok && strings.TrimSpace(string(a)) == strings.TrimSpace(string(b))
	default:
		return a == b
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '$' || c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' {
			continue
		}
		if i > 0 && '0' <= c && c <= '9' {
			continue
		}
		return false
	}
	return true
}
