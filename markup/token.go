package markup

import "fmt"

// A TokenType is the type of a Token.
type TokenType uint32

const (
	// TextToken means a text node. Any input that cannot be read as a tag is text.
	TextToken TokenType = iota
	// OpenTagToken looks like <a b="c">.
	OpenTagToken
	// SelfClosingTagToken looks like <a b="c"/>.
	SelfClosingTagToken
	// CloseTagToken looks like </a>.
	CloseTagToken
)

// String returns a string representation of the TokenType.
func (t TokenType) String() string {
	switch t {
	case TextToken:
		return "Text"
	case OpenTagToken:
		return "OpenTag"
	case SelfClosingTagToken:
		return "SelfClosingTag"
	case CloseTagToken:
		return "CloseTag"
	}
	return fmt.Sprintf("Invalid(%d)", t)
}

// A Token consists of a TokenType and some Data (tag name for tag tokens, text content for
// text tokens). RawAttrs holds the unparsed attribute substring of open and self-closing tags.
type Token struct {
	Type     TokenType
	Data     string
	RawAttrs string
	Span     Span
}

// String returns a string representation of the Token.
func (t Token) String() string {
	switch t.Type {
	case TextToken:
		return t.Data
	case OpenTagToken:
		return "<" + t.tagString() + ">"
	case SelfClosingTagToken:
		return "<" + t.tagString() + "/>"
	case CloseTagToken:
		return "</" + t.Data + ">"
	}
	return "Invalid(" + fmt.Sprint(uint32(t.Type)) + ")"
}

func (t Token) tagString() string {
	if t.RawAttrs == "" {
		return t.Data
	}
	return t.Data + " " + t.RawAttrs
}
