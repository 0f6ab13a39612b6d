package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// Serialize renders the nodes back into markup text. Tag names are resolved with inv, falling
// back to the node type. Inline text is written as element content unless it is empty or has
// surrounding whitespace. Elements without children and inline text are written as self-closing
// tags.
func Serialize(nodes []*Node, inv InverseResolver) string {
	s := &serializer{inv: inv}
	for _, n := range nodes {
		s.writeNode(n, 0)
	}
	return s.b.String()
}

// SerializeIndent is like Serialize but puts every element on its own line, indented by indent
// per nesting level.
func SerializeIndent(nodes []*Node, inv InverseResolver, indent string) string {
	s := &serializer{inv: inv, indent: indent}
	for _, n := range nodes {
		s.writeNode(n, 0)
	}
	return s.b.String()
}

type serializer struct {
	inv    InverseResolver
	indent string
	b      strings.Builder
}

func (s *serializer) newline(depth int) {
	if s.indent == "" {
		return
	}
	if s.b.Len() > 0 {
		s.b.WriteByte('\n')
	}
	for i := 0; i < depth; i++ {
		s.b.WriteString(s.indent)
	}
}

func (s *serializer) writeNode(n *Node, depth int) {
	if n == nil {
		return
	}
	tag := tagName(s.inv, n.Type)
	if tag == "" {
		tag = fragmentTag
	}
	text, hasText := n.Text()
	// Text is trimmed and dropped when empty on parse, so such values stay attributes.
	hasText = hasText && text != "" && text == strings.TrimSpace(text)

	s.newline(depth)
	s.b.WriteByte('<')
	s.b.WriteString(tag)
	for _, a := range n.Attr {
		if a.Key == ChildrenAttr && hasText {
			continue
		}
		s.b.WriteByte(' ')
		writeAttr(&s.b, a)
	}

	if len(n.Children) == 0 && !hasText {
		s.b.WriteString(" />")
		return
	}
	s.b.WriteByte('>')

	if hasText {
		if len(n.Children) > 0 {
			s.newline(depth + 1)
		}
		s.b.WriteString(html.EscapeString(text))
	}
	for _, c := range n.Children {
		s.writeNode(c, depth+1)
	}
	if len(n.Children) > 0 {
		s.newline(depth)
	}
	s.b.WriteString("</")
	s.b.WriteString(tag)
	s.b.WriteByte('>')
}

func writeAttr(b *strings.Builder, a Attribute) {
	if strings.HasPrefix(a.Key, SpreadPrefix) {
		b.WriteString("{...")
		writeLiteral(b, a.Val)
		b.WriteByte('}')
		return
	}
	b.WriteString(a.Key)
	if s, ok := a.Val.(Str); ok {
		switch v := string(s); {
		case !strings.Contains(v, `"`):
			b.WriteString(`="`)
			b.WriteString(v)
			b.WriteByte('"')
			return
		case !strings.Contains(v, `'`):
			b.WriteString(`='`)
			b.WriteString(v)
			b.WriteByte('\'')
			return
		}
	}
	b.WriteString("={")
	writeLiteral(b, a.Val)
	b.WriteByte('}')
}
