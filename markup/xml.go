package markup

import (
	"strings"

	"github.com/beevik/etree"
)

// xmlSpace is the namespace prefix of the node metadata attributes in the XML dump.
const xmlSpace = "canvas"

// ToXML exports the tree as an XML document for inspection. Every node becomes an element named
// after its type, with the node id and category in the canvas namespace and attribute values in
// literal syntax. Inline text becomes the element text.
func ToXML(roots []*Node) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("markup")
	root.CreateAttr("xmlns:"+xmlSpace, "https://github.com/dpotapov/go-canvas")
	for _, n := range roots {
		addXMLNode(root, n)
	}
	return doc
}

// DumpXML renders ToXML(roots) as an indented string.
func DumpXML(roots []*Node) string {
	doc := ToXML(roots)
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

func addXMLNode(parent *etree.Element, n *Node) {
	if n == nil {
		return
	}
	el := parent.CreateElement(xmlName(n.Type))
	el.CreateAttr(xmlSpace+":id", n.ID)
	if n.Category != "" {
		el.CreateAttr(xmlSpace+":category", n.Category)
	}
	for _, a := range n.Attr {
		if a.Key == ChildrenAttr {
			if s, ok := a.Val.(Str); ok {
				el.SetText(string(s))
				continue
			}
		}
		el.CreateAttr(xmlName(a.Key), xmlAttrValue(a.Val))
	}
	for _, c := range n.Children {
		addXMLNode(el, c)
	}
}

func xmlAttrValue(v Value) string {
	if s, ok := v.(Str); ok {
		return string(s)
	}
	return Literal(v)
}

// xmlName replaces the characters that are not allowed in an XML name.
func xmlName(s string) string {
	if s == "" || !isNameStart(s[0]) {
		s = "_" + s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_' || r == '-' || r == '.':
			return r
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
			return r
		}
		return '_'
	}, s)
}
