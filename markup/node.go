// Package markup parses JSX-like markup snippets into a tree of typed element nodes and renders
// trees back into markup. Parsing is fault tolerant: malformed input produces warnings, never
// a panic or an error return. Trees are edited with persistent operations that share untouched
// subtrees with their input.
package markup

// ChildrenAttr is the attribute holding the inline text content of an element.
const ChildrenAttr = "children"

// TextType is the type of synthetic nodes holding text that follows element children.
const TextType = "Text"

// Node is an element of the parsed tree. Parent links are not stored; use FindWithParent or Path
// to navigate upwards.
type Node struct {
	// ID is unique within a parse result.
	ID string

	// Type is the canonical element type, resolved from the tag name.
	Type string

	DisplayName string
	Category    string

	// Attr is the list of attributes in source order. Inline text is stored under ChildrenAttr.
	Attr Attrs

	// Children preserve source order.
	Children []*Node

	// Span is the location of the opening tag. It is zero for nodes created by an editor.
	Span Span
}

// Text returns the inline text content of n.
func (n *Node) Text() (string, bool) {
	v, ok := n.Attr.Get(ChildrenAttr)
	if !ok {
		return "", false
	}
	s, ok := v.(Str)
	return string(s), ok
}

// Attribute is a key/value pair of an element.
type Attribute struct {
	Key string
	Val Value
}

// Attrs is an ordered attribute list with map-like accessors.
type Attrs []Attribute

// Get returns the value of the attribute key.
func (a Attrs) Get(key string) (Value, bool) {
	for _, at := range a {
		if at.Key == key {
			return at.Val, true
		}
	}
	return nil, false
}

// Set replaces the value of key in place, or appends it.
func (a *Attrs) Set(key string, v Value) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Val = v
			return
		}
	}
	*a = append(*a, Attribute{Key: key, Val: v})
}

// Delete removes key and reports whether it was present.
func (a *Attrs) Delete(key string) bool {
	for i, at := range *a {
		if at.Key == key {
			*a = append((*a)[:i:i], (*a)[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns the attribute names in order.
func (a Attrs) Keys() []string {
	keys := make([]string, len(a))
	for i, at := range a {
		keys[i] = at.Key
	}
	return keys
}

// clone returns a copy of the list that can be modified without touching a. Values are
// immutable and shared.
func (a Attrs) clone() Attrs {
	if a == nil {
		return nil
	}
	return append(Attrs(nil), a...)
}

// frame is an element being built, along with the tag name it was opened with.
type frame struct {
	node *Node
	tag  string
}

// nodeStack is a stack of open elements.
type nodeStack []frame

// pop pops the stack. It will panic if the stack is empty.
func (s *nodeStack) pop() frame {
	i := len(*s)
	f := (*s)[i-1]
	*s = (*s)[:i-1]
	return f
}

// top returns the most recently pushed node, or nil if the stack is empty.
func (s *nodeStack) top() *Node {
	if i := len(*s); i > 0 {
		return (*s)[i-1].node
	}
	return nil
}

// index returns the position of the highest element opened with tag, or -1.
func (s *nodeStack) index(tag string) int {
	for i := len(*s) - 1; i >= 0; i-- {
		if (*s)[i].tag == tag {
			return i
		}
	}
	return -1
}
