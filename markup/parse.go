package markup

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Result is the outcome of a parse. Warnings describe recoverable problems (unbalanced tags,
// unevaluated expressions); Errors is non-empty only for unusable input.
type Result struct {
	Roots    []*Node
	Warnings []string
	Errors   []string
}

// Err returns the Errors joined into a single error, or nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = errors.New(e)
	}
	return errors.Join(errs...)
}

// ErrEmptyInput is reported in Result.Errors when there is nothing to parse.
var ErrEmptyInput = errors.New("empty input")

// Parse tokenizes the markup input and builds the element tree. It never fails; see Result.
// A nil resolver passes tag names through unchanged; a nil ids uses NewIDGen("el").
func Parse(input string, r Resolver, ids IDGen) *Result {
	if strings.TrimSpace(input) == "" {
		return &Result{Errors: []string{ErrEmptyInput.Error()}}
	}
	return BuildTree(Tokenize(input), r, ids)
}

// A treeBuilder assembles the element tree from a token stream with an explicit stack machine.
// Every open element owns a child accumulator; the accumulator of the enclosing element is
// parked in acc while the element is open.
type treeBuilder struct {
	resolver Resolver
	ids      IDGen

	// stack is the stack of open elements.
	stack nodeStack
	// acc holds the child lists of the enclosing elements, parallel to stack.
	acc [][]*Node
	// cur accumulates the children of the top element, or the roots if the stack is empty.
	cur []*Node

	res *Result
}

// BuildTree builds the element tree from tokens produced by Tokenize. Unbalanced input is
// recovered from: unmatched closing tags are ignored, and elements left open at the end are
// closed in LIFO order. Each recovery is reported as a warning.
func BuildTree(tokens []Token, r Resolver, ids IDGen) *Result {
	if ids == nil {
		ids = NewIDGen("el")
	}
	b := &treeBuilder{
		resolver: r,
		ids:      ids,
		res:      &Result{},
	}
	if len(tokens) == 0 {
		b.res.Errors = append(b.res.Errors, ErrEmptyInput.Error())
		return b.res
	}
	for _, tok := range tokens {
		b.step(tok)
	}
	b.closeAll()
	b.res.Roots = b.cur
	if len(b.res.Roots) == 0 {
		b.res.Errors = append(b.res.Errors, "no elements found")
	}
	return b.res
}

func (b *treeBuilder) step(tok Token) {
	switch tok.Type {
	case OpenTagToken:
		n := b.newElement(tok)
		b.stack = append(b.stack, frame{node: n, tag: tok.Data})
		b.acc = append(b.acc, b.cur)
		b.cur = nil
	case SelfClosingTagToken:
		b.cur = append(b.cur, b.newElement(tok))
	case CloseTagToken:
		b.closeTag(tok)
	case TextToken:
		b.addText(tok)
	}
}

func (b *treeBuilder) newElement(tok Token) *Node {
	el := resolve(b.resolver, tok.Data)
	attrs, warnings := ParseAttrs(tok.RawAttrs)
	for _, w := range warnings {
		b.warnf(tok.Span, "<%s> %s", tok.Data, w)
	}
	return &Node{
		ID:          b.ids.NextID(),
		Type:        el.Type,
		DisplayName: el.DisplayName,
		Category:    el.Category,
		Attr:        attrs,
		Span:        tok.Span,
	}
}

func (b *treeBuilder) closeTag(tok Token) {
	if len(b.stack) == 0 {
		b.warnf(tok.Span, "unmatched closing tag </%s> ignored", tok.Data)
		return
	}
	i := b.stack.index(tok.Data)
	if i < 0 {
		b.warnf(tok.Span, "closing tag </%s> does not match <%s>", tok.Data, b.stack[len(b.stack)-1].tag)
		b.popElement()
		return
	}
	for len(b.stack)-1 > i {
		b.warnf(tok.Span, "<%s> implicitly closed by </%s>", b.stack[len(b.stack)-1].tag, tok.Data)
		b.popElement()
	}
	b.popElement()
}

// popElement completes the top element with the accumulated children and appends it to the
// children of its parent (or to the roots). It will panic if the stack is empty.
func (b *treeBuilder) popElement() {
	f := b.stack.pop()
	f.node.Children = b.cur
	b.cur = b.acc[len(b.acc)-1]
	b.acc = b.acc[:len(b.acc)-1]
	b.cur = append(b.cur, f.node)
}

// closeAll closes the elements left open at the end of the input.
func (b *treeBuilder) closeAll() {
	for len(b.stack) > 0 {
		f := b.stack[len(b.stack)-1]
		b.warnf(f.node.Span, "<%s> is not closed", f.tag)
		b.popElement()
	}
}

// addText stores text as the inline content of the top element if it has no children yet, or
// appends a synthetic text node otherwise. A children attribute holding an expression is never
// overwritten by text.
func (b *treeBuilder) addText(tok Token) {
	text := strings.TrimSpace(html.UnescapeString(tok.Data))
	if text == "" {
		return
	}
	if hasMarkup(tok.Data) {
		b.warnf(tok.Span, "unparsed markup kept as text: %.40q", text)
	}

	if top := b.stack.top(); top != nil && len(b.cur) == 0 {
		prev, _ := top.Attr.Get(ChildrenAttr)
		switch prev := prev.(type) {
		case nil:
			top.Attr.Set(ChildrenAttr, Str(text))
			return
		case Str:
			if prev != "" {
				text = string(prev) + " " + text
			}
			top.Attr.Set(ChildrenAttr, Str(text))
			return
		default:
			b.warnf(tok.Span, "<%s> already has children=%s, text kept as a separate node",
				b.stack[len(b.stack)-1].tag, Literal(prev))
		}
	}

	el := resolve(b.resolver, TextType)
	b.cur = append(b.cur, &Node{
		ID:          b.ids.NextID(),
		Type:        TextType,
		DisplayName: el.DisplayName,
		Category:    el.Category,
		Attr:        Attrs{{Key: ChildrenAttr, Val: Str(text)}},
		Span:        tok.Span,
	})
}

func (b *treeBuilder) warnf(span Span, format string, args ...any) {
	b.res.Warnings = append(b.res.Warnings, span.String()+": "+fmt.Sprintf(format, args...))
}

// hasMarkup reports whether text contains something that looks like a tag the tokenizer could
// not read, typically a tag with an unterminated quote.
func hasMarkup(text string) bool {
	for i := strings.IndexByte(text, '<'); i >= 0 && i+1 < len(text); {
		if c := text[i+1]; isNameStart(c) || c == '/' {
			return true
		}
		j := strings.IndexByte(text[i+1:], '<')
		if j < 0 {
			break
		}
		i += j + 1
	}
	return false
}
