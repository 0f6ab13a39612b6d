package markup

import (
	"sort"
	"strings"

	"github.com/expr-lang/expr/ast"
	expr_parser "github.com/expr-lang/expr/parser"
)

// Symbols returns the sorted list of free identifiers referenced by the Raw attribute values and
// the {...} expressions in inline text of the tree. Expressions are parsed best-effort with the
// expr language parser; those that do not parse are skipped.
func Symbols(roots []*Node) []string {
	c := &symbolCollector{seen: make(map[string]struct{})}
	Walk(roots, func(n *Node) bool {
		for _, a := range n.Attr {
			if a.Key == ChildrenAttr {
				if s, ok := a.Val.(Str); ok {
					for _, x := range textExprs(string(s)) {
						c.add(x)
					}
					continue
				}
			}
			c.addValue(a.Val)
		}
		return true
	})
	syms := make([]string, 0, len(c.seen))
	for s := range c.seen {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

type symbolCollector struct {
	seen map[string]struct{}
}

func (c *symbolCollector) addValue(v Value) {
	switch v := v.(type) {
	case Raw:
		c.add(string(v))
	case Obj:
		for _, f := range v {
			c.addValue(f.Val)
		}
	case Arr:
		for _, e := range v {
			c.addValue(e)
		}
	}
}

func (c *symbolCollector) add(src string) {
	src = strings.TrimSpace(src)
	if src == "" {
		return
	}
	tree, err := expr_parser.Parse(src)
	if err != nil {
		return
	}
	ast.Walk(&tree.Node, c)
}

// Visit implements ast.Visitor.
func (c *symbolCollector) Visit(node *ast.Node) {
	if id, ok := (*node).(*ast.IdentifierNode); ok && id.Value != "" {
		c.seen[id.Value] = struct{}{}
	}
}

// textExprs returns the contents of the top-level {...} segments of s.
func textExprs(s string) []string {
	var exprs []string
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end := matchingBrace(s, i)
		if end < 0 {
			break
		}
		exprs = append(exprs, s[i+1:end])
		i = end
	}
	return exprs
}

// matchingBrace returns the index of the '}' closing the '{' at s[i], or -1.
func matchingBrace(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '"', '\'', '`':
			end := closingQuote(s, j)
			if end < 0 {
				return -1
			}
			j = end
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}
