package markup

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func dumpIndent(w io.Writer, level int) {
	_, _ = io.WriteString(w, "| ")
	for i := 0; i < level; i++ {
		_, _ = io.WriteString(w, "  ")
	}
}

func dumpLevel(w io.Writer, n *Node, level int) {
	dumpIndent(w, level)
	_, _ = io.WriteString(w, "<"+n.Type+">\n")
	for _, a := range n.Attr {
		dumpIndent(w, level+1)
		var b strings.Builder
		writeAttr(&b, a)
		_, _ = io.WriteString(w, b.String()+"\n")
	}
	for _, c := range n.Children {
		dumpLevel(w, c, level+1)
	}
}

// dump prints the tree one node or attribute per line. Ids and spans are left out.
func dump(roots []*Node) string {
	var b bytes.Buffer
	for _, n := range roots {
		dumpLevel(&b, n, 0)
	}
	return b.String()
}

// trimDump removes the indentation of a multi-line test expectation.
func trimDump(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		warnings int
	}{
		{
			name: "inline text",
			text: "<Card><Text>Hello</Text></Card>",
			want: `
			| <Card>
			|   <Text>
			|     children="Hello"
			`,
		},
		{
			name: "self-closing with attributes",
			text: `<Image src="a.png" height={200} />`,
			want: `
			| <Image>
			|   src="a.png"
			|   height={200}
			`,
		},
		{
			name: "style object",
			text: `<Box style={{padding: 10, color: "red"}}></Box>`,
			want: `
			| <Box>
			|   style={{padding: 10, color: "red"}}
			`,
		},
		{
			name: "missing closing tag",
			text: "<Card><Text>Oops</Card>",
			want: `
			| <Card>
			|   <Text>
			|     children="Oops"
			`,
			warnings: 1,
		},
		{
			name: "siblings keep order",
			text: "<Group><Button>A</Button><Button>B</Button></Group>",
			want: `
			| <Group>
			|   <Button>
			|     children="A"
			|   <Button>
			|     children="B"
			`,
		},
		{
			name: "lossy array reduction",
			text: "<Box style={{data: [1,2,3]}} />",
			want: `
			| <Box>
			|   style={{data: 1}}
			`,
			warnings: 1,
		},
		{
			name: "text after children becomes a text node",
			text: "<A><B/>tail</A>",
			want: `
			| <A>
			|   <B>
			|   <Text>
			|     children="tail"
			`,
		},
		{
			name: "inline text before children",
			text: "<A>head<B/></A>",
			want: `
			| <A>
			|   children="head"
			|   <B>
			`,
		},
		{
			name: "top-level text",
			text: "hello <A/>",
			want: `
			| <Text>
			|   children="hello"
			| <A>
			`,
		},
		{
			name: "whitespace is dropped",
			text: "<A>\n  <B/>\n  <C/>\n</A>\n",
			want: `
			| <A>
			|   <B>
			|   <C>
			`,
		},
		{
			name: "entities are decoded",
			text: "<A>a &amp; b &lt;c&gt;</A>",
			want: `
			| <A>
			|   children="a & b <c>"
			`,
		},
		{
			name: "fragment",
			text: "<><A/></>",
			want: `
			| <Fragment>
			|   <A>
			`,
		},
		{
			name: "unclosed elements at end of input",
			text: "<A><B>x",
			want: `
			| <A>
			|   <B>
			|     children="x"
			`,
			warnings: 2,
		},
		{
			name: "unmatched closing tag",
			text: "</X><A/>",
			want: `
			| <A>
			`,
			warnings: 1,
		},
		{
			name: "mismatched closing tag pops the top element",
			text: "<A><B></C><D/></A>",
			want: `
			| <A>
			|   <B>
			|   <D>
			`,
			warnings: 1,
		},
		{
			name: "closing an outer element closes the inner ones",
			text: "<A><B><C>x</A><D/>",
			want: `
			| <A>
			|   <B>
			|     <C>
			|       children="x"
			| <D>
			`,
			warnings: 2,
		},
		{
			name: "attribute warnings are reported",
			text: "<A onClick={() => go()} />",
			want: `
			| <A>
			|   onClick={() => go()}
			`,
			warnings: 1,
		},
		{
			name: "unterminated tag is text",
			text: `<A><B title="x></A>`,
			want: `
			| <A>
			|   children='<B title="x></A>'
			`,
			warnings: 2,
		},
		{
			name: "text does not replace a children expression",
			text: "<A children={x}>hi</A>",
			want: `
			| <A>
			|   children={x}
			|   <Text>
			|     children="hi"
			`,
			warnings: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.text, nil, nil)
			require.Empty(t, res.Errors)
			if diff := cmp.Diff(trimDump(tt.want), dump(res.Roots)); diff != "" {
				t.Errorf("Parse() diff (-want +got):\n%s", diff)
			}
			require.Len(t, res.Warnings, tt.warnings, "warnings: %q", res.Warnings)
		})
	}
}

func TestParseExamples(t *testing.T) {
	t.Run("A", func(t *testing.T) {
		res := Parse("<Card><Text>Hello</Text></Card>", nil, nil)
		require.Len(t, res.Roots, 1)
		card := res.Roots[0]
		require.Equal(t, "Card", card.Type)
		require.Len(t, card.Children, 1)
		text, ok := card.Children[0].Text()
		require.True(t, ok)
		require.Equal(t, "Text", card.Children[0].Type)
		require.Equal(t, "Hello", text)
	})

	t.Run("B", func(t *testing.T) {
		res := Parse(`<Image src="a.png" height={200} />`, nil, nil)
		require.Len(t, res.Roots, 1)
		img := res.Roots[0]
		require.Empty(t, img.Children)
		require.Equal(t, Attrs{{Key: "src", Val: Str("a.png")}, {Key: "height", Val: Num(200)}}, img.Attr)
	})

	t.Run("C", func(t *testing.T) {
		res := Parse(`<Box style={{padding: 10, color: "red"}}>`, nil, nil)
		require.Len(t, res.Roots, 1)
		style, ok := res.Roots[0].Attr.Get("style")
		require.True(t, ok)
		require.Equal(t, Obj{{Key: "padding", Val: Num(10)}, {Key: "color", Val: Str("red")}}, style)
	})

	t.Run("D", func(t *testing.T) {
		res := Parse("<Card><Text>Oops</Card>", nil, nil)
		require.Len(t, res.Roots, 1)
		require.Equal(t, "Card", res.Roots[0].Type)
		require.Len(t, res.Roots[0].Children, 1)
		require.Equal(t, "Text", res.Roots[0].Children[0].Type)
		require.NotEmpty(t, res.Warnings)
	})

	t.Run("E", func(t *testing.T) {
		res := Parse("<Group><Button>A</Button><Button>B</Button></Group>", nil, nil)
		require.Len(t, res.Roots, 1)
		g := res.Roots[0]
		require.Len(t, g.Children, 2)
		for i, want := range []string{"A", "B"} {
			require.Equal(t, "Button", g.Children[i].Type)
			text, _ := g.Children[i].Text()
			require.Equal(t, want, text)
		}
	})

	t.Run("F", func(t *testing.T) {
		res := Parse("<Chart style={{data: [1,2,3]}} />", nil, nil)
		style, _ := res.Roots[0].Attr.Get("style")
		data, ok := style.(Obj).Get("data")
		require.True(t, ok)
		require.Equal(t, Num(1), data)
		require.Len(t, res.Warnings, 1)
		require.Contains(t, res.Warnings[0], "reduced to its first element (lossy)")
	})
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   \n\t"} {
		res := Parse(in, nil, nil)
		require.Empty(t, res.Roots)
		require.Equal(t, []string{"empty input"}, res.Errors)
		require.Error(t, res.Err())
	}

	res := Parse("</A>", nil, nil)
	require.Empty(t, res.Roots)
	require.Equal(t, []string{"no elements found"}, res.Errors)
	require.Len(t, res.Warnings, 1)

	// text alone is a tree of one text node
	res = Parse("just text", nil, nil)
	require.Empty(t, res.Errors)
	require.Len(t, res.Roots, 1)
	require.Equal(t, TextType, res.Roots[0].Type)
}

func TestParseNodeCount(t *testing.T) {
	tests := []struct {
		text       string
		pairs      int
		selfClosed int
	}{
		{"<A/>", 0, 1},
		{"<A></A>", 1, 0},
		{"<A><B/><C><D/></C></A>", 2, 2},
		{`<A x={{a: "<B/>"}}><B y="</A>"/></A>`, 1, 1},
		{"<R><A><B><C/></B></A><A/><A/></R>", 3, 3},
	}
	for _, tt := range tests {
		res := Parse(tt.text, nil, nil)
		require.Empty(t, res.Warnings, tt.text)
		require.Equal(t, tt.pairs+tt.selfClosed, Count(res.Roots), tt.text)
	}
}

func TestParseSelfClosingHasNoChildren(t *testing.T) {
	res := Parse(`<R><A/><B x="1" /><C></C></R>`, nil, nil)
	Walk(res.Roots, func(n *Node) bool {
		if n.Type == "A" || n.Type == "B" {
			require.Empty(t, n.Children)
			_, hasText := n.Text()
			require.False(t, hasText)
		}
		return true
	})
}

func TestParseResolver(t *testing.T) {
	r := ResolverFunc(func(tag string) (Element, bool) {
		switch tag {
		case "View":
			return Element{Type: "Box", DisplayName: "Box", Category: "Layout"}, true
		case "Label":
			return Element{Type: "Text"}, true
		}
		return Element{}, false
	})

	res := Parse("<View><Label>x</Label><Custom/></View>", r, NewIDGen("n"))
	require.Len(t, res.Roots, 1)

	box := res.Roots[0]
	require.Equal(t, "n-1", box.ID)
	require.Equal(t, "Box", box.Type)
	require.Equal(t, "Layout", box.Category)

	label := box.Children[0]
	require.Equal(t, "n-2", label.ID)
	require.Equal(t, "Text", label.Type)
	require.Equal(t, "Text", label.DisplayName)
	require.Equal(t, OtherCategory, label.Category)

	custom := box.Children[1]
	require.Equal(t, "n-3", custom.ID)
	require.Equal(t, Element{Type: "Custom", DisplayName: "Custom", Category: OtherCategory},
		Element{Type: custom.Type, DisplayName: custom.DisplayName, Category: custom.Category})
}

func TestParseUniqueIDs(t *testing.T) {
	res := Parse("<A>x<B/>y<C>z</C>w</A><D/>", nil, nil)
	seen := map[string]bool{}
	Walk(res.Roots, func(n *Node) bool {
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
		return true
	})
	require.Len(t, seen, 6)
}

func TestParseWarningPositions(t *testing.T) {
	res := Parse("<A>\n  </B>", nil, nil)
	require.Equal(t, []string{
		"2:3: closing tag </B> does not match <A>",
	}, res.Warnings)
}

func TestParseChildrenExpressionKept(t *testing.T) {
	res := Parse("<A children={x}>\n  hi\n</A>", nil, nil)
	require.Equal(t, []string{
		`1:1: <A> attribute "children": expression {x} not evaluated`,
		"1:17: <A> already has children={x}, text kept as a separate node",
	}, res.Warnings)
	require.Equal(t, Raw("x"), res.Roots[0].Attr[0].Val)
}
