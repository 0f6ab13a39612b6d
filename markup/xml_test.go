package markup

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

func TestToXML(t *testing.T) {
	res := Parse(`<Card title="x" style={{padding: 4}}><Text>Hello</Text><Img w={2}/></Card>`, nil, nil)
	doc := ToXML(res.Roots)

	card := doc.FindElement("./markup/Card")
	require.NotNil(t, card)
	require.Equal(t, "el-1", card.SelectAttrValue("canvas:id", ""))
	require.Equal(t, "Other", card.SelectAttrValue("canvas:category", ""))
	require.Equal(t, "x", card.SelectAttrValue("title", ""))
	require.Equal(t, "{padding: 4}", card.SelectAttrValue("style", ""))

	text := card.SelectElement("Text")
	require.NotNil(t, text)
	require.Equal(t, "Hello", text.Text())

	img := card.SelectElement("Img")
	require.NotNil(t, img)
	require.Equal(t, "2", img.SelectAttrValue("w", ""))
}

func TestDumpXML(t *testing.T) {
	res := Parse(`<ui.Card data$x="1"/>`, nil, nil)
	out := DumpXML(res.Roots)
	require.True(t, strings.HasPrefix(out, "<?xml"), out)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))
	els := doc.Root().ChildElements()
	require.Len(t, els, 1)
	require.Equal(t, "ui.Card", els[0].Tag)
	require.Equal(t, "1", els[0].SelectAttrValue("data_x", ""))
}
