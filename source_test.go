package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnostics(t *testing.T) {
	src := "a\nb\nc\nd\ne\nf"
	ds := diagnostics(src, []string{"4:2: bad thing", "no position here", "9:1: past the end", "x:1: not a number"}, 1)

	assert.Equal(t, []Diagnostic{
		{
			Message: "bad thing",
			Line:    4,
			Column:  2,
			Source:  &SourceContext{Lines: []string{"c", "d", "e"}, FirstLine: 3, ErrorLine: 4, ErrorColumn: 2},
		},
		{Message: "no position here"},
		{Message: "past the end", Line: 9, Column: 1},
		{Message: "x:1: not a number"},
	}, ds)

	assert.Nil(t, diagnostics(src, nil, 1))
}
