package canvas

import (
	"strconv"
	"strings"
)

// Diagnostic is a parse warning or error with the surrounding source lines.
type Diagnostic struct {
	Message string         `json:"message"`
	Line    int            `json:"line,omitempty"`
	Column  int            `json:"column,omitempty"`
	Source  *SourceContext `json:"source,omitempty"`
}

// SourceContext is an excerpt of the source around a position.
type SourceContext struct {
	Lines       []string `json:"lines"`
	FirstLine   int      `json:"firstLine"`
	ErrorLine   int      `json:"errorLine"`
	ErrorColumn int      `json:"errorColumn"`
}

// diagnostics converts messages of the form "line:col: text" into diagnostics with around
// lines of context on each side. Messages without a position are kept as is.
func diagnostics(src string, msgs []string, around int) []Diagnostic {
	if len(msgs) == 0 {
		return nil
	}
	lines := strings.Split(src, "\n")
	ds := make([]Diagnostic, 0, len(msgs))
	for _, msg := range msgs {
		d := Diagnostic{Message: msg}
		if line, col, text, ok := splitPosition(msg); ok {
			d.Message, d.Line, d.Column = text, line, col
			d.Source = sourceContext(lines, line, col, around)
		}
		ds = append(ds, d)
	}
	return ds
}

func splitPosition(msg string) (line, col int, text string, ok bool) {
	pos, text, found := strings.Cut(msg, ": ")
	if !found {
		return 0, 0, msg, false
	}
	l, c, found := strings.Cut(pos, ":")
	if !found {
		return 0, 0, msg, false
	}
	line, err1 := strconv.Atoi(l)
	col, err2 := strconv.Atoi(c)
	if err1 != nil || err2 != nil || line < 1 {
		return 0, 0, msg, false
	}
	return line, col, text, true
}

func sourceContext(lines []string, line, col, around int) *SourceContext {
	if line > len(lines) {
		return nil
	}
	first := max(line-around, 1)
	last := min(line+around, len(lines))
	return &SourceContext{
		Lines:       lines[first-1 : last],
		FirstLine:   first,
		ErrorLine:   line,
		ErrorColumn: col,
	}
}
