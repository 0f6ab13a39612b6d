package markup

import "fmt"

// Span represents a source location in the markup input.
type Span struct {
	Offset int // Byte offset in the input
	Line   int // 1-based line number
	Column int // 1-based column number (in runes, not bytes)
	Length int // Length in bytes
}

// IsZero returns true if the span is uninitialized
func (s Span) IsZero() bool {
	return s.Offset == 0 && s.Line == 0 && s.Column == 0 && s.Length == 0
}

// End returns the end offset of the span
func (s Span) End() int {
	return s.Offset + s.Length
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// lineCounter converts byte offsets to line/column positions. Offsets must be requested in
// non-decreasing order, which keeps the whole scan linear.
type lineCounter struct {
	input string
	pos   int
	line  int
	col   int
}

func newLineCounter(input string) *lineCounter {
	return &lineCounter{input: input, line: 1, col: 1}
}

func (lc *lineCounter) span(offset, length int) Span {
	for lc.pos < offset && lc.pos < len(lc.input) {
		c := lc.input[lc.pos]
		switch {
		case c == '\n':
			lc.line++
			lc.col = 1
		case c&0xC0 != 0x80: // count rune starts only
			lc.col++
		}
		lc.pos++
	}
	return Span{Offset: offset, Line: lc.line, Column: lc.col, Length: length}
}
