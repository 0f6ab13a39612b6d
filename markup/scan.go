package markup

import "strings"

// fragmentTag is the tag name given to the <></> shorthand.
const fragmentTag = "Fragment"

// Tokenize splits the markup input into an ordered token stream. It never fails: any span that
// cannot be classified as a tag is folded into a text token, so the tokens always cover the whole
// input.
//
// The scanner is a single left-to-right pass that tracks a quote state and a brace depth. A '>'
// seen inside quotes or inside braces does not terminate a tag, which keeps nested literal
// values like style={{content: "a > b"}} intact.
func Tokenize(input string) []Token {
	s := &scanner{
		input:      input,
		lines:      newLineCounter(input),
		textBraces: true,
	}
	for state := lexText; state != nil; {
		state = state(s)
	}
	return s.tokens
}

// Implementation of the scanner follows the state function design from
// https://go.dev/talks/2011/lex.slide

// scanner holds the state of the tokenizer.
type scanner struct {
	input  string // the string being scanned
	start  int    // start position of the pending text
	pos    int    // current position in the input
	tokens []Token
	lines  *lineCounter

	// textBraces enables brace tracking in text, so that {a < b} in children is not read as a
	// tag. It is switched off when a text brace never closes.
	textBraces bool
	braceDepth int // brace depth in text
	braceStart int // position of the outermost open brace in text
	quote      byte
}

// stateFn represents the state of the scanner as a function that returns the next state.
type stateFn func(*scanner) stateFn

// emitText flushes the pending text up to the current position.
func (s *scanner) emitText() {
	if s.pos > s.start {
		s.tokens = append(s.tokens, Token{
			Type: TextToken,
			Data: s.input[s.start:s.pos],
			Span: s.lines.span(s.start, s.pos-s.start),
		})
	}
	s.start = s.pos
}

func lexText(s *scanner) stateFn {
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		if s.braceDepth > 0 {
			switch {
			case s.quote != 0:
				if c == '\\' {
					s.pos++
				} else if c == s.quote {
					s.quote = 0
				}
			case c == '"' || c == '\'' || c == '`':
				s.quote = c
			case c == '{':
				s.braceDepth++
			case c == '}':
				s.braceDepth--
			}
			s.pos++
			continue
		}
		switch {
		case c == '<':
			return lexTag
		case c == '{' && s.textBraces:
			s.braceDepth = 1
			s.braceStart = s.pos
		}
		s.pos++
	}

	if s.braceDepth > 0 {
		// Unbalanced brace in text: rescan from it as plain text.
		s.textBraces = false
		s.braceDepth = 0
		s.quote = 0
		s.pos = s.braceStart + 1
		return lexText
	}

	s.pos = len(s.input)
	s.emitText()
	return nil
}

// lexTag is entered with s.pos at a '<'. If a tag can be read, the pending text and the tag token
// are emitted. Otherwise the '<' becomes part of the text, together with everything the failed
// search for the tag end went over, so no byte is searched twice.
func lexTag(s *scanner) stateFn {
	tok, end, ok := scanTag(s.input, s.pos)
	if !ok {
		if end > s.pos {
			s.pos = end
		} else {
			s.pos++
		}
		return lexText
	}
	s.emitText()
	tok.Span = s.lines.span(s.pos, end-s.pos)
	s.tokens = append(s.tokens, tok)
	s.pos = end
	s.start = end
	return lexText
}

// scanTag reads a tag starting at the '<' at position at. It returns the token, the position
// right after the tag, and whether the input at this position is a tag at all. If the search for
// the tag end fails, the returned position is where it stopped, or 0 if it never started.
func scanTag(input string, at int) (Token, int, bool) {
	i := at + 1
	closing := false
	if i < len(input) && input[i] == '/' {
		closing = true
		i++
	}
	if i >= len(input) {
		return Token{}, 0, false
	}

	if input[i] == '>' {
		tok := Token{Type: OpenTagToken, Data: fragmentTag}
		if closing {
			tok.Type = CloseTagToken
		}
		return tok, i + 1, true
	}

	if !isNameStart(input[i]) {
		return Token{}, 0, false
	}
	nameStart := i
	for i < len(input) && isNameChar(input[i]) {
		i++
	}
	name := input[nameStart:i]
	if i < len(input) && !isSpace(input[i]) && input[i] != '>' && input[i] != '/' {
		return Token{}, 0, false
	}

	attrsEnd, end, selfClosing, ok := scanTagEnd(input, i)
	if !ok {
		return Token{}, end, false
	}

	if closing {
		return Token{Type: CloseTagToken, Data: name}, end, true
	}
	tok := Token{
		Type:     OpenTagToken,
		Data:     name,
		RawAttrs: strings.TrimSpace(input[i:attrsEnd]),
	}
	if selfClosing {
		tok.Type = SelfClosingTagToken
	}
	return tok, end, true
}

// scanTagEnd looks for the end of a tag ('>' or '/>') starting at position i, skipping over
// quoted strings and brace-delimited expressions. A '<' outside quotes and braces means the tag
// was never terminated; end is the position of that '<', or len(input) if the input ran out.
func scanTagEnd(input string, i int) (attrsEnd, end int, selfClosing, ok bool) {
	var quote byte
	depth := 0
	for ; i < len(input); i++ {
		c := input[i]
		if quote != 0 {
			if c == '\\' && depth > 0 {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '`':
			if depth > 0 {
				quote = c
			}
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '/':
			if depth == 0 && i+1 < len(input) && input[i+1] == '>' {
				return i, i + 2, true, true
			}
		case '>':
			if depth == 0 {
				return i, i + 1, false, true
			}
		case '<':
			if depth == 0 {
				return 0, i, false, false
			}
		}
	}
	return 0, len(input), false, false
}

func isNameStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || '0' <= c && c <= '9' || c == '.' || c == '-'
}

// isSpace reports whether c is a whitespace character.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f'
}
