package lexer

import (
	"strings"
	"unicode"
)

// Span is a fragment of source text and the position of its first byte.
// Directive text collected from several comment lines is tokenized as a
// sequence of spans so each token keeps its real file coordinates.
type Span struct {
	Text string
	Pos  Pos
}

// Tokenize tokenizes src, reporting positions relative to origin.
func Tokenize(src string, origin Pos) ([]Token, error) {
	return TokenizeSpans([]Span{{Text: src, Pos: origin}})
}

// TokenizeSpans tokenizes the concatenation of spans. Spans are separated
// by whitespace, so a token never straddles two spans.
func TokenizeSpans(spans []Span) ([]Token, error) {
	l := newLexer(spans)
	tokens, closer, err := l.readGroup(DelimNone)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		return nil, Errorf(closer.pos, "unexpected `%c`", closer.r)
	}
	return tokens, nil
}

// End returns the position just past the last character of spans.
func End(spans []Span) Pos {
	if len(spans) == 0 {
		return Pos{}
	}
	last := spans[len(spans)-1]
	pos := last.Pos
	for _, r := range last.Text {
		pos = advance(pos, r)
	}
	return pos
}

type char struct {
	r   rune
	pos Pos
}

type lexer struct {
	chars []char
	i     int
}

func newLexer(spans []Span) *lexer {
	l := &lexer{}
	for si, span := range spans {
		if si > 0 {
			l.chars = append(l.chars, char{r: ' ', pos: span.Pos})
		}
		pos := span.Pos
		if pos.Line == 0 {
			pos.Line, pos.Column = 1, 1
		}
		for _, r := range span.Text {
			l.chars = append(l.chars, char{r: r, pos: pos})
			pos = advance(pos, r)
		}
	}
	return l
}

func advance(pos Pos, r rune) Pos {
	size := len(string(r))
	pos.Offset += size
	if r == '\n' {
		pos.Line++
		pos.Column = 1
	} else {
		pos.Column += size
	}
	return pos
}

func (l *lexer) peek() (char, bool) {
	if l.i >= len(l.chars) {
		return char{}, false
	}
	return l.chars[l.i], true
}

// readGroup reads tokens until the closing delimiter of open (or end of
// input for DelimNone). It returns the closing char when one was consumed.
func (l *lexer) readGroup(open Delimiter) ([]Token, *char, error) {
	var tokens []Token
	for {
		c, ok := l.peek()
		if !ok {
			return tokens, nil, nil
		}
		switch {
		case unicode.IsSpace(c.r):
			l.i++

		case c.r == '{' || c.r == '[' || c.r == '(':
			l.i++
			delim := delimFor(c.r)
			children, closer, err := l.readGroup(delim)
			if err != nil {
				return nil, nil, err
			}
			if closer == nil {
				return nil, nil, Errorf(c.pos, "unclosed `%c`", c.r)
			}
			if string(closer.r) != delim.close() {
				return nil, nil, Errorf(closer.pos, "mismatched `%c`, expected `%s`", closer.r, delim.close())
			}
			tokens = append(tokens, Token{
				Kind:     KindGroup,
				Delim:    delim,
				Children: children,
				Pos:      c.pos,
				Close:    closer.pos,
			})

		case c.r == '}' || c.r == ']' || c.r == ')':
			l.i++
			if open == DelimNone {
				return nil, nil, Errorf(c.pos, "unexpected `%c`", c.r)
			}
			return tokens, &c, nil

		case c.r == '"' || c.r == '`':
			tok, err := l.readString(c)
			if err != nil {
				return nil, nil, err
			}
			tokens = append(tokens, tok)

		case unicode.IsDigit(c.r):
			tokens = append(tokens, l.readNumber(c))

		case isIdentStart(c.r):
			tok := l.readIdent(c)
			if tok.Text == "_" {
				tok.Kind = KindPunct
			}
			tokens = append(tokens, tok)

		default:
			l.i++
			tokens = append(tokens, Token{Kind: KindPunct, Text: string(c.r), Pos: c.pos})
		}
	}
}

func (l *lexer) readIdent(start char) Token {
	var sb strings.Builder
	for {
		c, ok := l.peek()
		if !ok || !isIdentPart(c.r) {
			break
		}
		sb.WriteRune(c.r)
		l.i++
	}
	return Token{Kind: KindIdent, Text: sb.String(), Pos: start.pos}
}

func (l *lexer) readNumber(start char) Token {
	var sb strings.Builder
	for {
		c, ok := l.peek()
		if !ok || !(isIdentPart(c.r) || c.r == '.') {
			break
		}
		// A dot only continues a number when a digit follows (1.5, not 1.x)
		if c.r == '.' {
			if l.i+1 >= len(l.chars) || !unicode.IsDigit(l.chars[l.i+1].r) {
				break
			}
		}
		sb.WriteRune(c.r)
		l.i++
	}
	return Token{Kind: KindLiteral, Text: sb.String(), Pos: start.pos}
}

func (l *lexer) readString(start char) (Token, error) {
	var sb strings.Builder
	sb.WriteRune(start.r)
	l.i++
	for {
		c, ok := l.peek()
		if !ok {
			return Token{}, Errorf(start.pos, "unterminated string literal")
		}
		l.i++
		sb.WriteRune(c.r)
		if c.r == '\\' && start.r == '"' {
			if next, ok := l.peek(); ok {
				sb.WriteRune(next.r)
				l.i++
			}
			continue
		}
		if c.r == start.r {
			return Token{Kind: KindLiteral, Text: sb.String(), Pos: start.pos}, nil
		}
	}
}

func delimFor(r rune) Delimiter {
	switch r {
	case '{':
		return DelimBrace
	case '[':
		return DelimBracket
	default:
		return DelimParen
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
