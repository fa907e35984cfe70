package lexer

import "strings"

// Cursor walks a token slice with one-token lookahead. The cursor owns its
// read position only; the tokens themselves are never modified.
type Cursor struct {
	tokens []Token
	index  int
	// previous is the position of the last token stepped over, used when an
	// error is reported at end of input.
	previous Pos
	// end is where the token slice stops (a closing delimiter or end of text)
	end Pos
}

// NewCursor creates a cursor over tokens. end is used for errors reported
// when no token has been consumed yet and the input is empty.
func NewCursor(tokens []Token, end Pos) *Cursor {
	return &Cursor{tokens: tokens, end: end}
}

// Parse tokenizes src and returns a cursor positioned on the first token.
func Parse(src string, origin Pos) (*Cursor, error) {
	return ParseSpans([]Span{{Text: src, Pos: origin}})
}

// ParseSpans tokenizes spans and returns a cursor over the result.
func ParseSpans(spans []Span) (*Cursor, error) {
	tokens, err := TokenizeSpans(spans)
	if err != nil {
		return nil, err
	}
	return NewCursor(tokens, End(spans)), nil
}

// Step advances exactly one token. Stepping at end of input is a no-op.
func (c *Cursor) Step() {
	if c.index < len(c.tokens) {
		c.previous = c.tokens[c.index].Pos
		c.index++
	}
}

// Token returns the current token. At end of input it returns a zero token
// positioned where the input stopped.
func (c *Cursor) Token() Token {
	if c.index < len(c.tokens) {
		return c.tokens[c.index]
	}
	return Token{Kind: KindPunct, Pos: c.Pos()}
}

// Class returns the classified view of the current token.
func (c *Cursor) Class() Class {
	if c.index >= len(c.tokens) {
		return ClassEnd
	}
	return Classify(c.tokens[c.index])
}

// Is reports whether the current token has class k.
func (c *Cursor) Is(k Class) bool {
	return c.Class() == k
}

// IsIdent reports whether the current token is the identifier name.
func (c *Cursor) IsIdent(name string) bool {
	return c.Class() == ClassIdent && c.tokens[c.index].Text == name
}

// AtEnd reports whether every token has been consumed.
func (c *Cursor) AtEnd() bool {
	return c.index >= len(c.tokens)
}

// Pos returns the position of the current token. At end of input it falls
// back to the previous token, then to the end of the enclosing text.
func (c *Cursor) Pos() Pos {
	if c.index < len(c.tokens) {
		return c.tokens[c.index].Pos
	}
	if c.previous.IsValid() {
		return c.previous
	}
	return c.end
}

// Error returns a GrammarError positioned at the current token.
func (c *Cursor) Error(msg string) *GrammarError {
	return &GrammarError{Pos: c.Pos(), Message: msg}
}

// Errorf is like Error with formatting.
func (c *Cursor) Errorf(format string, args ...any) *GrammarError {
	return Errorf(c.Pos(), format, args...)
}

// ExpectIdent returns the current identifier without advancing.
func (c *Cursor) ExpectIdent() (string, error) {
	if c.Class() != ClassIdent {
		return "", c.Error("expected Ident")
	}
	return c.tokens[c.index].Text, nil
}

// TakeIdent returns the current identifier and advances.
func (c *Cursor) TakeIdent() (string, error) {
	name, err := c.ExpectIdent()
	if err != nil {
		return "", err
	}
	c.Step()
	return name, nil
}

// ExpectLiteral returns the raw text of the current literal.
func (c *Cursor) ExpectLiteral() (string, error) {
	if c.Class() != ClassLiteral {
		return "", c.Error("expected Literal")
	}
	return c.tokens[c.index].Text, nil
}

// TakeLiteral returns the raw text of the current literal and advances.
func (c *Cursor) TakeLiteral() (string, error) {
	lit, err := c.ExpectLiteral()
	if err != nil {
		return "", err
	}
	c.Step()
	return lit, nil
}

// ExpectPunct fails unless the current token has class k.
func (c *Cursor) ExpectPunct(k Class) error {
	if c.Class() != k {
		return c.Errorf("expected %s", k)
	}
	return nil
}

// TakePunct consumes a token of class k.
func (c *Cursor) TakePunct(k Class) error {
	if err := c.ExpectPunct(k); err != nil {
		return err
	}
	c.Step()
	return nil
}

// TakeEnd fails unless every token has been consumed.
func (c *Cursor) TakeEnd() error {
	if !c.AtEnd() {
		return c.Error("expected end of input")
	}
	return nil
}

// Group returns a sub-cursor over the contents of the current group token
// of class k without advancing.
func (c *Cursor) Group(k Class) (*Cursor, error) {
	if c.Class() != k {
		return nil, c.Errorf("expected %s", k)
	}
	tok := c.tokens[c.index]
	return &Cursor{tokens: tok.Children, end: tok.Close}, nil
}

// TakeGroup returns a sub-cursor over the current group of class k and
// advances past it.
func (c *Cursor) TakeGroup(k Class) (*Cursor, error) {
	sub, err := c.Group(k)
	if err != nil {
		return nil, err
	}
	c.Step()
	return sub, nil
}

// TakeBraceGroup is TakeGroup for {...}.
func (c *Cursor) TakeBraceGroup() (*Cursor, error) {
	return c.TakeGroup(ClassBraceGroup)
}

// TakeParenGroup is TakeGroup for (...).
func (c *Cursor) TakeParenGroup() (*Cursor, error) {
	return c.TakeGroup(ClassParenGroup)
}

// TakeTypePath consumes a dotted type path such as `rutas.Response`.
func (c *Cursor) TakeTypePath() (string, error) {
	first, err := c.TakeIdent()
	if err != nil {
		return "", err
	}
	parts := []string{first}
	for c.Is(ClassDot) {
		c.Step()
		next, err := c.TakeIdent()
		if err != nil {
			return "", err
		}
		parts = append(parts, next)
	}
	return strings.Join(parts, "."), nil
}
