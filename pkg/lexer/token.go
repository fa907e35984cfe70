// Package lexer turns route directive text into a token tree and provides
// a Cursor for walking it with one-token lookahead.
//
// Tokens are identifiers, single punctuation characters, literals, and
// delimited groups ({...}, [...], (...)) whose contents are nested tokens.
// Every token carries the source position of its first character so the
// grammar layer can report precise diagnostics.
package lexer

import "fmt"

// Pos is a position in a source file.
type Pos struct {
	// File is the path of the source file (may be empty for inline text)
	File string
	// Line is 1-based
	Line int
	// Column is 1-based, counted in bytes like go/token
	Column int
	// Offset is the 0-based byte offset in the file
	Offset int
}

// IsValid reports whether the position carries line information.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	switch {
	case p.File != "" && p.IsValid():
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	case p.IsValid():
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	case p.File != "":
		return p.File
	default:
		return "-"
	}
}

// Kind is the lexical category of a token.
type Kind int

const (
	// KindIdent is an identifier (e.g., GET, user, Option)
	KindIdent Kind = iota
	// KindPunct is a single punctuation character
	KindPunct
	// KindLiteral is a number or quoted string
	KindLiteral
	// KindGroup is a delimited group with nested tokens
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindIdent:
		return "identifier"
	case KindPunct:
		return "punctuation"
	case KindLiteral:
		return "literal"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Delimiter identifies the bracket pair of a group token.
type Delimiter int

const (
	DelimNone Delimiter = iota
	DelimBrace
	DelimBracket
	DelimParen
)

func (d Delimiter) open() string {
	switch d {
	case DelimBrace:
		return "{"
	case DelimBracket:
		return "["
	case DelimParen:
		return "("
	}
	return ""
}

func (d Delimiter) close() string {
	switch d {
	case DelimBrace:
		return "}"
	case DelimBracket:
		return "]"
	case DelimParen:
		return ")"
	}
	return ""
}

// Token is one lexical unit. Tokens are immutable once produced.
type Token struct {
	Kind Kind
	// Text is the identifier name, the punctuation character, or the raw
	// literal (quotes included for strings). Empty for groups.
	Text string
	// Delim is set for group tokens
	Delim Delimiter
	// Children holds the tokens inside a group
	Children []Token
	// Pos is the position of the first character
	Pos Pos
	// Close is the position of the closing delimiter of a group
	Close Pos
}

func (t Token) String() string {
	if t.Kind == KindGroup {
		return t.Delim.open() + "..." + t.Delim.close()
	}
	return t.Text
}

// Class is the classified view of the current cursor token. Punctuation
// characters the grammar cares about are pre-classified into named
// singletons; everything else falls into the generic classes.
type Class int

const (
	ClassEnd Class = iota
	ClassIdent
	ClassLiteral
	ClassBraceGroup
	ClassBracketGroup
	ClassParenGroup
	ClassAmpersand
	ClassApostrophe
	ClassAsterisk
	ClassComma
	ClassColon
	ClassDash
	ClassDollarSign
	ClassDot
	ClassEqual
	ClassGreaterThan
	ClassLessThan
	ClassPipe
	ClassPlus
	ClassQuestionMark
	ClassSemicolon
	ClassSlash
	ClassUnderscore
	ClassOtherPunct
)

var punctClasses = map[string]Class{
	"&": ClassAmpersand,
	"'": ClassApostrophe,
	"*": ClassAsterisk,
	",": ClassComma,
	":": ClassColon,
	"-": ClassDash,
	"$": ClassDollarSign,
	".": ClassDot,
	"=": ClassEqual,
	">": ClassGreaterThan,
	"<": ClassLessThan,
	"|": ClassPipe,
	"+": ClassPlus,
	"?": ClassQuestionMark,
	";": ClassSemicolon,
	"/": ClassSlash,
	"_": ClassUnderscore,
}

var classNames = map[Class]string{
	ClassEnd:          "end of input",
	ClassIdent:        "Ident",
	ClassLiteral:      "Literal",
	ClassBraceGroup:   "`{...}`",
	ClassBracketGroup: "`[...]`",
	ClassParenGroup:   "`(...)`",
	ClassOtherPunct:   "punctuation",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	for text, class := range punctClasses {
		if class == c {
			return "`" + text + "`"
		}
	}
	return "unknown"
}

// Classify returns the class of a token.
func Classify(t Token) Class {
	switch t.Kind {
	case KindIdent:
		return ClassIdent
	case KindLiteral:
		return ClassLiteral
	case KindGroup:
		switch t.Delim {
		case DelimBrace:
			return ClassBraceGroup
		case DelimBracket:
			return ClassBracketGroup
		case DelimParen:
			return ClassParenGroup
		}
	case KindPunct:
		if c, ok := punctClasses[t.Text]; ok {
			return c
		}
		return ClassOtherPunct
	}
	return ClassOtherPunct
}
