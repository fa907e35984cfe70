package lexer

import "fmt"

// GrammarError is a positioned syntax error in route directive text.
type GrammarError struct {
	Pos     Pos
	Message string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Errorf creates a GrammarError at pos.
func Errorf(pos Pos, format string, args ...any) *GrammarError {
	return &GrammarError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
