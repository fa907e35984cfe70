package codegen

import (
	"fmt"
	"strings"
)

// emitter accumulates unindented source lines; gofumpt lays them out.
type emitter struct {
	strings.Builder
}

func (e *emitter) line(format string, args ...any) {
	if len(args) == 0 {
		e.WriteString(format)
	} else {
		fmt.Fprintf(e, format, args...)
	}
	e.WriteByte('\n')
}

func (e *emitter) errCheck() {
	e.line("if err != nil {")
	e.line("return nil, err")
	e.line("}")
}
