// Package version reports the rutas build version and the generated code schema.
package version

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
)

// Version is set via ldflags during build:
//
//	go build -ldflags "-X github.com/abdul-hamid-achik/rutas/internal/version.Version=v1.0.0"
var Version = "dev"

// GeneratorSchemaVersion is bumped whenever generated files change shape.
// Files carrying an older schema line must be regenerated.
const GeneratorSchemaVersion = 1

// SchemaLinePrefix starts the second line of every generated file.
const SchemaLinePrefix = "// rutas generator schema "

var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the ldflags version, or the module version recorded
// by `go install` when none was set.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	info, ok := readBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return Version
	}
	return info.Main.Version
}

// GetGeneratorSchemaVersion returns the current generator schema version.
func GetGeneratorSchemaVersion() int {
	return GeneratorSchemaVersion
}

// SchemaLine is the schema line written into generated files.
func SchemaLine() string {
	return SchemaLinePrefix + strconv.Itoa(GeneratorSchemaVersion)
}

// ParseSchemaLine returns the schema number of a generated file's schema
// line.
func ParseSchemaLine(line string) (int, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), SchemaLinePrefix)
	if !ok {
		return 0, fmt.Errorf("not a schema line: %q", line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, fmt.Errorf("bad schema number %q", rest)
	}
	return n, nil
}
