package trie

import (
	"fmt"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

// Finding is a trie shape that builds but cannot behave as written.
type Finding struct {
	// Path leads to the shadowed capture
	Path string
	// Location is the first route below the shadowed capture
	Location route.Location
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Location, f.Path, f.Message)
}

// Lint reports capture siblings that can never match because an earlier
// capture at the same depth accepts every value they would. Dispatch
// commits to the first capture that parses, so routes below a shadowed
// capture are unreachable.
func Lint(root *Node) []Finding {
	var findings []Finding
	root.Walk(func(path route.Path, node *Node) bool {
		captures := node.Captures()
		for i, later := range captures {
			for _, earlier := range captures[:i] {
				if !covers(earlier.Part.Type, later.Part.Type) {
					continue
				}
				first := later.Flatten()
				f := Finding{
					Path: append(path[:len(path):len(path)], later.Part).String(),
					Message: fmt.Sprintf("capture {%s:%s} is shadowed by {%s:%s}",
						later.Part.Name, later.Part.Type,
						earlier.Part.Name, earlier.Part.Type),
				}
				if len(first) > 0 {
					f.Location = first[0].Route.Location
				}
				findings = append(findings, f)
				break
			}
		}
		return true
	})
	return findings
}

// covers reports whether every segment parsed by b is also parsed by a.
func covers(a, b route.CaptureType) bool {
	if a == b {
		return true
	}
	return a == route.CaptureUint64 && b == route.CaptureUint
}
