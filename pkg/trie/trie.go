// Package trie merges collected routes into a routing trie.
//
// Each node owns at most one terminal route and an ordered list of
// children keyed by path part. Children are sorted Index < Literal <
// Capture (literals lexicographically, captures by type rank then name);
// this order is the order in which a dispatcher tries candidates.
package trie

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

// Node is one level of the routing trie. Nodes are never mutated after
// Build returns.
type Node struct {
	// Part is the path part leading to this node (zero for the root)
	Part route.PathPart
	// Depth is 0 for the root
	Depth int
	// Terminal is the route whose path ends here, if any
	Terminal *route.Route
	// Children are sorted by route.ComparePathParts
	Children []*Node
}

// ConflictError reports two routes that terminate at the same path.
type ConflictError struct {
	Path   string
	First  route.Route
	Second route.Route
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting routes for %s: %s (%s) and %s (%s)",
		e.Path,
		e.First.Handler, e.First.Location,
		e.Second.Handler, e.Second.Location)
}

// Build merges routes into a trie. It fails with a *ConflictError when two
// routes have identical paths.
func Build(routes []route.Route) (*Node, error) {
	return build(routes, 0)
}

func build(routes []route.Route, depth int) (*Node, error) {
	node := &Node{Depth: depth}
	groups := make(map[route.PathPart][]route.Route)

	for i := range routes {
		r := routes[i]
		if len(r.Spec.Path) == depth {
			if node.Terminal != nil {
				return nil, &ConflictError{
					Path:   r.Spec.Path.String(),
					First:  *node.Terminal,
					Second: r,
				}
			}
			node.Terminal = &r
			continue
		}
		part := r.Spec.Path[depth]
		groups[part] = append(groups[part], r)
	}

	parts := make([]route.PathPart, 0, len(groups))
	for part := range groups {
		parts = append(parts, part)
	}
	slices.SortFunc(parts, route.ComparePathParts)

	for _, part := range parts {
		child, err := build(groups[part], depth+1)
		if err != nil {
			return nil, err
		}
		child.Part = part
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// IsRoot reports whether n is the root node.
func (n *Node) IsRoot() bool {
	return n.Depth == 0
}

// Index returns the index child, if any.
func (n *Node) Index() *Node {
	if len(n.Children) > 0 && n.Children[0].Part.Kind == route.PartIndex {
		return n.Children[0]
	}
	return nil
}

// Literals returns the literal children in lexicographic order.
func (n *Node) Literals() []*Node {
	return n.childrenOf(route.PartLiteral)
}

// Captures returns the capture children in type-rank order.
func (n *Node) Captures() []*Node {
	return n.childrenOf(route.PartCapture)
}

func (n *Node) childrenOf(kind route.PartKind) []*Node {
	var out []*Node
	for _, child := range n.Children {
		if child.Part.Kind == kind {
			out = append(out, child)
		}
	}
	return out
}

// Walk visits n and its descendants depth-first in candidate order. The
// path passed to fn is the sequence of parts from the root to the node.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(path route.Path, node *Node) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(prefix route.Path, fn func(route.Path, *Node) bool) {
	path := prefix
	if !n.IsRoot() {
		path = append(slices.Clone(prefix), n.Part)
	}
	if !fn(path, n) {
		return
	}
	for _, child := range n.Children {
		child.walk(path, fn)
	}
}

// Terminal is a route reached by flattening the trie.
type Terminal struct {
	Path  route.Path
	Route *route.Route
}

// Flatten returns every terminal route with the path leading to it, in
// candidate order.
func (n *Node) Flatten() []Terminal {
	var out []Terminal
	n.Walk(func(path route.Path, node *Node) bool {
		if node.Terminal != nil {
			out = append(out, Terminal{Path: path, Route: node.Terminal})
		}
		return true
	})
	return out
}

// Routes returns the terminal routes in candidate order.
func (n *Node) Routes() []route.Route {
	terminals := n.Flatten()
	out := make([]route.Route, len(terminals))
	for i, t := range terminals {
		out[i] = *t.Route
	}
	return out
}

// Print writes an indented view of the trie.
func (n *Node) Print(w io.Writer) error {
	var err error
	n.Walk(func(path route.Path, node *Node) bool {
		if err != nil || node.IsRoot() {
			return err == nil
		}
		label := node.Part.String()
		if node.Part.Kind == route.PartIndex {
			label = "(index)"
		}
		line := strings.Repeat("  ", node.Depth-1) + "/" + label
		if node.Terminal != nil {
			line += fmt.Sprintf("  -> %s %s", strings.Join(node.Terminal.Spec.MethodStrings(), "|"), node.Terminal.Handler)
		}
		_, err = fmt.Fprintln(w, line)
		return err == nil
	})
	return err
}
