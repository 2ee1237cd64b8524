// Package format assigns whitespace to a parsed stylesheet so that
// serialization produces consistently indented text.
package format

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cssuss/css"
)

// DefaultIndent is the number of spaces per nesting level.
const DefaultIndent = 2

// Annotator walks syntax tree and fills formatting metadata of every node.
// It never changes tree shape.
type Annotator struct {
	unit string
	log  *zap.Logger
}

// New returns annotator indenting by indent spaces per level.
func New(indent int, log *zap.Logger) *Annotator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Annotator{
		unit: strings.Repeat(" ", max(indent, 0)),
		log:  log.Named("annotator"),
	}
}

// Annotate formats node and all its descendants. depth is the nesting level
// of node, 0 for the root and its direct children.
func (a *Annotator) Annotate(node css.Node, depth int) {
	a.visit(node, depth, true)
	if node.Kind() == css.KindRoot {
		a.log.Debug("Annotated stylesheet", zap.Int("nodes", css.Count(node)))
	}
}

// newline returns line break followed by indentation for depth, negative
// depth is treated as 0.
func (a *Annotator) newline(depth int) string {
	return "\n" + strings.Repeat(a.unit, max(depth, 0))
}

// separator precedes every block except the first one in its container.
func (a *Annotator) separator(depth int, first bool) string {
	if first {
		return ""
	}
	return a.newline(depth - 1)
}

func (a *Annotator) visit(node css.Node, depth int, first bool) {
	f := node.Formatting()

	switch n := node.(type) {
	case *css.Root:
		f.Leading = ""
		a.body(n.Nodes, 0)
		f.Trailing = "\n"

	case *css.Rule:
		f.Leading = a.separator(depth, first)
		if f.Separator == "" {
			f.Separator = " "
		}
		a.block(f, n.Nodes, depth)

	case *css.AtRule:
		f.Leading = a.separator(depth, first)
		if f.Separator == "" && n.Params != "" {
			f.Separator = " "
		}
		a.block(f, n.Nodes, depth)

	case *css.Declaration:
		f.Leading = a.newline(depth)
		f.Separator = ": "

	case *css.Comment:
		f.Leading = a.newline(depth)

	case *css.Group:
		if len(n.Nodes) == 0 {
			return
		}
		if depth != 0 {
			f.Leading = a.newline(depth)
		}
		a.body(n.Nodes, depth+1)
		if f.Trailing == "" {
			f.Trailing = a.newline(depth)
		}

	default:
		// this should never happen - node set is closed
		panic(fmt.Sprintf("unsupported node type %T", node))
	}
}

// block formats body of a rule or an at-rule. Only top level blocks add a
// level of indentation for their bodies, nested blocks keep the depth.
func (a *Annotator) block(f *css.Format, children []css.Node, depth int) {
	if len(children) == 0 {
		if f.Trailing == "" {
			f.Trailing = "\n"
		}
		return
	}

	inner := depth
	if depth == 0 {
		inner++
	}
	a.body(children, inner)
	f.Trailing = a.newline(depth)
}

// body fills gaps left by kind specific rules: first child starts right away,
// every following child starts on a new line.
func (a *Annotator) body(children []css.Node, depth int) {
	for i, child := range children {
		if f := child.Formatting(); f.Leading == "" && i > 0 {
			f.Leading = a.newline(depth)
		}
		a.visit(child, depth, i == 0)
	}
}
