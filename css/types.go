package css

import (
	"strconv"
)

// Kind identifies node type in the syntax tree.
type Kind int

const (
	KindRoot        Kind = iota // whole stylesheet
	KindRule                    // selector block
	KindAtRule                  // @-rule, statement or block
	KindDeclaration             // property: value
	KindComment                 // /* ... */
	KindGroup                   // generic container without own syntax
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindRule:
		return "rule"
	case KindAtRule:
		return "atrule"
	case KindDeclaration:
		return "declaration"
	case KindComment:
		return "comment"
	case KindGroup:
		return "generic-container"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Format is per-node formatting metadata. Empty string means "not set".
type Format struct {
	Leading    string // emitted before the node
	Separator  string // selector/params and "{", or property and value
	Trailing   string // before closing brace of a block, after last child of root
	Terminated bool   // containers: last statement of the body is followed by ";"
}

// Node is a syntax tree node. The set of implementations is closed: *Root,
// *Rule, *AtRule, *Declaration, *Comment and *Group.
type Node interface {
	Kind() Kind
	Formatting() *Format
	node()
}

// Parent is implemented by every node that may have children.
type Parent interface {
	Node
	Children() []Node
	SetChildren([]Node)
}

// Body holds ordered children of a container node.
type Body struct {
	Nodes []Node
}

// Children returns nodes in document order.
func (b *Body) Children() []Node {
	return b.Nodes
}

// SetChildren replaces all children.
func (b *Body) SetChildren(nodes []Node) {
	b.Nodes = nodes
}

// Root is the whole stylesheet.
type Root struct {
	Body
	Fmt Format
}

// Rule is a selector block.
type Rule struct {
	Body
	Selector string
	Fmt      Format
}

// AtRule is either a statement (@import "a.css";) or a block (@media x { ... }).
type AtRule struct {
	Body
	Name   string // without "@"
	Params string
	Block  bool // has braces, even when body is empty
	Fmt    Format
}

// Declaration is a property/value pair.
type Declaration struct {
	Prop      string
	Value     string
	Important bool
	Fmt       Format
}

// Comment keeps everything between "/*" and "*/" verbatim.
type Comment struct {
	Text string
	Fmt  Format
}

// Group is a generic container which has no syntax of its own, for example a
// number of stylesheets concatenated together.
type Group struct {
	Body
	Fmt Format
}

func (*Root) Kind() Kind        { return KindRoot }
func (*Rule) Kind() Kind        { return KindRule }
func (*AtRule) Kind() Kind      { return KindAtRule }
func (*Declaration) Kind() Kind { return KindDeclaration }
func (*Comment) Kind() Kind     { return KindComment }
func (*Group) Kind() Kind       { return KindGroup }

func (n *Root) Formatting() *Format        { return &n.Fmt }
func (n *Rule) Formatting() *Format        { return &n.Fmt }
func (n *AtRule) Formatting() *Format      { return &n.Fmt }
func (n *Declaration) Formatting() *Format { return &n.Fmt }
func (n *Comment) Formatting() *Format     { return &n.Fmt }
func (n *Group) Formatting() *Format       { return &n.Fmt }

func (*Root) node()        {}
func (*Rule) node()        {}
func (*AtRule) node()      {}
func (*Declaration) node() {}
func (*Comment) node()     {}
func (*Group) node()       {}

// IsCustom reports whether declaration defines custom property (--name).
func (d *Declaration) IsCustom() bool {
	return len(d.Prop) > 2 && d.Prop[0] == '-' && d.Prop[1] == '-'
}

// Walk calls fn for n and all its descendants in document order, passing
// nesting depth of each node relative to n. Returning false from fn skips
// children of that node.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if p, ok := n.(Parent); ok {
		for _, child := range p.Children() {
			walk(child, depth+1, fn)
		}
	}
}

// Count returns number of nodes in the tree including n itself.
func Count(n Node) int {
	var total int
	Walk(n, func(Node, int) bool {
		total++
		return true
	})
	return total
}
