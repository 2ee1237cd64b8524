package transform

import (
	"strings"

	"go.uber.org/zap"

	"cssuss/css"
)

// Default at-rule sets for Nesting, names are without vendor prefix.
var (
	DefaultBubble = []string{"media", "supports", "layer", "container", "starting-style"}
	DefaultUnwrap = []string{"font-face", "keyframes", "document"}
)

// Nesting flattens rules nested inside other rules into plain top level
// rules, the way CSS nesting is expanded for targets which do not support it.
type Nesting struct {
	log    *zap.Logger
	bubble map[string]bool
	unwrap map[string]bool

	unwrapped int
}

// NewNesting creates nesting stage. bubble lists at-rules which are moved out
// of a rule and wrap parent selector, unwrap lists at-rules which are moved
// out unchanged. Nil lists select defaults.
func NewNesting(bubble, unwrap []string, log *zap.Logger) *Nesting {
	if log == nil {
		log = zap.NewNop()
	}
	if bubble == nil {
		bubble = DefaultBubble
	}
	if unwrap == nil {
		unwrap = DefaultUnwrap
	}
	return &Nesting{
		log:    log.Named("nesting"),
		bubble: nameSet(bubble),
		unwrap: nameSet(unwrap),
	}
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(strings.TrimPrefix(n, "@"))] = true
	}
	return set
}

// baseName returns lowercased at-rule name without vendor prefix,
// "-webkit-keyframes" becomes "keyframes".
func baseName(at *css.AtRule) string {
	name := strings.ToLower(at.Name)
	if strings.HasPrefix(name, "-") {
		if i := strings.IndexByte(name[1:], '-'); i >= 0 {
			return name[i+2:]
		}
	}
	return name
}

// Apply flattens all nested rules of the stylesheet in place.
func (n *Nesting) Apply(root *css.Root) error {
	n.unwrapped = 0

	nodes, err := n.container(root.Nodes)
	if err != nil {
		return err
	}
	root.Nodes = nodes

	n.log.Debug("Flattened nested rules", zap.Int("unwrapped", n.unwrapped))
	return nil
}

// container processes statements of the stylesheet or of a block at-rule
// which is not nested in a rule.
func (n *Nesting) container(nodes []css.Node) ([]css.Node, error) {
	out := make([]css.Node, 0, len(nodes))
	for _, child := range nodes {
		switch c := child.(type) {
		case *css.Rule:
			flat, err := n.rule(c)
			if err != nil {
				return nil, err
			}
			out = append(out, flat...)
		case *css.AtRule:
			if len(c.Nodes) > 0 {
				body, err := n.container(c.Nodes)
				if err != nil {
					return nil, err
				}
				c.Nodes = body
			}
			out = append(out, c)
		default:
			out = append(out, child)
		}
	}
	return out, nil
}

// rule returns rule followed by everything extracted from its body. The rule
// itself is dropped when nothing is left in it after extraction.
func (n *Nesting) rule(rule *css.Rule) ([]css.Node, error) {
	var (
		own, after []css.Node
		extracted  bool // nothing but comments was kept after last extraction
	)
	for _, child := range rule.Nodes {
		switch c := child.(type) {
		case *css.Rule:
			sel, err := joinSelectors(rule.Selector, c.Selector)
			if err != nil {
				return nil, err
			}
			c.Selector = sel
			flat, err := n.rule(c)
			if err != nil {
				return nil, err
			}
			after, extracted = append(after, flat...), true
			n.unwrapped++
			continue
		case *css.AtRule:
			name := baseName(c)
			switch {
			case n.bubble[name] && c.Block:
				flat, err := n.bubbleAtRule(rule.Selector, c)
				if err != nil {
					return nil, err
				}
				after, extracted = append(after, flat...), true
				n.unwrapped++
				continue
			case n.unwrap[name]:
				after, extracted = append(after, c), true
				n.unwrapped++
				continue
			}
		}
		own = append(own, child)
		if child.Kind() != css.KindComment {
			extracted = false
		}
	}

	if len(after) == 0 {
		return []css.Node{rule}, nil
	}

	rule.Nodes = own
	if extracted {
		// statement preceding a nested block is always followed by ";"
		rule.Fmt.Terminated = true
	}
	if len(own) == 0 {
		return after, nil
	}
	return append([]css.Node{rule}, after...), nil
}

// bubbleAtRule moves at-rule out of the rule with given selector. Direct
// declarations of the at-rule end up in a rule with that selector, nested
// at-rules of the same kind are merged into one.
func (n *Nesting) bubbleAtRule(selector string, at *css.AtRule) ([]css.Node, error) {
	inner := &css.Rule{Selector: selector, Body: css.Body{Nodes: at.Nodes}}
	inner.Fmt.Terminated = at.Fmt.Terminated

	flat, err := n.rule(inner)
	if err != nil {
		return nil, err
	}

	name := baseName(at)
	var body, lifted []css.Node
	for _, node := range flat {
		if nested, ok := node.(*css.AtRule); ok && baseName(nested) == name && nested.Block {
			nested.Params = mergeParams(name, at.Params, nested.Params)
			lifted = append(lifted, nested)
			continue
		}
		body = append(body, node)
	}

	at.Block = true
	at.Nodes = body
	at.Fmt.Terminated = false
	if len(body) == 0 {
		return lifted, nil
	}
	return append([]css.Node{at}, lifted...), nil
}

func mergeParams(name, outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	case name == "layer":
		return outer + "." + inner
	default:
		return outer + " and " + inner
	}
}
