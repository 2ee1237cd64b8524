package transform

import (
	"maps"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	tdcss "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"cssuss/css"
)

// CustomProperties replaces var() references with values of custom
// properties defined for the document root.
type CustomProperties struct {
	log      *zap.Logger
	preserve bool

	defs map[string]string
}

// NewCustomProperties creates custom property resolution stage. When preserve
// is set original declarations and definitions are kept and resolved copies
// are inserted before them, otherwise declarations are rewritten in place and
// definitions are removed.
func NewCustomProperties(preserve bool, log *zap.Logger) *CustomProperties {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomProperties{
		log:      log.Named("custom-properties"),
		preserve: preserve,
		defs:     make(map[string]string),
	}
}

// Definitions returns custom properties collected by last Apply, keyed by
// name with raw (unresolved) values.
func (p *CustomProperties) Definitions() map[string]string {
	return maps.Clone(p.defs)
}

// Apply resolves custom properties of the stylesheet in place.
func (p *CustomProperties) Apply(root *css.Root) error {
	p.defs = make(map[string]string)

	var sources []*css.Rule
	for _, node := range root.Nodes {
		rule, ok := node.(*css.Rule)
		if !ok || !isRootSelector(rule.Selector) {
			continue
		}
		sources = append(sources, rule)
		for _, child := range rule.Nodes {
			if d, ok := child.(*css.Declaration); ok && d.IsCustom() {
				p.defs[d.Prop] = d.Value
			}
		}
	}

	var resolved, unresolved int
	p.body(root, func(parent css.Parent, i int, d *css.Declaration) int {
		value, ok := p.Resolve(d.Value)
		if !ok {
			unresolved++
			p.log.Debug("Unable to resolve custom property reference",
				zap.String("property", d.Prop), zap.String("value", d.Value))
			return i
		}
		if value == d.Value {
			return i
		}
		resolved++

		if !p.preserve {
			d.Value = value
			return i
		}

		nodes := parent.Children()
		if i > 0 {
			if prev, ok := nodes[i-1].(*css.Declaration); ok && prev.Prop == d.Prop && prev.Value == value {
				return i
			}
		}
		clone := &css.Declaration{Prop: d.Prop, Value: value, Important: d.Important}
		updated := make([]css.Node, 0, len(nodes)+1)
		updated = append(updated, nodes[:i]...)
		updated = append(updated, clone)
		updated = append(updated, nodes[i:]...)
		parent.SetChildren(updated)
		return i + 1
	})

	if !p.preserve {
		removeDefinitions(root, sources)
	}

	p.log.Debug("Resolved custom properties",
		zap.Int("definitions", len(p.defs)),
		zap.Int("resolved", resolved),
		zap.Int("unresolved", unresolved))
	return nil
}

// body calls fn for every declaration referencing custom properties. fn gets
// index of the declaration in its parent and returns index of the same
// declaration after it is done with it.
func (p *CustomProperties) body(parent css.Parent, fn func(css.Parent, int, *css.Declaration) int) {
	for i := 0; i < len(parent.Children()); i++ {
		switch n := parent.Children()[i].(type) {
		case *css.Declaration:
			if !n.IsCustom() && hasVar(n.Value) {
				i = fn(parent, i, n)
			}
		case css.Parent:
			p.body(n, fn)
		}
	}
}

// Resolve substitutes every var() in value. It reports false when value
// references unknown property without fallback or references are circular.
func (p *CustomProperties) Resolve(value string) (string, bool) {
	return p.resolve(value, map[string]bool{})
}

func (p *CustomProperties) resolve(value string, active map[string]bool) (string, bool) {
	if !hasVar(value) {
		return value, true
	}

	tokens := lexValue(value)

	var sb strings.Builder
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.tt != tdcss.FunctionToken || !strings.EqualFold(t.data, "var(") {
			sb.WriteString(t.data)
			continue
		}

		end := closingParen(tokens, i)
		if end < 0 {
			return "", false
		}
		name, fallback, hasFallback := splitVarArgs(tokens[i+1 : end])
		i = end

		var (
			text string
			ok   bool
		)
		switch def, known := p.defs[name]; {
		case active[name]:
			return "", false
		case known:
			active[name] = true
			text, ok = p.resolve(def, active)
			delete(active, name)
		case hasFallback:
			text, ok = p.resolve(fallback, active)
		}
		if !ok {
			return "", false
		}
		sb.WriteString(text)
	}
	return sb.String(), true
}

type valueToken struct {
	tt   tdcss.TokenType
	data string
}

func lexValue(value string) []valueToken {
	lex := tdcss.NewLexer(parse.NewInputString(value))

	var tokens []valueToken
	for {
		tt, data := lex.Next()
		if tt == tdcss.ErrorToken {
			return tokens
		}
		tokens = append(tokens, valueToken{tt: tt, data: string(data)})
	}
}

// closingParen returns index of the token closing function opened at start,
// or -1 when it is never closed.
func closingParen(tokens []valueToken, start int) int {
	depth := 0
	for i := start; i < len(tokens); i++ {
		switch tokens[i].tt {
		case tdcss.FunctionToken, tdcss.LeftParenthesisToken:
			depth++
		case tdcss.RightParenthesisToken:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitVarArgs splits var() arguments on the first top level comma.
func splitVarArgs(args []valueToken) (name, fallback string, hasFallback bool) {
	depth := 0
	for i, t := range args {
		switch t.tt {
		case tdcss.FunctionToken, tdcss.LeftParenthesisToken:
			depth++
		case tdcss.RightParenthesisToken:
			depth--
		case tdcss.CommaToken:
			if depth == 0 {
				return strings.TrimSpace(joinValue(args[:i])), strings.TrimSpace(joinValue(args[i+1:])), true
			}
		}
	}
	return strings.TrimSpace(joinValue(args)), "", false
}

func joinValue(tokens []valueToken) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.data)
	}
	return sb.String()
}

func hasVar(value string) bool {
	return strings.Contains(strings.ToLower(value), "var(")
}

func isRootSelector(list string) bool {
	selectors, err := splitSelectors(list)
	if err != nil || len(selectors) == 0 {
		return false
	}
	for _, s := range selectors {
		if s != ":root" && !strings.EqualFold(s, "html") {
			return false
		}
	}
	return true
}

// removeDefinitions drops custom property declarations from root rules and
// removes rules left empty.
func removeDefinitions(root *css.Root, sources []*css.Rule) {
	drop := make(map[css.Node]bool)
	for _, rule := range sources {
		kept := rule.Nodes[:0]
		for _, child := range rule.Nodes {
			if d, ok := child.(*css.Declaration); ok && d.IsCustom() {
				continue
			}
			kept = append(kept, child)
		}
		rule.Nodes = kept
		if len(kept) == 0 {
			drop[rule] = true
		}
	}
	if len(drop) == 0 {
		return
	}

	kept := root.Nodes[:0]
	for _, node := range root.Nodes {
		if !drop[node] {
			kept = append(kept, node)
		}
	}
	root.Nodes = kept
}
