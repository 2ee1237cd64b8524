package css

import (
	"cssuss/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// Dump returns a readable tree of n with formatting metadata of every node.
// It exists solely for manual inspection during debugging.
func Dump(n Node) string {
	if n == nil {
		return "<nil Node>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.node(0, n)
	return tw.String()
}

func (tw treeWriter) node(depth int, n Node) {
	f := n.Formatting()
	fmtPairs := []string{"leading", f.Leading, "separator", f.Separator, "trailing", f.Trailing}
	if f.Terminated {
		fmtPairs = append(fmtPairs, "terminated", "yes")
	}

	switch n := n.(type) {
	case *Root, *Group:
		tw.Attrs(depth, n.Kind().String(), fmtPairs...)
	case *Rule:
		tw.Attrs(depth, n.Kind().String(), append([]string{"selector", n.Selector}, fmtPairs...)...)
	case *AtRule:
		block := ""
		if n.Block {
			block = "yes"
		}
		tw.Attrs(depth, n.Kind().String(), append([]string{"name", n.Name, "params", n.Params, "block", block}, fmtPairs...)...)
	case *Declaration:
		important := ""
		if n.Important {
			important = "yes"
		}
		tw.Attrs(depth, n.Kind().String(), append([]string{"prop", n.Prop, "value", n.Value, "important", important}, fmtPairs...)...)
	case *Comment:
		tw.Attrs(depth, n.Kind().String(), append([]string{"text", n.Text}, fmtPairs...)...)
	}

	if p, ok := n.(Parent); ok {
		for _, child := range p.Children() {
			tw.node(depth+1, child)
		}
	}
}
