package css

import (
	"fmt"
	"io"
	"strings"
)

// WriteTo writes the stylesheet to w, implementing io.WriterTo. Output is
// fully controlled by formatting metadata of the nodes: nothing is emitted
// between nodes except their Leading text.
func (r *Root) WriteTo(w io.Writer) (int64, error) {
	sw := &writer{w: w}
	sw.node(r, false)
	return sw.total, sw.err
}

// String returns the CSS text of the stylesheet.
func (r *Root) String() string {
	var sb strings.Builder
	r.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

type writer struct {
	w     io.Writer
	total int64
	err   error
}

func (w *writer) write(parts ...string) {
	for _, s := range parts {
		if w.err != nil {
			return
		}
		if s == "" {
			continue
		}
		n, err := io.WriteString(w.w, s)
		w.total += int64(n)
		w.err = err
	}
}

// body writes children of p. A statement is followed by ";" unless it is the
// last non-comment child and the container was not terminated.
func (w *writer) body(p Parent, f *Format) {
	nodes := p.Children()

	last := len(nodes) - 1
	for last >= 0 && nodes[last].Kind() == KindComment {
		last--
	}

	for i, child := range nodes {
		w.write(child.Formatting().Leading)
		w.node(child, i != last || f.Terminated)
	}
}

func (w *writer) node(n Node, semicolon bool) {
	switch n := n.(type) {
	case *Root:
		w.body(n, &n.Fmt)
		w.write(n.Fmt.Trailing)
	case *Group:
		w.body(n, &n.Fmt)
		w.write(n.Fmt.Trailing)
	case *Rule:
		w.block(n, n.Selector, &n.Fmt)
	case *AtRule:
		head := "@" + n.Name
		if n.Params != "" {
			head += " " + n.Params
		}
		if n.Block || len(n.Nodes) > 0 {
			w.block(n, head, &n.Fmt)
			return
		}
		w.write(head)
		if semicolon {
			w.write(";")
		}
	case *Declaration:
		sep := n.Fmt.Separator
		if sep == "" {
			sep = ":"
		}
		w.write(n.Prop, sep, n.Value)
		if n.Important {
			w.write(" !important")
		}
		if semicolon {
			w.write(";")
		}
	case *Comment:
		w.write("/*", n.Text, "*/")
	default:
		// this should never happen
		panic(fmt.Sprintf("unsupported node type %T", n))
	}
}

func (w *writer) block(p Parent, head string, f *Format) {
	w.write(head, f.Separator, "{")
	w.body(p, f)
	w.write(f.Trailing, "}")
}
