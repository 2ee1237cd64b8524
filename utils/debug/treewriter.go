// Package debug has helpers producing human readable dumps of internal
// structures.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Attrs writes label followed by key="value" pairs. Pairs with empty values
// are skipped, odd trailing key is ignored.
func (tw TreeWriter) Attrs(depth int, label string, pairs ...string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		tw.w.WriteByte(' ')
		tw.w.WriteString(pairs[i])
		tw.w.WriteByte('=')
		tw.w.WriteString(encodeText(pairs[i+1]))
	}
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
