package debug

import (
	"testing"
)

func TestNewTreeWriter(t *testing.T) {
	tw := NewTreeWriter()
	if tw == nil {
		t.Fatal("NewTreeWriter() returned nil")
	}
	if tw.String() != "" {
		t.Error("Expected empty string from new TreeWriter")
	}
}

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", depth: 0, format: "test", want: "test\n"},
		{name: "depth 1", depth: 1, format: "indented", want: "  indented\n"},
		{name: "depth 2", depth: 2, format: "double indent", want: "    double indent\n"},
		{name: "with formatting", depth: 1, format: "value: %d", args: []any{42}, want: "  value: 42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Attrs(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		pairs []string
		want  string
	}{
		{name: "label only", depth: 0, label: "root", want: "root\n"},
		{name: "pairs", depth: 1, label: "rule", pairs: []string{"selector", ".a", "separator", " "}, want: "  rule selector=\".a\" separator=\" \"\n"},
		{name: "empty values skipped", depth: 0, label: "decl", pairs: []string{"prop", "color", "important", ""}, want: "decl prop=\"color\"\n"},
		{name: "control characters", depth: 0, label: "comment", pairs: []string{"leading", "\n  "}, want: "comment leading=\"\\n  \"\n"},
		{name: "odd key ignored", depth: 0, label: "x", pairs: []string{"a", "b", "c"}, want: "x a=\"b\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Attrs(tt.depth, tt.label, tt.pairs...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Attrs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "hello world", want: `"hello world"`},
		{input: `say "hi"`, want: `"say \"hi\""`},
		{input: "line1\nline2", want: `"line1\nline2"`},
		{input: `path\to\file`, want: `"path\\to\\file"`},
	}

	for _, tt := range tests {
		if got := encodeText(tt.input); got != tt.want {
			t.Errorf("encodeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
