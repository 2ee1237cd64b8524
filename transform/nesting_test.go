package transform

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"cssuss/css"
)

func mustParse(t *testing.T, src string) *css.Root {
	t.Helper()

	root, err := css.NewParser(zaptest.NewLogger(t)).Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	return root
}

func TestNesting_Apply(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "no nesting",
			src:  `.a { color: red; } @media print { .b { x: y } }`,
			want: `.a{color:red;}@media print{.b{x:y}}`,
		},
		{
			name: "ampersand",
			src:  `.a { color: red; &:hover { color: blue; } }`,
			want: `.a{color:red;}.a:hover{color:blue;}`,
		},
		{
			name: "descendant and emptied parent",
			src:  `.a, .b { .c { x: y } }`,
			want: `.a .c, .b .c{x:y}`,
		},
		{
			name: "selector lists",
			src:  `.a { & > .b, &.c { x: y; } }`,
			want: `.a > .b, .a.c{x:y;}`,
		},
		{
			name: "deep nesting keeps order",
			src:  `.a { x: 1; .b { y: 2; .c { z: 3 } } .d { w: 4 } }`,
			want: `.a{x:1;}.a .b{y:2;}.a .b .c{z:3}.a .d{w:4}`,
		},
		{
			name: "bubbling media",
			src:  `.a { color: red; @media print { color: blue; } }`,
			want: `.a{color:red;}@media print{.a{color:blue;}}`,
		},
		{
			name: "merged media",
			src:  `.a { @media screen { @media (min-width: 1px) { x: y } } }`,
			want: `@media screen and (min-width: 1px){.a{x:y}}`,
		},
		{
			name: "media with own declarations and nested media",
			src:  `.a { @media screen { x: 1; @media print { y: 2 } } }`,
			want: `@media screen{.a{x:1;}}@media screen and print{.a{y:2}}`,
		},
		{
			name: "merged layers",
			src:  `.a { @layer base { @layer x { c: d } } }`,
			want: `@layer base.x{.a{c:d}}`,
		},
		{
			name: "different bubbling at-rules stay nested",
			src:  `.a { @media print { @supports (display: grid) { x: y } } }`,
			want: `@media print{@supports (display: grid){.a{x:y}}}`,
		},
		{
			name: "unwrapped font-face",
			src:  `.a { color: red; @font-face { font-family: X } }`,
			want: `.a{color:red;}@font-face{font-family:X}`,
		},
		{
			name: "vendor keyframes",
			src:  `.a { @-webkit-keyframes spin { from { x: y } } }`,
			want: `@-webkit-keyframes spin{from{x:y}}`,
		},
		{
			name: "other at-rules stay in place",
			src:  `.a { @apply --x; color: red }`,
			want: `.a{@apply --x;color:red}`,
		},
		{
			name: "rules inside top level media",
			src:  `@media print { .a { .b { x: y } } }`,
			want: `@media print{.a .b{x:y}}`,
		},
		{
			name: "comment keeps parent",
			src:  `.a { /* c */ .b { x: y } }`,
			want: `.a{/* c */}.a .b{x:y}`,
		},
		{
			name: "statement after nested rule",
			src:  `.a { .b { x: y } color: red }`,
			want: `.a{color:red}.a .b{x:y}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.src)
			if err := NewNesting(nil, nil, zaptest.NewLogger(t)).Apply(root); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got := root.String(); got != tt.want {
				t.Errorf("Apply() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestNesting_CustomSets(t *testing.T) {
	src := `.a { @media print { x: y } @font-face { f: g } }`

	root := mustParse(t, src)
	if err := NewNesting([]string{}, []string{"@Media"}, nil).Apply(root); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := `.a{@font-face{f:g}}@media print{x:y}`
	if got := root.String(); got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
}

func TestNesting_MalformedSelector(t *testing.T) {
	root := mustParse(t, `.a { .b) { x: y } }`)

	err := NewNesting(nil, nil, nil).Apply(root)
	if err == nil {
		t.Fatal("Apply() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "malformed selector") {
		t.Errorf("Apply() error = %v, want malformed selector", err)
	}
}

func TestSplitSelectors(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: ".a", want: []string{".a"}},
		{in: ".a, .b ,.c", want: []string{".a", ".b", ".c"}},
		{in: ":is(.a, .b) .c, .d", want: []string{":is(.a, .b) .c", ".d"}},
		{in: `[title="a,b"], .e`, want: []string{`[title="a,b"]`, ".e"}},
		{in: `.a\,b, .c`, want: []string{`.a\,b`, ".c"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitSelectors(tt.in)
			if err != nil {
				t.Fatalf("splitSelectors() error = %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("splitSelectors() = %q, want %q", got, tt.want)
			}
		})
	}

	for _, bad := range []string{".a)", ":is(.a", `[x="y]`} {
		if _, err := splitSelectors(bad); err == nil {
			t.Errorf("splitSelectors(%q) succeeded, want error", bad)
		}
	}
}

func TestJoinSelectors(t *testing.T) {
	tests := []struct {
		parent, child, want string
	}{
		{".a", ".b", ".a .b"},
		{".a", "&:hover", ".a:hover"},
		{".a", "> .b", ".a > .b"},
		{".a, .b", ".c, &.d", ".a .c, .a.d, .b .c, .b.d"},
		{".a", "& + &", ".a + .a"},
		{"", ".b", ".b"},
	}

	for _, tt := range tests {
		got, err := joinSelectors(tt.parent, tt.child)
		if err != nil {
			t.Fatalf("joinSelectors(%q, %q) error = %v", tt.parent, tt.child, err)
		}
		if got != tt.want {
			t.Errorf("joinSelectors(%q, %q) = %q, want %q", tt.parent, tt.child, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"media":             "media",
		"-webkit-keyframes": "keyframes",
		"-moz-document":     "document",
		"Font-Face":         "font-face",
	}
	for in, want := range tests {
		if got := baseName(&css.AtRule{Name: in}); got != want {
			t.Errorf("baseName(%q) = %q, want %q", in, got, want)
		}
	}
}
