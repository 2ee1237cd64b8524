package convert

import (
	"strings"
	"testing"

	"cssuss/config"
	"cssuss/misc"
)

func TestExpandTemplate(t *testing.T) {
	values := newValues(config.HeaderTemplateFieldName, "themes/dark.theme.css")

	tests := []struct {
		name  string
		field string
		want  string
	}{
		{name: "simple text", field: "simple-text", want: "simple-text"},
		{name: "source file", field: "{{ .SourceFile }}", want: "dark.theme"},
		{name: "source", field: "{{ .Source }}", want: "themes/dark.theme.css"},
		{name: "context", field: "{{ .Context }}", want: "header_template"},
		{name: "version", field: "v{{ .Version }}", want: "v" + misc.GetVersion()},
		{name: "sprig functions", field: `{{ .SourceFile | replace "." "-" | upper }}`, want: "DARK-THEME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(config.HeaderTemplateFieldName, tt.field, values)
			if err != nil {
				t.Fatalf("expandTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandTemplate_Errors(t *testing.T) {
	values := newValues(config.HeaderTemplateFieldName, "a.css")

	if _, err := expandTemplate(config.HeaderTemplateFieldName, "{{ .Unclosed", values); err == nil {
		t.Error("expandTemplate() with broken template succeeded")
	} else if !strings.Contains(err.Error(), "header_template") {
		t.Errorf("error does not name the field: %v", err)
	}

	if _, err := expandTemplate(config.HeaderTemplateFieldName, "{{ .NoSuchField }}", values); err == nil {
		t.Error("expandTemplate() with unknown field succeeded")
	}
}

func TestExpandHeader(t *testing.T) {
	got, err := expandHeader(" generated from {{ .SourceFile }}.css ", "/tmp/in/main.css")
	if err != nil {
		t.Fatalf("expandHeader() error = %v", err)
	}
	if got != " generated from main.css " {
		t.Errorf("expandHeader() = %q", got)
	}

	if _, err := expandHeader("{{ .SourceFile }} */ .x{}", "a.css"); err == nil {
		t.Error("expandHeader() accepted comment terminator")
	}
}
