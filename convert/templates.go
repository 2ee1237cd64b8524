package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"cssuss/config"
	"cssuss/misc"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	SourceFile string
	Source     string
	Version    string
}

func newValues(name config.TemplateFieldName, source string) Values {
	return Values{
		Context:    string(name),
		SourceFile: strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)),
		Source:     source,
		Version:    misc.GetVersion(),
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// expandHeader produces text of the comment placed at the top of the output.
func expandHeader(field, source string) (string, error) {
	text, err := expandTemplate(config.HeaderTemplateFieldName, field, newValues(config.HeaderTemplateFieldName, source))
	if err != nil {
		return "", err
	}
	if strings.Contains(text, "*/") {
		return "", fmt.Errorf("expanded %s must not contain comment terminator: %q", config.HeaderTemplateFieldName, text)
	}
	return text, nil
}
