package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Vars holds the five substitutions available to a prompt template.
// Templates reference them with text/template syntax, e.g. {{.OldLibName}}.
type Vars struct {
	Prompt              string
	LanguageName        string
	OldLibName          string
	NewLibName          string
	CodeBeforeMigration string
}

// Render resolves template expressions in the given string.
// Returns the input unchanged if it contains no template delimiters.
func Render(tmpl string, vars *Vars) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("template: parse: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}

	return buf.String(), nil
}
