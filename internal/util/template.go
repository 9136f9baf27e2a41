// Package util holds small helpers shared across agentdesk packages. It lives
// in internal to avoid committing to public API stability prematurely.
package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"default": func(defaultVal any, val any) any {
		if val == nil || val == "" {
			return defaultVal
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"inc":   func(i int) int { return i + 1 },
	"join": func(sep string, items []string) string {
		return strings.Join(items, sep)
	},
}

// MustParse parses a package level template with the shared helper funcs.
// It panics on malformed templates and is meant for var initialization.
func MustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

// Execute renders tmpl with data into a string.
func Execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// ParseTemplate checks that text is a well formed template using the shared
// helper funcs.
func ParseTemplate(text string) (*template.Template, error) {
	return template.New("inline").Funcs(funcs).Parse(text)
}

// RenderTemplate replaces template variables in text using the values in
// state. Text without template markers is returned unchanged.
func RenderTemplate(text string, state map[string]any) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}
	tmpl, err := ParseTemplate(text)
	if err != nil {
		return "", err
	}
	return Execute(tmpl, state)
}
