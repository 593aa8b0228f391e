package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var fs embed.FS

var subjects = map[string]string{
	"welcome": "Welcome to Socialite",
}

var texts = map[string]string{
	"welcome": "Hi {{.Username}},\n\nyour account is ready. Log in and share your first post.\n",
}

// Render produces subject, text and HTML bodies for a named template.
func Render(name string, data map[string]any) (string, string, string, error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	t, err := htmpl.ParseFS(fs, name+".tmpl")
	if err != nil {
		return "", "", "", err
	}
	var html bytes.Buffer
	if err := t.Execute(&html, data); err != nil {
		return "", "", "", err
	}

	text, err := renderText(texts[name], data)
	if err != nil {
		return "", "", "", err
	}
	return subject, text, html.String(), nil
}
