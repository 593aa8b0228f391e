package templates

import (
	"bytes"
	texttpl "text/template"
)

func renderText(src string, data map[string]any) (string, error) {
	if src == "" {
		return "", nil
	}
	t, err := texttpl.New("text").Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
