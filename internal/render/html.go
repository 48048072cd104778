package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// HTML renders the full page for snap.
func HTML(snap Snapshot) (string, error) {
	return execute("page", snap)
}

// AppHTML renders the page body, pushed to connected browsers on every change.
func AppHTML(snap Snapshot) (string, error) {
	return execute("app", snap)
}

// MessagesHTML renders only the active chat's message list.
func MessagesHTML(snap Snapshot) (string, error) {
	return execute("messages", snap)
}

func execute(name string, snap Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, name, snap); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
