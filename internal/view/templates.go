package view

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names rendered by the console handlers.
const (
	TemplatePage = "users_page"
	TemplateBody = "users_body"
)

// Templates parses the embedded console templates.
func Templates() (*template.Template, error) {
	return template.New("useradmin").ParseFS(templateFS, "templates/*.html")
}
