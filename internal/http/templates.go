package http

import (
	"embed"
	"fmt"
	"html/template"

	"catalogweb/pkg/ptr"
)

//go:embed templates/*.html templates/fragments/*.html
var templatesFS embed.FS

func parseTemplates() (*template.Template, error) {
	tmpl := template.New("").Funcs(template.FuncMap{
		"deref": ptr.Deref[string],
		"fmtPrice": func(p float64) string {
			return fmt.Sprintf("%.2f", p)
		},
	})

	tmpl, err := tmpl.ParseFS(templatesFS, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return tmpl, nil
}
