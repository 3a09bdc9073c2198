package frontend

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

// GetTemplateFS returns the embedded page templates.
func GetTemplateFS() (fs.FS, error) {
	return fs.Sub(templateFS, "templates")
}

// LoadTemplates parses every embedded page template.
func LoadTemplates() (*template.Template, error) {
	sub, err := GetTemplateFS()
	if err != nil {
		return nil, err
	}
	return template.New("").Funcs(templateFuncs).ParseFS(sub, "*.html")
}
