package httpapi

import (
	"embed"
	"html/template"
	"io"
)

//go:embed views/*.html
var viewFS embed.FS

type views struct {
	tmpl *template.Template
}

func loadViews() (*views, error) {
	tmpl, err := template.ParseFS(viewFS, "views/*.html")
	if err != nil {
		return nil, err
	}
	return &views{tmpl: tmpl}, nil
}

func (v *views) render(w io.Writer, name string, data any) error {
	return v.tmpl.ExecuteTemplate(w, name, data)
}
