// Package render turns an assembled estimate into report markup and PDF.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/abaevpavel/pdfer-base/currency"
	"github.com/abaevpavel/pdfer-base/estimate"
	"github.com/abaevpavel/pdfer-base/model"
)

//go:embed templates/*.html
var templateFS embed.FS

const internalScopeTemplate = "internal_scope.html"

// View is the data a report template sees.
type View struct {
	Data        *model.Document
	CustomItems []*model.Item
	GeneratedAt time.Time
}

// NewView wraps an assembled result for rendering.
func NewView(result *estimate.Result, generatedAt time.Time) View {
	return View{
		Data:        result.Document,
		CustomItems: result.CustomItems,
		GeneratedAt: generatedAt,
	}
}

// Funcs are the filters available to report templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money": currency.Money,
		"text":  text,
	}
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// HTMLRenderer renders the internal scope report template.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New(internalScopeTemplate).Funcs(Funcs()).ParseFS(templateFS, "templates/"+internalScopeTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render writes the report markup for view to w.
func (r *HTMLRenderer) Render(w io.Writer, view View) error {
	if view.Data == nil {
		view.Data = &model.Document{}
	}
	if err := r.tmpl.ExecuteTemplate(w, internalScopeTemplate, view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
