package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"price": formatPrice,
}

// renderer holds one template set per page so that every page can define "content".
type renderer struct {
	pages map[string]*template.Template
	grid  *template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"home", "create"} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	grid, err := template.New("grid").Funcs(funcs).ParseFS(templateFS, "templates/grid.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse grid template: %w", err)
	}
	r.grid = grid
	return r, nil
}

func (r *renderer) page(w io.Writer, name string, data pageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func (r *renderer) listing(w io.Writer, data gridData) error {
	return r.grid.ExecuteTemplate(w, "grid", data)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
