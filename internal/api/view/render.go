// Package view renders the HTML pages. Templates are embedded in the
// binary and escaped by html/template.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer implements echo.Renderer. Each page is parsed together with the
// shared layout under its file name without extension.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"ms": func(d time.Duration) int64 { return d.Milliseconds() },
}

// NewRenderer parses every page template.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(f), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, f)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustRenderer is NewRenderer for package init paths and tests.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the layout with the named page's content block.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
