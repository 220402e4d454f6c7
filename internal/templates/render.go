// Package templates renders the HTML fragments sent to the map viewer.
package templates

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"os"
	"strconv"
	"sync"
)

//go:embed fragments/*.html
var embedded embed.FS

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// fixed formats a float with the given number of decimals.
	"fixed": func(v float64, decimals int) string {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	},
	// measure formats an optional value with one decimal and its units,
	// or "--" when the value is missing.
	"measure": func(v *float64, units string) string {
		if v == nil {
			return "--"
		}
		s := strconv.FormatFloat(*v, 'f', 1, 64)
		if units != "" {
			s += " " + units
		}
		return s
	},
}

// Renderer manages HTML fragment templates.
type Renderer struct {
	templates *template.Template
	mu        sync.RWMutex
}

// New creates a renderer over the built-in fragments.
func New() (*Renderer, error) {
	sub, err := fs.Sub(embedded, "fragments")
	if err != nil {
		return nil, err
	}
	return NewFS(sub)
}

// NewFS creates a renderer over the *.html files at the root of fsys.
func NewFS(fsys fs.FS) (*Renderer, error) {
	tmpl, err := parse(fsys)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToBuffer(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(buf, name, data)
}

// Reload replaces the templates with the *.html files in dir, which lets a
// web directory override the built-in fragments during development.
func (r *Renderer) Reload(dir string) error {
	tmpl, err := parse(os.DirFS(dir))
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	return nil
}

func parse(fsys fs.FS) (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(fsys, "*.html")
}
