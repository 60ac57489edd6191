// Package render turns one slide's tokens into a standalone HTML page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"

	"github.com/starford/mdslide/internal/apperr"
	"github.com/starford/mdslide/internal/models"
	"github.com/starford/mdslide/internal/parser"
)

//go:embed templates/slide.html.tmpl
var templateFS embed.FS

const defaultTemplate = "templates/slide.html.tmpl"

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
}

// Option configures a Renderer.
type Option func(*Renderer) error

// WithTemplateFile replaces the embedded page template with the file at path.
func WithTemplateFile(path string) Option {
	return func(r *Renderer) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: read template %s: %w", apperr.ErrIO, path, err)
		}
		return r.parse(filepath.Base(path), string(data))
	}
}

// WithTemplateText replaces the embedded page template with text.
func WithTemplateText(name, text string) Option {
	return func(r *Renderer) error {
		return r.parse(name, text)
	}
}

// Renderer renders slides through goldmark and expands them into the page template.
type Renderer struct {
	html renderer.Renderer
	tmpl *template.Template
}

// New creates a Renderer using md's HTML renderer. Without a template option
// the embedded default template is used.
func New(md goldmark.Markdown, opts ...Option) (*Renderer, error) {
	r := &Renderer{html: md.Renderer()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.tmpl == nil {
		data, err := templateFS.ReadFile(defaultTemplate)
		if err != nil {
			return nil, fmt.Errorf("%w: embedded template: %w", apperr.ErrIO, err)
		}
		if err := r.parse(filepath.Base(defaultTemplate), string(data)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Renderer) parse(name, text string) error {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", apperr.ErrTemplate, name, err)
	}
	r.tmpl = t
	return nil
}

// Content renders the slide's tokens, in order, to HTML.
func (r *Renderer) Content(source []byte, slide []ast.Node) ([]byte, error) {
	var buf bytes.Buffer
	for _, n := range slide {
		if err := r.html.Render(&buf, source, n); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Render produces the page for the slide at index out of total.
//
// The template sees index, content, num_of_slides and title. Expansion is
// plain text substitution: content is already HTML and goes in byte for byte
// wherever the template puts it. Templates escape title themselves ({{html .title}}).
func (r *Renderer) Render(doc *parser.Document, slide []ast.Node, index, total int) (models.Page, error) {
	content, err := r.Content(doc.Source, slide)
	if err != nil {
		return models.Page{}, fmt.Errorf("render slide %d: %w", index, err)
	}

	vars := map[string]any{
		"index":         index,
		"content":       string(content),
		"num_of_slides": total,
		"title":         doc.Title,
	}

	var out bytes.Buffer
	if err := r.tmpl.Execute(&out, vars); err != nil {
		return models.Page{}, fmt.Errorf("%w: slide %d: %w", apperr.ErrTemplate, index, err)
	}
	return models.Page{Index: index, HTML: out.Bytes()}, nil
}
