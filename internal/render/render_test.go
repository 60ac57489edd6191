package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuin/goldmark/ast"

	"github.com/starford/mdslide/internal/apperr"
	"github.com/starford/mdslide/internal/parser"
	"github.com/starford/mdslide/internal/slides"
)

func testDeck(t *testing.T, src string) (*parser.Document, [][]ast.Node, *Renderer) {
	t.Helper()
	md := parser.NewMarkdown(parser.Options{UnsafeHTML: true})
	doc := parser.New(md).Parse([]byte(src))
	r, err := New(md)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return doc, slides.Partition(doc.Tokens, parser.IsSeparator), r
}

func TestRender_DefaultTemplate(t *testing.T) {
	doc, parts, r := testDeck(t, "# One\n\n---\n\n# Two *em*\n\n---\n\n# Three\n")
	if len(parts) != 3 {
		t.Fatalf("slides = %d, want 3", len(parts))
	}

	page, err := r.Render(doc, parts[1], 1, len(parts))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(page.HTML)
	for _, want := range []string{
		"<h1>Two <em>em</em></h1>",
		`href="0.html"`,
		`href="2.html"`,
		"2 / 3",
		"<title>One · 2 / 3</title>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "&lt;h1&gt;") {
		t.Error("content was escaped")
	}
	if page.FileName() != "1.html" {
		t.Errorf("file name = %q", page.FileName())
	}
}

func TestRender_NavigationOmittedAtEnds(t *testing.T) {
	doc, parts, r := testDeck(t, "first\n\n---\n\nlast\n")

	first, err := r.Render(doc, parts[0], 0, 2)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(first.HTML), `id="prev"`) {
		t.Error("first slide should not link to a previous slide")
	}
	if !strings.Contains(string(first.HTML), `href="1.html"`) {
		t.Error("first slide should link to 1.html")
	}

	last, err := r.Render(doc, parts[1], 1, 2)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(last.HTML), `id="next"`) {
		t.Error("last slide should not link to a next slide")
	}
}

func TestRender_EmptySlide(t *testing.T) {
	doc, parts, r := testDeck(t, "a\n\n---\n\n---\n\nb\n")
	if len(parts) != 3 || len(parts[1]) != 0 {
		t.Fatalf("expected an empty middle slide, got %d slides", len(parts))
	}
	page, err := r.Render(doc, parts[1], 1, 3)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(page.HTML), "2 / 3") {
		t.Error("empty slide still needs index metadata")
	}
}

func TestRender_RawHTMLPassesThrough(t *testing.T) {
	doc, parts, r := testDeck(t, "<div class=\"x\">raw</div>\n")
	page, err := r.Render(doc, parts[0], 0, 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(page.HTML), `<div class="x">raw</div>`) {
		t.Errorf("raw html lost: %s", page.HTML)
	}
}

func TestRender_CustomTemplate(t *testing.T) {
	md := parser.NewMarkdown(parser.Options{})
	doc := parser.New(md).Parse([]byte("hello"))
	r, err := New(md, WithTemplateText("t", `{{.index}}|{{.num_of_slides}}|{{.content}}`))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	page, err := r.Render(doc, doc.Tokens, 4, 9)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := string(page.HTML); got != "4|9|<p>hello</p>\n" {
		t.Errorf("page = %q", got)
	}
}

func TestRender_UndefinedVariable(t *testing.T) {
	md := parser.NewMarkdown(parser.Options{})
	doc := parser.New(md).Parse([]byte("x"))
	r, err := New(md, WithTemplateText("t", `{{.nope}}`))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = r.Render(doc, doc.Tokens, 0, 1)
	if !errors.Is(err, apperr.ErrTemplate) {
		t.Errorf("err = %v, want ErrTemplate", err)
	}
}

func TestNew_MalformedTemplate(t *testing.T) {
	md := parser.NewMarkdown(parser.Options{})
	_, err := New(md, WithTemplateText("t", `{{if .index}}`))
	if !errors.Is(err, apperr.ErrTemplate) {
		t.Errorf("err = %v, want ErrTemplate", err)
	}
}

func TestWithTemplateFile(t *testing.T) {
	md := parser.NewMarkdown(parser.Options{})
	path := filepath.Join(t.TempDir(), "page.tmpl")
	if err := os.WriteFile(path, []byte(`[{{.content}}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := New(md, WithTemplateFile(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	doc := parser.New(md).Parse([]byte("*x*"))
	page, err := r.Render(doc, doc.Tokens, 0, 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := string(page.HTML); got != "[<p><em>x</em></p>\n]" {
		t.Errorf("page = %q", got)
	}

	_, err = New(md, WithTemplateFile(filepath.Join(t.TempDir(), "missing.tmpl")))
	if !errors.Is(err, apperr.ErrIO) {
		t.Errorf("err = %v, want ErrIO", err)
	}
}

func TestRender_ContentVerbatimInAnyContext(t *testing.T) {
	md := parser.NewMarkdown(parser.Options{})
	doc := parser.New(md).Parse([]byte("# Hi **there**"))
	want := "<h1>Hi <strong>there</strong></h1>\n"

	for name, text := range map[string]string{
		"textarea":  `<textarea>{{.content}}</textarea>`,
		"attribute": `<div data-c="{{.content}}"></div>`,
		"script":    `<script>{{.content}}</script>`,
	} {
		t.Run(name, func(t *testing.T) {
			r, err := New(md, WithTemplateText("t", text))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			page, err := r.Render(doc, doc.Tokens, 0, 1)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got, exp := string(page.HTML), strings.Replace(text, "{{.content}}", want, 1); got != exp {
				t.Errorf("page = %q, want %q", got, exp)
			}
		})
	}
}

func TestRender_DefaultTemplateEscapesTitle(t *testing.T) {
	doc, parts, r := testDeck(t, "---\ntitle: \"<b>A & B</b>\"\n---\nbody\n")
	page, err := r.Render(doc, parts[0], 0, 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(page.HTML), "<title>&lt;b&gt;A &amp; B&lt;/b&gt; · 1 / 1</title>") {
		t.Errorf("title not escaped: %s", page.HTML)
	}
}
