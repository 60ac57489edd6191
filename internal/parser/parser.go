// Package parser turns a Markdown deck into a stream of top-level block tokens.
package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Options controls the goldmark dialect.
type Options struct {
	// GFM enables tables, strikethrough, autolinks and task lists.
	GFM bool
	// UnsafeHTML passes raw HTML blocks and inline HTML through unchanged.
	UnsafeHTML bool
}

// NewMarkdown builds the goldmark instance shared by the parser and the renderer.
func NewMarkdown(o Options) goldmark.Markdown {
	var opts []goldmark.Option
	if o.GFM {
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	}
	if o.UnsafeHTML {
		opts = append(opts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return goldmark.New(opts...)
}

// Document is a parsed deck.
type Document struct {
	Frontmatter map[string]interface{}
	Title       string
	// Source is the Markdown body the tokens' segments point into.
	Source []byte
	// Tokens are the top-level block nodes in document order.
	Tokens []ast.Node
}

// Parser tokenizes Markdown decks.
type Parser struct {
	md goldmark.Markdown
}

// New creates a Parser backed by md.
func New(md goldmark.Markdown) *Parser {
	return &Parser{md: md}
}

// Parse splits off frontmatter and tokenizes the body. It is total over any input.
func (p *Parser) Parse(data []byte) *Document {
	fm, body := splitFrontmatter(data)

	root := p.md.Parser().Parse(text.NewReader(body))
	var tokens []ast.Node
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		tokens = append(tokens, n)
	}

	return &Document{
		Frontmatter: fm,
		Title:       deriveTitle(fm, tokens, body),
		Source:      body,
		Tokens:      tokens,
	}
}

// IsSeparator reports whether n is a slide boundary: a top-level thematic break.
func IsSeparator(n ast.Node) bool {
	return n.Kind() == ast.KindThematicBreak
}

// splitFrontmatter separates YAML frontmatter (between leading --- lines)
// from the Markdown body. Without a closing delimiter, or when the block is
// not a non-empty YAML mapping, the entire content is body: a deck may open
// with a slide break.
func splitFrontmatter(data []byte) (map[string]interface{}, []byte) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	first, _, ok := bytes.Cut(trimmed, []byte("\n"))
	if !ok || string(bytes.TrimRight(first, " \t\r")) != delim {
		return nil, data
	}

	// The block closes on the first line that is exactly the delimiter.
	rest := trimmed[len(first)+1:]
	var yamlBlock, afterDelim []byte
	closed := false
	for pos := 0; pos < len(rest); {
		line := rest[pos:]
		next := len(rest)
		if nl := bytes.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
			next = pos + nl + 1
		}
		if string(bytes.TrimRight(line, " \t\r")) == delim {
			yamlBlock, afterDelim, closed = rest[:pos], rest[next:], true
			break
		}
		pos = next
	}
	if !closed {
		return nil, data
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil || len(fm) == 0 {
		return nil, data
	}

	return fm, bytes.TrimLeft(afterDelim, "\n\r")
}

// deriveTitle returns the frontmatter "title" if present, otherwise the text
// of the first top-level H1, otherwise empty string.
func deriveTitle(fm map[string]interface{}, tokens []ast.Node, source []byte) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, n := range tokens {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			return strings.TrimSpace(plainText(h, source))
		}
	}
	return ""
}

func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
