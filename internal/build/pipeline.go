// Package build runs the deck build: read, tokenize, partition, render, write.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/starford/mdslide/internal/apperr"
	"github.com/starford/mdslide/internal/checksum"
	"github.com/starford/mdslide/internal/parser"
	"github.com/starford/mdslide/internal/render"
	"github.com/starford/mdslide/internal/slides"
	"github.com/starford/mdslide/internal/storage"
)

// Pipeline builds one deck into an output directory.
type Pipeline struct {
	parser   *parser.Parser
	renderer *render.Renderer
	logger   *slog.Logger
}

// New creates a Pipeline. A nil logger falls back to slog.Default().
func New(p *parser.Parser, r *render.Renderer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{parser: p, renderer: r, logger: logger}
}

// Build renders sourcePath into outputDir as 0.html .. N-1.html and returns N.
//
// outputDir is removed and recreated before the first page is written. Any
// error after that point leaves the pages written so far in place.
func (p *Pipeline) Build(sourcePath, outputDir string) (int, error) {
	data, err := readSource(sourcePath)
	if err != nil {
		return 0, err
	}
	if !utf8.Valid(data) {
		p.logger.Warn("source is not valid UTF-8", slog.String("source", sourcePath))
	}

	doc := p.parser.Parse(data)
	parts := slides.Partition(doc.Tokens, parser.IsSeparator)
	total := len(parts)

	store, err := storage.Reset(outputDir)
	if err != nil {
		return 0, err
	}

	for i, slide := range parts {
		page, err := p.renderer.Render(doc, slide, i, total)
		if err != nil {
			return 0, err
		}
		if err := store.Write(page.FileName(), page.HTML); err != nil {
			return 0, fmt.Errorf("write slide %d: %w", i, err)
		}
		p.logger.Debug("slide written",
			slog.Int("index", i),
			slog.Int("tokens", len(slide)),
			slog.String("file", page.FileName()),
			slog.Int("bytes", len(page.HTML)))
	}

	if p.logger.Enabled(context.Background(), slog.LevelDebug) {
		p.logPages(store)
	}
	p.logger.Info("build complete",
		slog.String("source", sourcePath),
		slog.String("output_dir", store.Root()),
		slog.String("title", doc.Title),
		slog.Int("slides", total))

	return total, nil
}

func (p *Pipeline) logPages(store storage.Provider) {
	pages, err := store.List()
	if err != nil {
		p.logger.Warn("list output failed", slog.String("error", err.Error()))
		return
	}
	for _, pg := range pages {
		p.logger.Debug("page",
			slog.String("path", pg.Path),
			slog.Int64("size", pg.Size),
			slog.String("sha256", checksum.Short(pg.Checksum)))
	}
}

func readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read source: %w", apperr.ErrIO, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", apperr.ErrInvalidSource, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read source: %w", apperr.ErrIO, err)
	}
	return data, nil
}
