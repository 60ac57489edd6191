package server

import (
	"fmt"
	"html"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/starford/mdslide/internal/apperr"
	"github.com/starford/mdslide/internal/storage"
)

const defaultContentType = "application/octet-stream"

// Handler serves regular files from beneath a root directory.
//
// Handler holds no mutable state; one value serves all requests concurrently.
type Handler struct {
	root   string
	logger *slog.Logger
}

// NewHandler creates a handler rooted at root. A nil logger falls back to slog.Default().
func NewHandler(root string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{root: root, logger: logger}
}

// requestedPath returns the request path without its leading slash, still
// percent-encoded so that storage.Resolve decodes each escape exactly once.
func requestedPath(r *http.Request) string {
	return strings.TrimPrefix(r.URL.EscapedPath(), "/")
}

// ServeFile handles GET /*.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	requested := requestedPath(r)
	path := storage.Resolve(h.root, requested)

	f, info, err := openRegular(path)
	if err != nil {
		h.logger.Debug("serve: not found",
			slog.String("requested", requested),
			slog.String("resolved", path),
			slog.String("error", err.Error()))
		writeNotFound(w, requested)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType(path))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.CopyN(w, f, info.Size()); err != nil {
		h.logger.Warn("serve: copy failed",
			slog.String("resolved", path),
			slog.String("error", err.Error()))
	}
}

// openRegular opens path only if it is a regular file. The file may vanish
// between the stat and the open; that is reported like any other miss.
func openRegular(path string) (*os.File, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("%w: not a regular file", apperr.ErrNotFound)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	// Length comes from the opened file so it matches the bytes we stream.
	info, err = f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: changed after open", apperr.ErrNotFound)
	}
	return f, info, nil
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return defaultContentType
}

func writeNotFound(w http.ResponseWriter, requested string) {
	body := fmt.Sprintf("<!DOCTYPE html>\n<html><head><title>404 Not Found</title></head>"+
		"<body><h1>404 Not Found</h1><p>No such file: <code>/%s</code></p></body></html>\n",
		html.EscapeString(requested))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, body)
}
