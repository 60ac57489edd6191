// Package testutil provides shared test helpers for decks and output directories.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// ThreeSlides is a deck with two separators.
const ThreeSlides = "# Alpha\n\nfirst slide\n\n---\n\n# Beta\n\nsecond slide\n\n---\n\n# Gamma\n\nthird slide\n"

// WriteDeck writes content to a temporary deck.md and returns its path.
func WriteDeck(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// OutputDir returns a path for a build output directory that does not exist yet.
func OutputDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "build")
}

// Logger returns a logger that discards everything.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
