package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/mdslide/internal/apperr"
	"github.com/starford/mdslide/internal/checksum"
	"github.com/starford/mdslide/internal/models"
)

const tmpPattern = ".mdslide-tmp-*"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the output directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: storage: stat root: %w", apperr.ErrIO, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: storage: root is not a directory: %s", apperr.ErrIO, abs)
	}
	return &FS{root: abs}, nil
}

// Reset removes dir recursively if it exists and recreates it empty.
//
// dir does not exist between the two steps. A caller that fails after Reset
// leaves dir absent or partially populated; nothing is rolled back.
func Reset(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve output dir: %w", err)
	}
	if filepath.Dir(abs) == abs {
		return nil, fmt.Errorf("%w: storage: refusing to reset filesystem root %s", apperr.ErrIO, abs)
	}
	if err := os.RemoveAll(abs); err != nil {
		return nil, fmt.Errorf("%w: storage: remove %s: %w", apperr.ErrIO, abs, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: storage: mkdir %s: %w", apperr.ErrIO, abs, err)
	}
	return NewFS(abs)
}

// Root returns the absolute output directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(joined, f.root+string(os.PathSeparator)) && joined != f.root {
		return "", fmt.Errorf("storage: path escapes output root: %s", rel)
	}
	return joined, nil
}

// List walks the root and returns metadata for every regular file, sorted by path.
// Leftover temp files from interrupted writes are skipped.
func (f *FS) List() ([]models.PageMetadata, error) {
	var out []models.PageMetadata
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(tmpPattern, d.Name()); ok {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.PageMetadata{
			Path:     filepath.ToSlash(rel),
			Checksum: checksum.Sum(data),
			Size:     int64(len(data)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: storage: list: %w", apperr.ErrIO, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: storage: mkdir: %w", apperr.ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return fmt.Errorf("%w: storage: create temp: %w", apperr.ErrIO, err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("%w: storage: write temp: %w", apperr.ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: storage: fsync: %w", apperr.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: storage: close temp: %w", apperr.ErrIO, err)
	}
	// CreateTemp uses 0600; pages are meant to be served.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: storage: chmod: %w", apperr.ErrIO, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("%w: storage: rename: %w", apperr.ErrIO, err)
	}
	success = true
	return nil
}
