// Package storage defines the build output directory abstraction and the
// path resolver used to serve it.
package storage

import "github.com/starford/mdslide/internal/models"

// Provider is the interface for build output operations.
type Provider interface {
	// Root returns the absolute path of the output directory.
	Root() string
	// List returns metadata for every page file under the root.
	List() ([]models.PageMetadata, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}
