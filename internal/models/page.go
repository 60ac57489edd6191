// Package models defines the domain types for mdslide.
package models

import "strconv"

// PageExt is the fixed extension of every rendered page.
const PageExt = ".html"

// Page is one rendered slide, ready to be written to the output directory.
type Page struct {
	Index int
	HTML  []byte
}

// FileName returns the page's file name, e.g. "3.html".
func (p Page) FileName() string {
	return PageFileName(p.Index)
}

// PageFileName returns the file name of the page at index.
func PageFileName(index int) string {
	return strconv.Itoa(index) + PageExt
}

// PageMetadata is a lightweight representation returned by list operations.
type PageMetadata struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Size     int64  `json:"size"`
}
