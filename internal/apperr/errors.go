// Package apperr defines the error kinds shared by the build pipeline and the server.
package apperr

import "errors"

var (
	ErrIO            = errors.New("io error")
	ErrTemplate      = errors.New("template error")
	ErrNotFound      = errors.New("not found")
	ErrInvalidSource = errors.New("invalid source")
)
