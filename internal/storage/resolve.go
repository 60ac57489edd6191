package storage

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Resolve maps a client-supplied, possibly percent-encoded relative path onto
// root. It never fails: the result is root itself or a path beneath it, and
// whether that path exists is the caller's concern.
//
// Segments are folded into a relative accumulator. ".." pops the last pushed
// component and is a no-op on an empty accumulator, so nothing can climb above
// root. Escapes that do not decode are kept verbatim; invalid UTF-8 after
// decoding is replaced with U+FFFD.
func Resolve(root, requested string) string {
	var parts []string
	for _, seg := range splitSegments(requested) {
		parts = fold(parts, seg, true)
	}
	return filepath.Join(append([]string{root}, parts...)...)
}

// splitSegments splits on both '/' and '\' regardless of platform.
func splitSegments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

func fold(parts []string, seg string, decode bool) []string {
	switch seg {
	case "", ".":
		return parts
	case "..":
		if len(parts) > 0 {
			return parts[:len(parts)-1]
		}
		return parts
	}
	if !decode {
		return append(parts, seg)
	}
	// A decoded name may itself spell "..", "." or contain separators
	// (%2e%2e, %2f). Re-fold it without decoding a second time.
	for _, sub := range splitSegments(decodeSegment(seg)) {
		parts = fold(parts, sub, false)
	}
	return parts
}

func decodeSegment(seg string) string {
	name, err := url.PathUnescape(seg)
	if err != nil {
		name = seg
	}
	return strings.ToValidUTF8(name, "\uFFFD")
}
