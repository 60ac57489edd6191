// Package slides splits a token stream into slides.
package slides

// Partition splits tokens at every token for which isSeparator reports true.
// Separators are dropped. With k separators the result always has k+1 slides,
// in input order; adjacent separators (or a separator at either end) yield an
// empty slide rather than being skipped.
//
// Each slide is a fresh slice, so appending to one never clobbers another.
func Partition[T any](tokens []T, isSeparator func(T) bool) [][]T {
	out := make([][]T, 0, 1)
	start := 0
	for i, tok := range tokens {
		if !isSeparator(tok) {
			continue
		}
		out = append(out, clone(tokens[start:i]))
		start = i + 1
	}
	return append(out, clone(tokens[start:]))
}

func clone[T any](s []T) []T {
	c := make([]T, len(s))
	copy(c, s)
	return c
}
