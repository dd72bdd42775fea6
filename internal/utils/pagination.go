// Package utils contains tiny helpers with no domain knowledge, shared by
// the HTTP layer for things like query-string parsing.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 integer, returning def when s is empty
// or not a valid integer. It is the forgiving parser behind ?page= and
// ?page_size= handling: a garbled value degrades to the default instead of
// failing the request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
