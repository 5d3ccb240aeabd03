// Package index stores corpus contours and answers substring queries.
package index

import (
	"context"
	"strings"

	"github.com/jeffreytso/contourdex/model"
)

// Index is a contour store. Query matches pattern as an unanchored,
// case-insensitive substring and returns at most limit entries in the
// order they were inserted. An empty pattern or a limit <= 0 yields an
// empty result, never an error.
type Index interface {
	Insert(ctx context.Context, entry model.CorpusEntry) error
	Clear(ctx context.Context) error
	Query(ctx context.Context, pattern string, limit int) ([]model.CorpusEntry, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Sanitize normalises a raw query into the literal needle every backend
// searches for.
func Sanitize(pattern string) string {
	return strings.ToUpper(pattern)
}

// Matches reports whether contour contains the sanitized needle.
func Matches(contour, needle string) bool {
	return strings.Contains(strings.ToUpper(contour), needle)
}

// Empty reports whether a query can short-circuit to no results.
func Empty(pattern string, limit int) bool {
	return pattern == "" || limit <= 0
}
