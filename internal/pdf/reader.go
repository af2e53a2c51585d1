// Package pdf provides read-only access to PDF page text.
//
// The engine never mutates a PDF; everything it needs is the page
// count and the extractable text of individual pages. Reader is the
// collaborator boundary: the real implementation shells out to the
// poppler tools, tests use StaticReader, and Cached memoizes page
// text for a run.
package pdf

import (
	"errors"
	"fmt"
)

// ErrNoSuchPage is returned for a page index outside [1, NumPages].
var ErrNoSuchPage = errors.New("no such page")

// Reader supplies page count and per-page extractable text for a PDF
// on disk. Page indexes are 1-based.
type Reader interface {
	NumPages(path string) (int, error)
	PageText(path string, page int) (string, error)
}

// StaticReader is an in-memory Reader keyed by path, for tests and
// fixtures. Pages[path][i] holds the text of page i+1.
type StaticReader struct {
	Pages map[string][]string
}

// NumPages implements Reader.
func (r *StaticReader) NumPages(path string) (int, error) {
	pages, ok := r.Pages[path]
	if !ok {
		return 0, fmt.Errorf("open %s: unknown document", path)
	}
	return len(pages), nil
}

// PageText implements Reader.
func (r *StaticReader) PageText(path string, page int) (string, error) {
	pages, ok := r.Pages[path]
	if !ok {
		return "", fmt.Errorf("open %s: unknown document", path)
	}
	if page < 1 || page > len(pages) {
		return "", fmt.Errorf("%s page %d: %w", path, page, ErrNoSuchPage)
	}
	return pages[page-1], nil
}
