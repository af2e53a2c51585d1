// Package pagelocate resolves the page a matched citation points at.
//
// Bates matches take the first page whose extracted text carries the
// cited label (Bates stamps increase monotonically through a document,
// so the first hit is authoritative). Exhibit matches with a page hint
// use the hint directly, clamped to the document's page count.
package pagelocate

import (
	"context"
	"fmt"

	"github.com/mjlindsay/anchor/internal/citation"
	"github.com/mjlindsay/anchor/internal/exhibits"
	"github.com/mjlindsay/anchor/internal/matcher"
	"github.com/mjlindsay/anchor/internal/pdf"
	"github.com/mjlindsay/anchor/internal/retry"
)

// State is the locator's terminal state for one match.
type State int

const (
	// NotStarted: nothing to locate (unresolved match, or an exhibit
	// citation without a page hint); the link stays document-level.
	NotStarted State = iota
	// Scanning is the transient state while pages are being read; it
	// never escapes Locate.
	Scanning
	// Found: ResolvedPage was set on the match.
	Found
	// Exhausted: every page was scanned without finding the label; the
	// link falls back to the document level.
	Exhausted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Scanning:
		return "scanning"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Locator sets ResolvedPage on matches. Index supplies memoized Bates
// ranges; PDF supplies page counts for hint clamping. PDF may be nil,
// in which case hints are used unclamped.
type Locator struct {
	Index *exhibits.Index
	PDF   pdf.Reader
	Retry retry.Policy
}

// Locate determines the page for a resolved match and stores it in
// m.ResolvedPage. On Exhausted, ResolvedPage stays 0 and the caller
// links to the document. An error means the PDF could not be read;
// the match degrades to a document-level link.
func (l *Locator) Locate(ctx context.Context, m *matcher.Match) (State, error) {
	if !m.Resolved() {
		return NotStarted, nil
	}

	switch m.Citation.Kind {
	case citation.Exhibit:
		return l.locateHint(ctx, m)
	case citation.Bates:
		return l.locateBates(ctx, m)
	default:
		return NotStarted, fmt.Errorf("unknown citation kind %v", m.Citation.Kind)
	}
}

// locateHint applies an exhibit citation's page hint, clamped to the
// target's page count when it can be read.
func (l *Locator) locateHint(ctx context.Context, m *matcher.Match) (State, error) {
	hint := m.Citation.PageHint
	if hint <= 0 {
		return NotStarted, nil
	}
	if l.PDF != nil && m.File.IsPDF() {
		if count, err := l.pageCount(ctx, m.File.Path); err == nil && count > 0 && hint > count {
			hint = count
		}
	}
	m.ResolvedPage = hint
	return Found, nil
}

func (l *Locator) locateBates(ctx context.Context, m *matcher.Match) (State, error) {
	c := m.Citation

	if m.Degraded {
		// The PDF resisted scanning; derive the page from the filename's
		// starting number (page 1 carries the start label).
		page := c.BatesNumber - m.File.BatesStart + 1
		if page < 1 {
			page = 1
		}
		m.ResolvedPage = page
		return Found, nil
	}

	r, err := l.Index.BatesRange(ctx, m.File)
	if err != nil {
		return Exhausted, fmt.Errorf("page scan %s: %w", m.File.Path, err)
	}
	if page, ok := r.PageFor(c.Label); ok {
		m.ResolvedPage = page
		return Found, nil
	}
	if page, ok := r.PageForNumber(c.BatesPrefix, c.BatesNumber); ok {
		m.ResolvedPage = page
		return Found, nil
	}
	return Exhausted, nil
}

func (l *Locator) pageCount(ctx context.Context, path string) (int, error) {
	var count int
	err := l.Retry.Do(ctx, func() error {
		var err error
		count, err = l.PDF.NumPages(path)
		return err
	})
	return count, err
}
