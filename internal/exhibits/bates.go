package exhibits

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mjlindsay/anchor/internal/pdf"
	"github.com/mjlindsay/anchor/internal/retry"
	"github.com/mjlindsay/anchor/internal/scancache"
)

// batesNameRe matches a Bates-stamped filename (extension already
// stripped): PREFIX_NNN or PREFIX-NNN.
var batesNameRe = regexp.MustCompile(`^([A-Za-z]+)[_-](\d{3,})$`)

// batesTokenRe matches Bates tokens inside extracted page text,
// including sub-document suffixes.
var batesTokenRe = regexp.MustCompile(`\b([A-Z]+)[_-](\d{3,})(\.\d+)?\b`)

// ParseBatesName parses prefix and starting number from a filename
// like "SMITH_003.pdf". ok is false for names outside the grammar.
func ParseBatesName(filename string) (prefix string, start int, ok bool) {
	base := filename
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	m := batesNameRe.FindStringSubmatch(base)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return strings.ToUpper(m[1]), n, true
}

// BatesRange is the set of Bates labels physically present in one PDF,
// discovered by scanning its pages. A range may span several prefixes
// when sub-documents were concatenated into one file.
type BatesRange struct {
	// Labels maps each distinct label to the first page it appears on
	// (1-based).
	Labels map[string]int
}

// Contains reports whether the exact label appears in the file.
func (r *BatesRange) Contains(label string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Labels[label]
	return ok
}

// ContainsNumber reports whether any label with the given prefix and
// number appears in the file, regardless of zero padding or
// sub-document suffix.
func (r *BatesRange) ContainsNumber(prefix string, n int) bool {
	if r == nil {
		return false
	}
	for label := range r.Labels {
		p, num, ok := splitBatesLabel(label)
		if ok && p == prefix && num == n {
			return true
		}
	}
	return false
}

// PageFor returns the first page the label appears on.
func (r *BatesRange) PageFor(label string) (int, bool) {
	if r == nil {
		return 0, false
	}
	page, ok := r.Labels[label]
	return page, ok
}

// PageForNumber returns the first page carrying any label with the
// given prefix and number, regardless of zero padding. Used when the
// cited spelling differs from the stamped one (SMITH_5 vs SMITH_005).
func (r *BatesRange) PageForNumber(prefix string, n int) (int, bool) {
	if r == nil {
		return 0, false
	}
	best := 0
	for label, page := range r.Labels {
		p, num, ok := splitBatesLabel(label)
		if !ok || p != prefix || num != n {
			continue
		}
		if best == 0 || page < best {
			best = page
		}
	}
	return best, best != 0
}

// Span returns the numeric range covered for a prefix. ok is false if
// the prefix does not appear.
func (r *BatesRange) Span(prefix string) (lo, hi int, ok bool) {
	if r == nil {
		return 0, 0, false
	}
	for label := range r.Labels {
		p, num, valid := splitBatesLabel(label)
		if !valid || p != prefix {
			continue
		}
		if !ok || num < lo {
			lo = num
		}
		if !ok || num > hi {
			hi = num
		}
		ok = true
	}
	return lo, hi, ok
}

func splitBatesLabel(label string) (prefix string, n int, ok bool) {
	m := batesTokenRe.FindStringSubmatch(label)
	if m == nil || len(m[0]) != len(label) {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// Scanner discovers the BatesRange of a PDF by reading every page's
// text. Results are memoized in the persistent scan cache when one is
// attached, keyed by path+size+mtime.
type Scanner struct {
	PDF   pdf.Reader
	Cache *scancache.Cache // optional
	Retry retry.Policy
}

// Scan reads all pages of the PDF at path and collects every distinct
// Bates label present. Page reads go through the retry policy;
// a page that still fails after retries aborts the scan.
func (s *Scanner) Scan(ctx context.Context, path string) (*BatesRange, error) {
	if s.PDF == nil {
		return nil, fmt.Errorf("scan %s: no pdf reader available", path)
	}

	var size, mtime int64
	if st, err := os.Stat(path); err == nil {
		size, mtime = st.Size(), st.ModTime().Unix()
		if s.Cache != nil {
			if labels, ok, err := s.Cache.Get(path, size, mtime); err == nil && ok {
				return &BatesRange{Labels: labels}, nil
			}
		}
	}

	var pages int
	err := s.Retry.Do(ctx, func() error {
		var err error
		pages, err = s.PDF.NumPages(path)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	labels := make(map[string]int)
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var text string
		err := s.Retry.Do(ctx, func() error {
			var err error
			text, err = s.PDF.PageText(path, page)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s page %d: %w", path, page, err)
		}
		for _, m := range batesTokenRe.FindAllString(text, -1) {
			if _, seen := labels[m]; !seen {
				labels[m] = page
			}
		}
	}

	if s.Cache != nil && size > 0 {
		// Cache failures only cost a rescan next run.
		_ = s.Cache.Put(path, size, mtime, labels)
	}
	return &BatesRange{Labels: labels}, nil
}
