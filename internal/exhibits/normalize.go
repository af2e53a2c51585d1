// Package exhibits builds the candidate-file index over an exhibits
// folder: one recursive scan per run, immutable afterward.
package exhibits

import (
	"path/filepath"
	"strings"

	goslug "github.com/gosimple/slug"
)

// exhibitKeywords are the filename prefixes that identify an exhibit
// file after normalization ("Ex. 1 Memo.pdf" -> "ex_1_memo").
var exhibitKeywords = []string{"exhibit_", "exh_", "ex_"}

// NormalizeName collapses a name for matching: lowercase, with every
// run of whitespace or punctuation replaced by a single underscore and
// leading/trailing underscores trimmed. The extension should already
// be stripped; use NameKey for full filenames.
func NormalizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// NameKey normalizes a filename for comparison, stripping the
// extension first.
func NameKey(filename string) string {
	base := filepath.Base(filename)
	return NormalizeName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ExhibitKey strips a leading exhibit keyword from a normalized name:
// "ex_1_memo" -> "1_memo". Names without a keyword come back
// unchanged.
func ExhibitKey(normalized string) string {
	for _, kw := range exhibitKeywords {
		if rest, ok := strings.CutPrefix(normalized, kw); ok && rest != "" {
			return rest
		}
	}
	return normalized
}

// slugKeywords mirror exhibitKeywords in slug form.
var slugKeywords = []string{"exhibit-", "exh-", "ex-"}

// SlugKey folds a raw name through gosimple/slug, absorbing unicode
// and punctuation differences the underscore rule leaves behind
// (accents, ampersands). Computed from the raw filename, not the
// normalized one, so both sides of a comparison use the same folding.
// Used by the Normalized matching tier.
func SlugKey(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	s := goslug.Make(base)
	if s == "" {
		s = strings.ToLower(strings.ReplaceAll(base, " ", "-"))
	}
	// goslug keeps underscores; fold them so "Ex_1_Memo" and
	// "Ex. 1 Memo" compare equal.
	return strings.ReplaceAll(s, "_", "-")
}

// SlugExhibitKey strips a leading exhibit keyword from a slug key:
// "ex-1-memo" -> "1-memo".
func SlugExhibitKey(slugged string) string {
	for _, kw := range slugKeywords {
		if rest, ok := strings.CutPrefix(slugged, kw); ok && rest != "" {
			return rest
		}
	}
	return slugged
}
