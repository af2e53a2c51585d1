package citation

import (
	"regexp"
	"sort"
	"strconv"
)

// exhibitRe matches exhibit citations: keyword, identifier, optional
// descriptor words, optional page phrase. The page phrase feeds
// PageHint but is excluded from RawText, so the inserted link covers
// only the reference token and the phrase survives in the prose.
//
// Submatches: 1=identifier, 2=descriptor words, 3=page phrase,
// 4=page number. Alternatives are ordered longest-keyword-first so
// "Exhibit 1" is not consumed as "Ex" + "hibit".
var exhibitRe = regexp.MustCompile(
	`\b(?i:exhibit|exh\.?|ex\.?)[\s_]*(\d+[A-Z]?|[A-Z])\b((?: [A-Z][A-Za-z0-9'&-]*)*)(,? +at +(?i:pp?\.?|page) +(\d+))?`)

// batesRe matches Bates tokens: PREFIX_NNN with an optional
// sub-document suffix. Submatches: 1=prefix, 2=number, 3=suffix.
var batesRe = regexp.MustCompile(`\b([A-Z]+)[_-](\d{3,})(\.\d+)?\b`)

// Extract finds all citations in text, in document order.
//
// Overlapping candidate matches are resolved by preferring the longest
// match at a given offset; later matches overlapping an accepted span
// are dropped. Citations are deduplicated only by offset, never by
// label: repeated citations of the same exhibit each get independent
// records. Text containing no citation tokens yields an empty slice.
func Extract(text string) []Citation {
	cands := collectExhibit(text)
	cands = append(cands, collectBates(text)...)

	// Longest match at an offset wins; Bates beats Exhibit on exact
	// span ties (the more specific grammar).
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.SourceOffset != b.SourceOffset {
			return a.SourceOffset < b.SourceOffset
		}
		if len(a.RawText) != len(b.RawText) {
			return len(a.RawText) > len(b.RawText)
		}
		return a.Kind == Bates && b.Kind == Exhibit
	})

	out := make([]Citation, 0, len(cands))
	lastEnd := 0
	for _, c := range cands {
		if c.SourceOffset < lastEnd {
			continue
		}
		out = append(out, c)
		lastEnd = c.End()
	}
	return out
}

func collectExhibit(text string) []Citation {
	var out []Citation
	for _, m := range exhibitRe.FindAllStringSubmatchIndex(text, -1) {
		ident := text[m[2]:m[3]]

		descriptor := ""
		if m[4] >= 0 {
			descriptor = text[m[4]:m[5]]
		}

		// RawText ends where the page phrase begins: the phrase is
		// metadata about the citation, not part of the reference token.
		end := m[1]
		hint := 0
		if m[6] >= 0 {
			end = m[6]
			// The page number subgroup only ever captures digits; a
			// parse failure here would mean the regexp is wrong.
			hint, _ = strconv.Atoi(text[m[8]:m[9]])
		}
		raw := text[m[0]:end]

		out = append(out, Citation{
			Kind:         Exhibit,
			RawText:      raw,
			Label:        normalizeLabel(ident + descriptor),
			PageHint:     hint,
			SourceOffset: m[0],
		})
	}
	return out
}

func collectBates(text string) []Citation {
	var out []Citation
	for _, m := range batesRe.FindAllStringSubmatchIndex(text, -1) {
		raw := text[m[0]:m[1]]
		prefix := text[m[2]:m[3]]
		num, err := strconv.Atoi(text[m[4]:m[5]])
		if err != nil {
			continue
		}

		out = append(out, Citation{
			Kind:         Bates,
			RawText:      raw,
			Label:        raw,
			SourceOffset: m[0],
			BatesPrefix:  prefix,
			BatesNumber:  num,
		})
	}
	return out
}
