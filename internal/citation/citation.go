// Package citation defines the citation model and the extractor that
// finds citations in source document text.
//
// Citation grammar:
//
//	Exhibit form: a keyword token ("Ex.", "Exh.", "Exhibit", also bare
//	"Ex" followed by a space or underscore) and an identifier (digits
//	with an optional letter suffix, or a single capital letter),
//	optionally followed by descriptor words and a page phrase
//	("at p. 9", "at page 9").
//
//	Bates form: PREFIX_NNN, one or more capital letters, a separator
//	("_" or "-"), and three or more digits, optionally with a
//	sub-document suffix (".NNN").
package citation

import "strings"

// Kind discriminates the two citation grammars. The set is closed;
// the matcher and page locator switch over it exhaustively.
type Kind int

const (
	Exhibit Kind = iota
	Bates
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Exhibit:
		return "exhibit"
	case Bates:
		return "bates"
	default:
		return "unknown"
	}
}

// Citation is one recognized reference found in source text.
type Citation struct {
	// Kind is Exhibit or Bates.
	Kind Kind

	// RawText is the exact substring matched. It always reproduces
	// verbatim at SourceOffset in the source text.
	RawText string

	// Label is the normalized identifier derived deterministically from
	// RawText (e.g. "1", "A", "1 Memo", "SMITH_005").
	Label string

	// PageHint is the page-within-exhibit the citation claims
	// ("at p. 9"), or 0 when the citation carries no page phrase.
	PageHint int

	// SourceOffset is the byte position of RawText in the document,
	// used for re-insertion of the link.
	SourceOffset int

	// BatesPrefix and BatesNumber are set for Bates citations only.
	BatesPrefix string
	BatesNumber int
}

// End returns the byte offset just past RawText in the source text.
func (c Citation) End() int {
	return c.SourceOffset + len(c.RawText)
}

// BatesLabel returns the canonical PREFIX_NNN token for a Bates
// citation, including any sub-document suffix. For exhibit citations
// it returns "".
func (c Citation) BatesLabel() string {
	if c.Kind != Bates {
		return ""
	}
	return c.Label
}

// normalizeLabel collapses runs of whitespace in an exhibit label to
// single spaces and trims the ends.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
