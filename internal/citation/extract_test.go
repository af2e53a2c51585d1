package citation

import (
	"strings"
	"testing"
)

func TestExtractExhibitForms(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		label    string
		pageHint int
	}{
		{"period space", "See Ex. 1 for details.", "1", 0},
		{"period no space", "See Ex.1 for details.", "1", 0},
		{"space only", "See Ex 1 for details.", "1", 0},
		{"underscore", "See Ex_1 for details.", "1", 0},
		{"exh abbreviation", "See Exh. 2 for details.", "2", 0},
		{"full keyword", "See Exhibit 12 for details.", "12", 0},
		{"letter identifier", "See Ex. A for details.", "A", 0},
		{"digit letter suffix", "See Ex. 2B for details.", "2B", 0},
		{"descriptor words", "See Ex. 1 Memo for details.", "1 Memo", 0},
		{"page phrase", "See Ex. 3, at p. 14.", "3", 14},
		{"page word", "See Exhibit 4 at page 7.", "4", 7},
		{"descriptor and page", "See Ex. 1 Memo, at p. 9.", "1 Memo", 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if len(got) != 1 {
				t.Fatalf("Extract(%q) returned %d citations, want 1", tt.text, len(got))
			}
			c := got[0]
			if c.Kind != Exhibit {
				t.Errorf("Kind = %v, want Exhibit", c.Kind)
			}
			if c.Label != tt.label {
				t.Errorf("Label = %q, want %q", c.Label, tt.label)
			}
			if c.PageHint != tt.pageHint {
				t.Errorf("PageHint = %d, want %d", c.PageHint, tt.pageHint)
			}
		})
	}
}

func TestExtractBatesForms(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		label  string
		prefix string
		number int
	}{
		{"underscore separator", "Produced as SMITH_005 in discovery.", "SMITH_005", "SMITH", 5},
		{"dash separator", "Produced as SMITH-0042 in discovery.", "SMITH-0042", "SMITH", 42},
		{"subdocument suffix", "See JONES_003.001 for the attachment.", "JONES_003.001", "JONES", 3},
		{"long number", "Stamped ACME_000123 on the page.", "ACME_000123", "ACME", 123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if len(got) != 1 {
				t.Fatalf("Extract(%q) returned %d citations, want 1", tt.text, len(got))
			}
			c := got[0]
			if c.Kind != Bates {
				t.Errorf("Kind = %v, want Bates", c.Kind)
			}
			if c.Label != tt.label {
				t.Errorf("Label = %q, want %q", c.Label, tt.label)
			}
			if c.BatesPrefix != tt.prefix {
				t.Errorf("BatesPrefix = %q, want %q", c.BatesPrefix, tt.prefix)
			}
			if c.BatesNumber != tt.number {
				t.Errorf("BatesNumber = %d, want %d", c.BatesNumber, tt.number)
			}
		})
	}
}

func TestExtractPagePhraseOutsideRawText(t *testing.T) {
	// The page phrase sets PageHint but stays outside RawText, so the
	// link replaces only the reference token and "at p. N" remains
	// readable prose after insertion.
	tests := []struct {
		name     string
		text     string
		raw      string
		pageHint int
	}{
		{"descriptor and phrase", "See Ex. 1 Memo, at p. 9.", "Ex. 1 Memo", 9},
		{"bare identifier", "See Ex. 3, at p. 14.", "Ex. 3", 14},
		{"page word", "See Exhibit 4 at page 7.", "Exhibit 4", 7},
		{"no phrase", "See Ex. 2B in the record.", "Ex. 2B", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if len(got) != 1 {
				t.Fatalf("Extract(%q) returned %d citations, want 1", tt.text, len(got))
			}
			c := got[0]
			if c.RawText != tt.raw {
				t.Errorf("RawText = %q, want %q", c.RawText, tt.raw)
			}
			if c.PageHint != tt.pageHint {
				t.Errorf("PageHint = %d, want %d", c.PageHint, tt.pageHint)
			}
			if at := tt.text[c.SourceOffset : c.SourceOffset+len(c.RawText)]; at != c.RawText {
				t.Errorf("text at offset %d = %q, want %q", c.SourceOffset, at, c.RawText)
			}
		})
	}
}

func TestExtractRoundTrip(t *testing.T) {
	// RawText must reproduce verbatim at SourceOffset.
	text := "Compare Ex. 1 Memo, at p. 9 with Exhibit 2 and SMITH_005; see also Ex. A."
	for _, c := range Extract(text) {
		at := text[c.SourceOffset : c.SourceOffset+len(c.RawText)]
		if at != c.RawText {
			t.Errorf("text at offset %d = %q, want %q", c.SourceOffset, at, c.RawText)
		}
	}
}

func TestExtractDocumentOrder(t *testing.T) {
	text := "First SMITH_010, then Ex. 2, then SMITH_011."
	got := Extract(text)
	if len(got) != 3 {
		t.Fatalf("expected 3 citations, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].SourceOffset <= got[i-1].SourceOffset {
			t.Errorf("citations out of order: offset %d after %d",
				got[i].SourceOffset, got[i-1].SourceOffset)
		}
	}
}

func TestExtractRepeatedCitationsKeptSeparately(t *testing.T) {
	// Dedup is by offset only, never by label.
	text := "Ex. 5 shows the email. Later, Ex. 5 is discussed again."
	got := Extract(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(got))
	}
	if got[0].Label != got[1].Label {
		t.Errorf("labels differ: %q vs %q", got[0].Label, got[1].Label)
	}
	if got[0].SourceOffset == got[1].SourceOffset {
		t.Error("expected distinct offsets for repeated citations")
	}
}

func TestExtractOverlapPrefersLongest(t *testing.T) {
	// "EX_001" is both a plausible exhibit reference and a Bates token;
	// the spans coincide, so exactly one citation must come out.
	text := "Stamped EX_001 on page one."
	got := Extract(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(got))
	}
	if got[0].Kind != Bates {
		t.Errorf("Kind = %v, want Bates for a full PREFIX_NNN token", got[0].Kind)
	}
}

func TestExtractNoCitations(t *testing.T) {
	got := Extract("Nothing to see here. Except prose, examined closely.")
	if len(got) != 0 {
		t.Fatalf("expected no citations, got %d: %v", len(got), got)
	}
}

func TestExtractIgnoresOrdinaryWords(t *testing.T) {
	// Words containing "ex" must not trigger the exhibit grammar.
	for _, text := range []string{
		"The expert examined the index.",
		"For example, exactly nothing.",
	} {
		if got := Extract(text); len(got) != 0 {
			t.Errorf("Extract(%q) = %v, want none", text, got)
		}
	}
}

func TestExtractManyInOneSentence(t *testing.T) {
	text := "See Ex. 1, Ex. 2B, and Exhibit 3 together with ACME_00012."
	got := Extract(text)
	if len(got) != 4 {
		t.Fatalf("expected 4 citations, got %d", len(got))
	}
	labels := make([]string, 0, len(got))
	for _, c := range got {
		labels = append(labels, c.Label)
	}
	want := "1,2B,3,ACME_00012"
	if strings.Join(labels, ",") != want {
		t.Errorf("labels = %v, want %s", labels, want)
	}
}
