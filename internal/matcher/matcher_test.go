package matcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mjlindsay/anchor/internal/citation"
	"github.com/mjlindsay/anchor/internal/exhibits"
	"github.com/mjlindsay/anchor/internal/pdf"
	"github.com/mjlindsay/anchor/internal/retry"
)

func buildIndex(t *testing.T, scanner *exhibits.Scanner, names ...string) *exhibits.Index {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	ix, err := exhibits.Build(root, scanner)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

func extractOne(t *testing.T, text string) citation.Citation {
	t.Helper()
	cs := citation.Extract(text)
	if len(cs) != 1 {
		t.Fatalf("Extract(%q) returned %d citations, want 1", text, len(cs))
	}
	return cs[0]
}

func TestResolveExactWithDescriptor(t *testing.T) {
	ix := buildIndex(t, nil, "Ex_1_Memo.pdf", "Ex_2_Letter.pdf")
	m := New(ix, 0, 0)

	c := extractOne(t, "See Ex. 1 Memo, at p. 9.")
	got := m.Resolve(context.Background(), c)
	if !got.Resolved() {
		t.Fatal("expected a match")
	}
	if got.Confidence != Exact {
		t.Errorf("Confidence = %v, want Exact", got.Confidence)
	}
	if got.File.Name() != "Ex_1_Memo.pdf" {
		t.Errorf("matched %s, want Ex_1_Memo.pdf", got.File.Name())
	}
}

func TestResolveExactIsCaseAndPunctuationInsensitive(t *testing.T) {
	// Files with equal normalized names resolve identically regardless
	// of citation casing.
	for _, filename := range []string{"EX. 1 MEMO.pdf", "ex_1_memo.pdf", "Ex.1.Memo.pdf"} {
		ix := buildIndex(t, nil, filename)
		m := New(ix, 0, 0)
		for _, text := range []string{"See Ex. 1 Memo.", "See EX. 1 MEMO.", "See ex. 1 Memo."} {
			got := m.Resolve(context.Background(), extractOne(t, text))
			if !got.Resolved() || got.Confidence != Exact {
				t.Errorf("file %q text %q: resolved=%v confidence=%v, want Exact match",
					filename, text, got.Resolved(), got.Confidence)
			}
		}
	}
}

func TestResolvePrefixContainment(t *testing.T) {
	// "Ex. 1" resolves to the single file whose name extends the label.
	ix := buildIndex(t, nil, "Ex_1_Memo.pdf", "Ex_2_Letter.pdf")
	m := New(ix, 0, 0)

	got := m.Resolve(context.Background(), extractOne(t, "See Ex. 1."))
	if !got.Resolved() || got.File.Name() != "Ex_1_Memo.pdf" {
		t.Fatalf("got %+v, want Ex_1_Memo.pdf", got)
	}
}

func TestResolvePrefixAmbiguityUnresolved(t *testing.T) {
	ix := buildIndex(t, nil, "Ex_1_Memo.pdf", "Ex_1_Letter.pdf")
	m := New(ix, 0, 0)

	got := m.Resolve(context.Background(), extractOne(t, "See Ex. 1."))
	if got.Resolved() {
		t.Fatalf("expected unresolved for ambiguous prefix, got %s", got.File.Name())
	}
	if !got.Ambiguous {
		t.Error("expected Ambiguous to be set")
	}
}

func TestResolveFuzzy(t *testing.T) {
	ix := buildIndex(t, nil, "Ex_1_Memorandum.pdf", "SMITH_900.pdf")
	m := New(ix, 0, 0)

	// "Memoranda" vs "Memorandum": one substitution away.
	got := m.Resolve(context.Background(), extractOne(t, "See Ex. 1 Memoranda."))
	if !got.Resolved() {
		t.Fatal("expected a fuzzy match")
	}
	if got.Confidence != Fuzzy {
		t.Errorf("Confidence = %v, want Fuzzy", got.Confidence)
	}
}

func TestResolveFuzzyTieUnresolved(t *testing.T) {
	// Two candidates at identical distance must not be guessed between.
	ix := buildIndex(t, nil, "Ex_1_Memo_A.pdf", "Ex_1_Memo_B.pdf")
	m := New(ix, 0, 0)

	got := m.Resolve(context.Background(), extractOne(t, "See Ex. 1 Memo C."))
	if got.Resolved() {
		t.Fatalf("expected unresolved tie, got %s", got.File.Name())
	}
}

func TestResolveFuzzyBelowThresholdUnresolved(t *testing.T) {
	ix := buildIndex(t, nil, "Wholly_Unrelated_Name.pdf")
	m := New(ix, 0, 0)

	got := m.Resolve(context.Background(), extractOne(t, "See Ex. 42 Spreadsheet."))
	if got.Resolved() {
		t.Fatalf("expected unresolved, got %s", got.File.Name())
	}
}

func TestResolveBatesContainment(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "SMITH_003.pdf")
	second := filepath.Join(root, "SMITH_010.pdf")
	for _, p := range []string{first, second} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	scanner := &exhibits.Scanner{
		PDF: &pdf.StaticReader{Pages: map[string][]string{
			first:  {"SMITH_003", "SMITH_004", "SMITH_005", "SMITH_006"},
			second: {"SMITH_010", "SMITH_011 through SMITH_015"},
		}},
		Retry: retry.New(retry.Fixed, 1, 1, 0),
	}
	ix, err := exhibits.Build(root, scanner)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := New(ix, 0, 0)

	got := m.Resolve(context.Background(), extractOne(t, "Cited as SMITH_005 below."))
	if !got.Resolved() {
		t.Fatal("expected a Bates containment match")
	}
	if got.File.Name() != "SMITH_003.pdf" {
		t.Errorf("matched %s, want SMITH_003.pdf", got.File.Name())
	}
	if got.Confidence != Exact {
		t.Errorf("Confidence = %v, want Exact", got.Confidence)
	}
	if got.Degraded {
		t.Error("containment match must not be degraded")
	}
}

func TestResolveBatesDegradedWhenScanFails(t *testing.T) {
	// The only candidate cannot be read; matcher falls back to the
	// filename range and marks the match degraded.
	scanner := &exhibits.Scanner{
		PDF:   &pdf.StaticReader{Pages: map[string][]string{}},
		Retry: retry.New(retry.Fixed, 1, 1, 0),
	}
	ix := buildIndex(t, scanner, "SMITH_003.pdf")
	m := New(ix, 0, 0)

	got := m.Resolve(context.Background(), extractOne(t, "Cited as SMITH_005 below."))
	if !got.Resolved() {
		t.Fatal("expected degraded match")
	}
	if !got.Degraded {
		t.Error("expected Degraded to be set")
	}
}

func TestResolveBatesNoCandidate(t *testing.T) {
	ix := buildIndex(t, nil, "JONES_100.pdf")
	m := New(ix, 0, 0)

	got := m.Resolve(context.Background(), extractOne(t, "Cited as SMITH_005 below."))
	if got.Resolved() {
		t.Fatalf("expected unresolved, got %s", got.File.Name())
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"memo", "memo", 1},
		{"", "", 1},
		{"abc", "", 0},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
	if got := similarity("memorandum", "memoranda"); got <= 0.7 || got >= 1 {
		t.Errorf("similarity(memorandum, memoranda) = %v, want in (0.7, 1)", got)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
		{"", "abc", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
