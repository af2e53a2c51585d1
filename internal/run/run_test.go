package run

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mjlindsay/anchor/internal/link"
	"github.com/mjlindsay/anchor/internal/pdf"
)

// workspace lays out a source document next to an exhibits folder and
// returns the document path plus a StaticReader keyed by the absolute
// exhibit paths.
func workspace(t *testing.T, docText string, pages map[string][]string, exhibits ...string) (string, *pdf.StaticReader) {
	t.Helper()
	root := t.TempDir()
	exDir := filepath.Join(root, "exhibits")
	if err := os.Mkdir(exDir, 0755); err != nil {
		t.Fatal(err)
	}
	reader := &pdf.StaticReader{Pages: make(map[string][]string)}
	for _, name := range exhibits {
		p := filepath.Join(exDir, name)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if texts, ok := pages[name]; ok {
			reader.Pages[p] = texts
		}
	}
	docPath := filepath.Join(root, "brief.md")
	if err := os.WriteFile(docPath, []byte(docText), 0644); err != nil {
		t.Fatal(err)
	}
	return docPath, reader
}

func baseOptions(reader *pdf.StaticReader) Options {
	return Options{
		ExhibitsRoot: "exhibits",
		PDF:          reader,
		NoCache:      true,
	}
}

func TestRunExhibitWithPageHint(t *testing.T) {
	docPath, reader := workspace(t,
		"See Ex. 1 Memo, at p. 9.\n",
		map[string][]string{"Ex_1_Memo.pdf": {"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10"}},
		"Ex_1_Memo.pdf")

	report, err := Run(context.Background(), docPath, baseOptions(reader))
	if err != nil {
		t.Fatal(err)
	}
	if report.Citations != 1 || report.Linked != 1 {
		t.Fatalf("citations=%d linked=%d", report.Citations, report.Linked)
	}

	data, _ := os.ReadFile(docPath)
	want := "See [Ex. 1 Memo](exhibits/Ex_1_Memo.pdf#page=9), at p. 9.\n"
	if string(data) != want {
		t.Errorf("document:\n got %q\nwant %q", data, want)
	}
}

func TestRunBatesContainment(t *testing.T) {
	docPath, reader := workspace(t,
		"The admission appears at SMITH_005.\n",
		map[string][]string{
			"SMITH_003.pdf": {"SMITH_003", "SMITH_004", "SMITH_005", "SMITH_006"},
			"SMITH_010.pdf": {"SMITH_010", "SMITH_011"},
		},
		"SMITH_003.pdf", "SMITH_010.pdf")

	report, err := Run(context.Background(), docPath, baseOptions(reader))
	if err != nil {
		t.Fatal(err)
	}
	if report.Linked != 1 {
		t.Fatalf("linked=%d issues=%v", report.Linked, report.Issues)
	}
	res := report.Results[0]
	if res.File != "SMITH_003.pdf" || res.Page != 3 {
		t.Errorf("resolved to %s page %d, want SMITH_003.pdf page 3", res.File, res.Page)
	}

	data, _ := os.ReadFile(docPath)
	if !strings.Contains(string(data), "[SMITH_005](exhibits/SMITH_003.pdf#page=3)") {
		t.Errorf("document: %q", data)
	}
}

func TestRunSanitizeRenamesBeforeLinking(t *testing.T) {
	docPath, reader := workspace(t,
		"See Ex. 1 Memo.\n", nil,
		"Ex. 1 Memo.pdf")

	opts := baseOptions(reader)
	opts.Sanitize = true
	report, err := Run(context.Background(), docPath, opts)
	if err != nil {
		t.Fatal(err)
	}

	exDir := filepath.Join(filepath.Dir(docPath), "exhibits")
	if _, err := os.Stat(filepath.Join(exDir, "Ex_1_Memo.pdf")); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(exDir, "Ex. 1 Memo.pdf")); !os.IsNotExist(err) {
		t.Error("original file still present")
	}
	if len(report.Renames) != 1 {
		t.Fatalf("renames = %v", report.Renames)
	}

	data, _ := os.ReadFile(docPath)
	if !strings.Contains(string(data), "(exhibits/Ex_1_Memo.pdf)") {
		t.Errorf("link should use sanitized name: %q", data)
	}
}

func TestRunChromeWarnsOnUnsafeFilenames(t *testing.T) {
	docPath, reader := workspace(t,
		"See Ex. 1 Memo.\n", nil,
		"Ex. 1 Memo.pdf")

	opts := baseOptions(reader)
	opts.Viewer = link.Chrome
	report, err := Run(context.Background(), docPath, opts)
	if err != nil {
		t.Fatal(err)
	}
	if report.Linked != 1 {
		t.Fatalf("linked=%d issues=%v", report.Linked, report.Issues)
	}

	found := false
	for _, is := range report.Issues {
		if is.Category == UnsafeFilename {
			found = true
			if !strings.HasSuffix(is.Path, "Ex. 1 Memo.pdf") {
				t.Errorf("issue path = %q", is.Path)
			}
		}
	}
	if !found {
		t.Fatalf("no unsafe-filename issue reported: %v", report.Issues)
	}

	// Sanitization removes the hazard, so the warning disappears.
	docPath, reader = workspace(t, "See Ex. 1 Memo.\n", nil, "Ex. 1 Memo.pdf")
	opts = baseOptions(reader)
	opts.Viewer = link.Chrome
	opts.Sanitize = true
	report, err = Run(context.Background(), docPath, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, is := range report.Issues {
		if is.Category == UnsafeFilename {
			t.Errorf("unexpected unsafe-filename issue after sanitization: %v", is)
		}
	}
}

func TestRunAcrobatAcceptsUnsafeFilenames(t *testing.T) {
	docPath, reader := workspace(t,
		"See Ex. 1 Memo.\n", nil,
		"Ex. 1 Memo.pdf")

	report, err := Run(context.Background(), docPath, baseOptions(reader))
	if err != nil {
		t.Fatal(err)
	}
	for _, is := range report.Issues {
		if is.Category == UnsafeFilename {
			t.Errorf("acrobat mode should not warn on filenames: %v", is)
		}
	}
}

func TestRunNoCitations(t *testing.T) {
	docPath, reader := workspace(t, "Nothing cited here.\n", nil, "Ex_1_Memo.pdf")

	report, err := Run(context.Background(), docPath, baseOptions(reader))
	if err != nil {
		t.Fatal(err)
	}
	if report.Citations != 0 {
		t.Fatalf("citations = %d", report.Citations)
	}
	if len(report.Issues) != 1 || report.Issues[0].Category != NoCitationsFound {
		t.Fatalf("issues = %v", report.Issues)
	}

	data, _ := os.ReadFile(docPath)
	if string(data) != "Nothing cited here.\n" {
		t.Error("document modified with no citations")
	}
}

func TestRunUnresolvedDoesNotAbort(t *testing.T) {
	docPath, reader := workspace(t,
		"See Ex. 1 Memo and Ex. 9 Missing.\n", nil,
		"Ex_1_Memo.pdf")

	report, err := Run(context.Background(), docPath, baseOptions(reader))
	if err != nil {
		t.Fatal(err)
	}
	if report.Citations != 2 || report.Linked != 1 {
		t.Fatalf("citations=%d linked=%d", report.Citations, report.Linked)
	}
	found := false
	for _, is := range report.Issues {
		if is.Category == UnresolvedCitation {
			found = true
		}
	}
	if !found {
		t.Errorf("no unresolved issue reported: %v", report.Issues)
	}

	data, _ := os.ReadFile(docPath)
	if !strings.Contains(string(data), "[Ex. 1 Memo](exhibits/Ex_1_Memo.pdf)") {
		t.Errorf("resolved citation not linked: %q", data)
	}
	if strings.Contains(string(data), "[Ex. 9 Missing]") {
		t.Errorf("unresolved citation linked: %q", data)
	}
}

func TestRunDryRun(t *testing.T) {
	original := "See Ex. 1 Memo.\n"
	docPath, reader := workspace(t, original, nil, "Ex. 1 Memo.pdf")

	opts := baseOptions(reader)
	opts.Sanitize = true
	opts.DryRun = true
	report, err := Run(context.Background(), docPath, opts)
	if err != nil {
		t.Fatal(err)
	}
	if report.Linked != 1 {
		t.Fatalf("linked=%d issues=%v", report.Linked, report.Issues)
	}
	if len(report.Renames) != 1 {
		t.Fatalf("planned renames = %v", report.Renames)
	}

	data, _ := os.ReadFile(docPath)
	if string(data) != original {
		t.Error("dry run modified the document")
	}
	exDir := filepath.Join(filepath.Dir(docPath), "exhibits")
	if _, err := os.Stat(filepath.Join(exDir, "Ex. 1 Memo.pdf")); err != nil {
		t.Error("dry run renamed a file")
	}
}

func TestRunFrontmatterRootOverride(t *testing.T) {
	root := t.TempDir()
	altDir := filepath.Join(root, "evidence")
	if err := os.Mkdir(altDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(altDir, "Ex_2_Contract.pdf"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	docPath := filepath.Join(root, "brief.md")
	content := "---\nexhibits_root: evidence\n---\n\nSee Ex. 2 Contract.\n"
	if err := os.WriteFile(docPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts := Options{ExhibitsRoot: "does-not-exist", PDF: &pdf.StaticReader{}, NoCache: true}
	report, err := Run(context.Background(), docPath, opts)
	if err != nil {
		t.Fatal(err)
	}
	if report.Linked != 1 {
		t.Fatalf("linked=%d issues=%v", report.Linked, report.Issues)
	}

	data, _ := os.ReadFile(docPath)
	if !strings.Contains(string(data), "[Ex. 2 Contract](evidence/Ex_2_Contract.pdf)") {
		t.Errorf("document: %q", data)
	}
}

func TestRunMissingRoot(t *testing.T) {
	docPath, reader := workspace(t, "See Ex. 1.\n", nil, "Ex_1_Memo.pdf")
	opts := baseOptions(reader)
	opts.ExhibitsRoot = "no-such-dir"
	if _, err := Run(context.Background(), docPath, opts); err == nil {
		t.Fatal("expected error for missing exhibits root")
	}
}

func TestRunCancelled(t *testing.T) {
	docPath, reader := workspace(t, "See Ex. 1 Memo.\n", nil, "Ex_1_Memo.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, docPath, baseOptions(reader)); err == nil {
		t.Fatal("expected context error")
	}
}
