// Package run orchestrates a linking run over one source document:
// extract citations, build the candidate index, resolve matches,
// locate pages, optionally sanitize filenames, and write links back.
//
// The pipeline is sequential and per-citation failures never abort
// it; they accumulate in the Report. Only an unreadable source
// document, a broken exhibits root, or a failed write are run-fatal.
package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mjlindsay/anchor/internal/citation"
	"github.com/mjlindsay/anchor/internal/document"
	"github.com/mjlindsay/anchor/internal/exhibits"
	"github.com/mjlindsay/anchor/internal/link"
	"github.com/mjlindsay/anchor/internal/matcher"
	"github.com/mjlindsay/anchor/internal/pagelocate"
	"github.com/mjlindsay/anchor/internal/pdf"
	"github.com/mjlindsay/anchor/internal/retry"
	"github.com/mjlindsay/anchor/internal/sanitize"
	"github.com/mjlindsay/anchor/internal/scancache"
)

// Category classifies a reported issue.
type Category string

const (
	NoCitationsFound     Category = "no_citations_found"
	UnresolvedCitation   Category = "unresolved_citation"
	IndexBuildFailure    Category = "index_build_failure"
	PageScanFailure      Category = "page_scan_failure"
	SanitizationConflict Category = "sanitization_conflict"
	UnsafeFilename       Category = "unsafe_filename"
	TransientIOFailure   Category = "transient_io_failure"
)

// ErrDocumentWrite marks a failure writing links back to the source
// document. The Report accumulated up to the write is still valid.
var ErrDocumentWrite = errors.New("document write failed")

// Issue is one non-fatal problem encountered during a run.
type Issue struct {
	Category Category `json:"category"`
	Citation string   `json:"citation,omitempty"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
}

// Result records the outcome for one extracted citation.
type Result struct {
	Citation   string `json:"citation"`
	Offset     int    `json:"offset"`
	File       string `json:"file,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Page       int    `json:"page,omitempty"`
	Href       string `json:"href,omitempty"`
	Degraded   bool   `json:"degraded,omitempty"`
	Ambiguous  bool   `json:"ambiguous,omitempty"`
	Linked     bool   `json:"linked"`
}

// RenameEntry is one applied (or, in a dry run, planned) rename.
type RenameEntry struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Report is the end-of-run summary for one document.
type Report struct {
	Document     string        `json:"document"`
	ExhibitsRoot string        `json:"exhibits_root"`
	Viewer       string        `json:"viewer"`
	BlackLinks   bool          `json:"black_links,omitempty"`
	DryRun       bool          `json:"dry_run,omitempty"`
	Citations    int           `json:"citations"`
	Linked       int           `json:"linked"`
	Results      []Result      `json:"results"`
	Renames      []RenameEntry `json:"renames,omitempty"`
	Issues       []Issue       `json:"issues,omitempty"`
}

func (r *Report) issue(cat Category, cite, path, msg string) {
	r.Issues = append(r.Issues, Issue{Category: cat, Citation: cite, Path: path, Message: msg})
}

// Options configures a run. Zero values fall back to sensible
// defaults; PDF defaults to the poppler tools when installed.
type Options struct {
	// ExhibitsRoot is the candidate folder; relative paths resolve
	// against the document's folder. Empty means the document's folder.
	ExhibitsRoot string

	Viewer     link.Viewer
	Sanitize   bool
	DryRun     bool
	Threshold  float64
	Epsilon    float64
	Retry      retry.Policy
	BlackLinks bool

	// PDF overrides the page-text reader (tests).
	PDF pdf.Reader

	// NoCache disables the persistent scan cache.
	NoCache bool
}

// Run links one document. The returned Report is non-nil whenever the
// document itself could be read, even if err is non-nil.
func Run(ctx context.Context, docPath string, opts Options) (*Report, error) {
	doc, err := document.Open(docPath)
	if err != nil {
		return nil, err
	}
	return runDoc(ctx, doc, opts)
}

func runDoc(ctx context.Context, doc *document.File, opts Options) (*Report, error) {
	if opts.Retry == (retry.Policy{}) {
		opts.Retry = retry.Default()
	}
	sourceDir := filepath.Dir(doc.Path)

	// Frontmatter wins over config and flags for this document.
	ov := doc.Overrides()
	root := opts.ExhibitsRoot
	if ov.ExhibitsRoot != "" {
		root = ov.ExhibitsRoot
	}
	if root == "" {
		root = sourceDir
	} else if !filepath.IsAbs(root) {
		root = filepath.Join(sourceDir, root)
	}

	viewer := opts.Viewer
	if ov.Viewer != "" {
		v, err := link.ParseViewer(ov.Viewer)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Path, err)
		}
		viewer = v
	}

	report := &Report{
		Document:     doc.Path,
		ExhibitsRoot: root,
		Viewer:       viewer.String(),
		BlackLinks:   opts.BlackLinks,
		DryRun:       opts.DryRun,
	}

	reader := opts.PDF
	if reader == nil {
		poppler := &pdf.PopplerReader{}
		if poppler.Available() {
			reader = pdf.NewCached(poppler)
		}
	}

	var cache *scancache.Cache
	if reader != nil && !opts.NoCache {
		c, err := scancache.Open(root)
		if err != nil {
			report.issue(TransientIOFailure, "", root, fmt.Sprintf("scan cache unavailable: %v", err))
		} else {
			cache = c
			defer cache.Close()
		}
	}

	scanner := &exhibits.Scanner{PDF: reader, Cache: cache, Retry: opts.Retry}
	index, err := exhibits.Build(root, scanner)
	if err != nil {
		return report, fmt.Errorf("build index: %w", err)
	}
	for _, w := range index.Warnings {
		report.issue(IndexBuildFailure, "", w.Path, w.Err.Error())
	}

	text, err := doc.ExtractText()
	if err != nil {
		return report, err
	}
	citations := citation.Extract(text)
	report.Citations = len(citations)
	if len(citations) == 0 {
		report.issue(NoCitationsFound, "", doc.Path, "no citations found")
		return report, nil
	}

	m := matcher.New(index, opts.Threshold, opts.Epsilon)
	locator := &pagelocate.Locator{Index: index, PDF: reader, Retry: opts.Retry}

	matches := make([]matcher.Match, 0, len(citations))
	for _, c := range citations {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		match := m.Resolve(ctx, c)
		if !match.Resolved() {
			msg := "no candidate file matched"
			if match.Ambiguous {
				msg = "multiple candidate files matched equally well"
			}
			report.issue(UnresolvedCitation, c.RawText, "", msg)
			report.Results = append(report.Results, Result{
				Citation:  c.RawText,
				Offset:    c.SourceOffset,
				Ambiguous: match.Ambiguous,
			})
			continue
		}

		if _, err := locator.Locate(ctx, &match); err != nil {
			// Degrade to a document-level link.
			report.issue(PageScanFailure, c.RawText, match.File.Path, err.Error())
		}
		matches = append(matches, match)
	}

	renamed := sanitizeTargets(report, matches, opts)
	if viewer == link.Chrome && !opts.Sanitize {
		warnUnsafeTargets(report, matches)
	}

	var placements []document.Placement
	for _, match := range matches {
		path := match.File.Path
		if renamed != nil {
			path = renamed.NewPathFor(path)
		}
		target := link.Build(sourceDir, path, match.ResolvedPage, match.Citation.RawText)
		placements = append(placements, document.Placement{
			Offset:  match.Citation.SourceOffset,
			RawText: match.Citation.RawText,
			Target:  target,
		})
		report.Results = append(report.Results, Result{
			Citation:   match.Citation.RawText,
			Offset:     match.Citation.SourceOffset,
			File:       match.File.RelativeKey,
			Confidence: match.Confidence.String(),
			Page:       match.ResolvedPage,
			Href:       target.Href(),
			Degraded:   match.Degraded,
			Linked:     true,
		})
		report.Linked++
	}

	if !opts.DryRun && len(placements) > 0 {
		if err := doc.InsertLinks(placements); err != nil {
			return report, fmt.Errorf("%w: %w", ErrDocumentWrite, err)
		}
	}
	return report, nil
}

// warnUnsafeTargets flags resolved targets whose filenames Chrome's
// viewer misreads as network URLs. Emitted only in Chrome mode with
// sanitization off, so the run reports the broken-link risk instead
// of silently writing links that will not open.
func warnUnsafeTargets(report *Report, matches []matcher.Match) {
	seen := make(map[string]bool)
	for _, match := range matches {
		p := match.File.Path
		if seen[p] || !link.NeedsSanitization(p) {
			continue
		}
		seen[p] = true
		report.issue(UnsafeFilename, match.Citation.RawText, p,
			"filename will not open in Chrome's viewer; rename with --sanitize")
	}
}

// sanitizeTargets renames link-hostile filenames among the matched
// targets before hrefs are built, so links point at the new names.
// Conflicts abort the rename step only; linking proceeds against the
// original names. Returns the applied plan, or nil.
func sanitizeTargets(report *Report, matches []matcher.Match, opts Options) *sanitize.Plan {
	if !opts.Sanitize {
		return nil
	}

	seen := make(map[string]bool)
	var targets []string
	for _, match := range matches {
		p := match.File.Path
		if !seen[p] && link.NeedsSanitization(p) {
			seen[p] = true
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	plan, err := sanitize.PlanRenames(targets)
	if err != nil {
		report.issue(SanitizationConflict, "", "", err.Error())
		return nil
	}
	if plan.Empty() {
		return nil
	}

	if !opts.DryRun {
		if err := plan.Apply(); err != nil {
			report.issue(SanitizationConflict, "", "", err.Error())
			return nil
		}
	}
	for _, r := range plan.Renames {
		report.Renames = append(report.Renames, RenameEntry{From: r.OldPath, To: r.NewPath})
	}
	return plan
}
