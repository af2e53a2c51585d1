package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mjlindsay/anchor/internal/link"
	"github.com/mjlindsay/anchor/internal/run"
	"github.com/mjlindsay/anchor/internal/ui"
)

var (
	linkSanitize   bool
	linkDryRun     bool
	linkNoCache    bool
	linkBlackLinks bool
	linkThreshold  float64
	linkEpsilon    float64
)

var linkCmd = &cobra.Command{
	Use:   "link <document>...",
	Short: "Resolve citations in documents and insert hyperlinks",
	Long: `Link extracts exhibit and Bates citations from each document, resolves
them against the exhibits folder, and rewrites every resolved citation
as a relative hyperlink. Unresolved citations are reported and left
untouched.

With --sanitize, exhibit filenames that would break in Chrome's PDF
viewer (spaces, internal periods) are renamed first and the links
point at the new names.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		viewer, err := link.ParseViewer(effectiveViewer())
		if err != nil {
			return handleError(ErrViewerInvalid, err, "use --viewer chrome or --viewer acrobat")
		}

		opts := run.Options{
			ExhibitsRoot: effectiveExhibitsRoot(),
			Viewer:       viewer,
			Sanitize:     linkSanitize || cfg.SanitizeFilenames,
			DryRun:       linkDryRun,
			Threshold:    linkThreshold,
			Epsilon:      linkEpsilon,
			Retry:        cfg.RetryPolicy(),
			BlackLinks:   linkBlackLinks || cfg.BlackLinks,
			NoCache:      linkNoCache,
		}
		if opts.Threshold == 0 {
			opts.Threshold = cfg.Threshold()
		}
		if opts.Epsilon == 0 {
			opts.Epsilon = cfg.Epsilon()
		}

		var reports []*run.Report
		for _, docPath := range args {
			var spin *ui.Spinner
			if !isJSONOutput() {
				spin = ui.NewSpinner(fmt.Sprintf("linking %s", filepath.Base(docPath)))
				spin.Start()
			}
			report, err := run.Run(cmd.Context(), docPath, opts)
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				if report != nil && isJSONOutput() {
					reports = append(reports, report)
				}
				code := ErrRunFailed
				suggestion := ""
				switch {
				case report == nil && errors.Is(err, fs.ErrNotExist):
					code = ErrDocumentNotFound
					suggestion = "check the document path"
				case errors.Is(err, run.ErrDocumentWrite):
					code = ErrDocumentUnwritten
				}
				return handleError(code, fmt.Errorf("%s: %w", docPath, err), suggestion)
			}
			reports = append(reports, report)
		}

		if isJSONOutput() {
			if len(reports) == 1 {
				outputSuccess(reports[0], &Meta{Count: reports[0].Linked})
			} else {
				linked := 0
				for _, r := range reports {
					linked += r.Linked
				}
				outputSuccess(reports, &Meta{Count: linked})
			}
			return nil
		}

		for _, report := range reports {
			printReport(report)
		}
		return nil
	},
}

func printReport(r *run.Report) {
	fmt.Println(ui.Header(filepath.Base(r.Document)))

	for _, res := range r.Results {
		if res.Linked {
			label := res.Confidence
			if res.Degraded {
				label += ", page from filename"
			}
			fmt.Printf("  %s %s %s %s\n",
				ui.SymbolSuccess, res.Citation,
				ui.FilePath(res.Href), ui.Hint("("+label+")"))
		} else {
			fmt.Printf("  %s %s %s\n",
				ui.SymbolError, res.Citation, ui.Hint("unresolved"))
		}
	}

	for _, ren := range r.Renames {
		fmt.Printf("  %s renamed %s %s\n",
			ui.SymbolInfo, filepath.Base(ren.From), ui.FilePath(filepath.Base(ren.To)))
	}
	for _, is := range r.Issues {
		if is.Category == run.UnresolvedCitation {
			continue // already shown inline
		}
		fmt.Printf("  %s %s\n", ui.SymbolWarning, is.Message)
	}

	summary := fmt.Sprintf("%d citations, %d linked", r.Citations, r.Linked)
	if r.DryRun {
		summary += " (dry run, nothing written)"
	}
	fmt.Println(ui.Hint(summary))
}

func init() {
	linkCmd.Flags().BoolVar(&linkSanitize, "sanitize", false, "Rename link-hostile exhibit filenames first")
	linkCmd.Flags().BoolVarP(&linkDryRun, "dry-run", "n", false, "Report what would be linked without writing")
	linkCmd.Flags().BoolVar(&linkNoCache, "no-cache", false, "Skip the persistent page-scan cache")
	linkCmd.Flags().BoolVar(&linkBlackLinks, "black-links", false, "Ask the output to render links in body color")
	linkCmd.Flags().Float64Var(&linkThreshold, "threshold", 0, "Fuzzy match threshold (0..1)")
	linkCmd.Flags().Float64Var(&linkEpsilon, "epsilon", 0, "Fuzzy tie margin (0..1)")
	rootCmd.AddCommand(linkCmd)
}
