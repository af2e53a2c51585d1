package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mjlindsay/anchor/internal/exhibits"
	"github.com/mjlindsay/anchor/internal/ui"
)

type indexFileView struct {
	Path       string `json:"path"`
	ExhibitKey string `json:"exhibit_key,omitempty"`
	BatesStart string `json:"bates_start,omitempty"`
}

var indexCmd = &cobra.Command{
	Use:   "index [root]",
	Short: "List the candidate files anchor would match against",
	Long: `Index scans the exhibits folder the way a link run does and prints
each candidate file with the keys citations are matched on: the
keyword-stripped exhibit key and, for Bates-named PDFs, the range
start parsed from the filename. Unreadable entries are reported as
warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := effectiveExhibitsRoot()
		if len(args) == 1 {
			root = args[0]
		}
		if root == "" {
			root = "."
		}

		ix, err := exhibits.Build(root, nil)
		if err != nil {
			return handleError(ErrExhibitsRootNotFound, err, "pass the exhibits folder as an argument or set exhibits_root")
		}

		if isJSONOutput() {
			views := make([]indexFileView, 0, len(ix.Files))
			for _, f := range ix.Files {
				v := indexFileView{Path: f.RelativeKey, ExhibitKey: f.ExhibitKey}
				if f.BatesPrefix != "" {
					v.BatesStart = fmt.Sprintf("%s_%d", f.BatesPrefix, f.BatesStart)
				}
				views = append(views, v)
			}
			var warnings []Warning
			for _, w := range ix.Warnings {
				warnings = append(warnings, Warning{Code: ErrIndexBuildFailed, Message: w.Err.Error(), Path: w.Path})
			}
			outputSuccessWithWarnings(views, warnings, &Meta{Count: len(views)})
			return nil
		}

		fmt.Println(ui.Header(ix.Root))
		table := ui.NewTable(3)
		for _, f := range ix.Files {
			bates := ""
			if f.BatesPrefix != "" {
				bates = fmt.Sprintf("%s_%d", f.BatesPrefix, f.BatesStart)
			}
			table.AddRow(f.RelativeKey, f.ExhibitKey, bates)
		}
		fmt.Print(table.String())

		for _, w := range ix.Warnings {
			fmt.Println(ui.Warningf("%s: %v", w.Path, w.Err))
		}
		fmt.Println(ui.Hint(fmt.Sprintf("%d candidate files", len(ix.Files))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
