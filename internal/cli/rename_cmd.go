package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mjlindsay/anchor/internal/exhibits"
	"github.com/mjlindsay/anchor/internal/link"
	"github.com/mjlindsay/anchor/internal/sanitize"
	"github.com/mjlindsay/anchor/internal/ui"
)

var renameApply bool

type renameView struct {
	From string `json:"from"`
	To   string `json:"to"`
}

var renameCmd = &cobra.Command{
	Use:   "rename [root]",
	Short: "Sanitize exhibit filenames that break viewer links",
	Long: `Rename finds exhibit files whose names contain spaces or internal
periods, which Chrome's PDF viewer misreads in relative links, and
renames them to underscore form (Ex. 1 Memo.pdf becomes
Ex_1_Memo.pdf). The default is a dry run; pass --apply to perform the
renames. The set applies fully or not at all.`,
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
			return handleError(ErrExhibitsRootNotFound, err, "")
		}

		var targets []string
		for _, f := range ix.Files {
			if link.NeedsSanitization(f.Path) {
				targets = append(targets, f.Path)
			}
		}

		plan, err := sanitize.PlanRenames(targets)
		if err != nil {
			return handleError(ErrRenameConflict, err, "rename one of the conflicting files by hand and rerun")
		}

		if renameApply && !plan.Empty() {
			if err := plan.Apply(); err != nil {
				return handleError(ErrRenameFailed, err, "")
			}
		}

		views := make([]renameView, 0, len(plan.Renames))
		for _, r := range plan.Renames {
			views = append(views, renameView{From: r.OldPath, To: r.NewPath})
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"applied": renameApply,
				"renames": views,
			}, &Meta{Count: len(views)})
			return nil
		}

		if plan.Empty() {
			fmt.Println(ui.Success("all filenames are link-safe"))
			return nil
		}
		for _, v := range views {
			fmt.Printf("  %s %s\n", filepath.Base(v.From), ui.FilePath(filepath.Base(v.To)))
		}
		if renameApply {
			fmt.Println(ui.Successf("renamed %d files", len(views)))
		} else {
			fmt.Println(ui.Hint(fmt.Sprintf("%d renames planned; rerun with --apply to perform them", len(views))))
		}
		return nil
	},
}

func init() {
	renameCmd.Flags().BoolVar(&renameApply, "apply", false, "Perform the renames instead of printing the plan")
	rootCmd.AddCommand(renameCmd)
}
