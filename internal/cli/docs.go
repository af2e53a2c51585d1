package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	builtindocs "github.com/mjlindsay/anchor/docs"
	"github.com/mjlindsay/anchor/internal/ui"
)

type docsTopicView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Browse the bundled documentation",
	Long: `Docs lists the guides bundled with the binary, or renders one in the
terminal. For command help, use 'anc help <command>'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := loadDocsTopics()
		if err != nil {
			return handleError(ErrDocsNotFound, err, "")
		}

		if len(args) == 0 {
			if isJSONOutput() {
				outputSuccess(topics, &Meta{Count: len(topics)})
				return nil
			}
			fmt.Println(ui.Header("anchor documentation"))
			for _, t := range topics {
				fmt.Printf("  %s  %s\n", ui.Accent.Render(t.ID), ui.Hint(t.Title))
			}
			fmt.Println(ui.Hint("anc docs <topic> to read one"))
			return nil
		}

		id := strings.ToLower(strings.TrimSpace(args[0]))
		for _, t := range topics {
			if t.ID == id {
				return renderDocsTopic(t)
			}
		}
		return handleErrorMsg(ErrDocsNotFound,
			fmt.Sprintf("no docs topic %q", id),
			"run 'anc docs' to list topics")
	},
}

func loadDocsTopics() ([]docsTopicView, error) {
	var topics []docsTopicView
	err := fs.WalkDir(builtindocs.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".md") {
			return nil
		}
		data, err := fs.ReadFile(builtindocs.FS, p)
		if err != nil {
			return err
		}
		id := strings.TrimSuffix(path.Base(p), ".md")
		topics = append(topics, docsTopicView{
			ID:    id,
			Title: docsTitle(string(data), id),
			Path:  p,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics, nil
}

// docsTitle takes the first markdown heading, falling back to the id.
func docsTitle(content, fallback string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}

func renderDocsTopic(t docsTopicView) error {
	data, err := fs.ReadFile(builtindocs.FS, t.Path)
	if err != nil {
		return handleError(ErrDocsNotFound, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]string{"id": t.ID, "title": t.Title, "content": string(data)}, nil)
		return nil
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(string(data))
		return nil
	}

	dc := ui.NewDisplayContext()
	rendered, err := ui.RenderMarkdown(string(data), dc.AvailableWidth(ui.MarkdownRenderMargin))
	if err != nil {
		// Fall back to the raw markdown rather than failing the command.
		fmt.Print(string(data))
		return nil
	}
	fmt.Print(rendered)
	return nil
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
