// Package cli implements the command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mjlindsay/anchor/internal/config"
	"github.com/mjlindsay/anchor/internal/link"
	"github.com/mjlindsay/anchor/internal/ui"
)

var (
	// Global flags
	configPathFlag string
	exhibitsFlag   string
	viewerFlag     string

	// Resolved config
	cfg *config.Config
)

// viewerValue is a pflag.Value that rejects unknown viewers at parse
// time instead of deep inside a run.
type viewerValue struct {
	s *string
}

var _ pflag.Value = viewerValue{}

func (v viewerValue) String() string {
	if v.s == nil {
		return ""
	}
	return *v.s
}

func (v viewerValue) Set(raw string) error {
	if _, err := link.ParseViewer(raw); err != nil {
		return err
	}
	*v.s = raw
	return nil
}

func (v viewerValue) Type() string { return "viewer" }

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "anc",
	Short: "Anchor - citation resolution and link generation for legal documents",
	Long: `Anchor finds exhibit and Bates citations in a brief or memo, resolves
each one to a file in the exhibits folder, and rewrites the citation as
a relative hyperlink that opens the exhibit at the cited page.

Links are relative to the document's folder, so a case folder can be
zipped up and sent without breaking them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		var err error
		if configPathFlag != "" {
			cfg, err = config.LoadFrom(configPathFlag)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg == nil {
			cfg = &config.Config{}
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&exhibitsFlag, "exhibits", "e", "", "Exhibits folder (default: config, else the document's folder)")
	rootCmd.PersistentFlags().Var(viewerValue{s: &viewerFlag}, "viewer", "Target PDF viewer: chrome or acrobat")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// effectiveExhibitsRoot applies flag-over-config precedence.
func effectiveExhibitsRoot() string {
	if exhibitsFlag != "" {
		return exhibitsFlag
	}
	return cfg.ExhibitsRoot
}

// effectiveViewer applies flag-over-config precedence.
func effectiveViewer() string {
	if viewerFlag != "" {
		return viewerFlag
	}
	return cfg.Viewer
}
