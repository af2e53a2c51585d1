package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mjlindsay/anchor/internal/config"
	"github.com/mjlindsay/anchor/internal/link"
	"github.com/mjlindsay/anchor/internal/ui"
)

var (
	configSetExhibitsRoot string
	configSetViewer       string
	configSetThreshold    float64
	configSetEpsilon      float64
	configSetMaxRetries   int
	configSetSanitize     bool
	configSetBlackLinks   bool
	configSetUIAccent     string
	configSetUICodeTheme  string
)

func resolvedConfigPath() string {
	if configPathFlag != "" {
		return configPathFlag
	}
	return config.DefaultPath()
}

func configData(cfg *config.Config, path string, exists bool) map[string]interface{} {
	return map[string]interface{}{
		"config_path":        path,
		"exists":             exists,
		"exhibits_root":      strings.TrimSpace(cfg.ExhibitsRoot),
		"sanitize_filenames": cfg.SanitizeFilenames,
		"fuzzy_threshold":    cfg.Threshold(),
		"fuzzy_epsilon":      cfg.Epsilon(),
		"max_retries":        cfg.RetryPolicy().MaxRetries,
		"viewer":             strings.TrimSpace(cfg.Viewer),
		"black_links":        cfg.BlackLinks,
		"ui": map[string]interface{}{
			"accent":     strings.TrimSpace(cfg.UI.Accent),
			"code_theme": strings.TrimSpace(cfg.UI.CodeTheme),
		},
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the global configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolvedConfigPath()
		_, statErr := os.Stat(path)
		exists := statErr == nil

		if isJSONOutput() {
			outputSuccess(configData(cfg, path, exists), nil)
			return nil
		}

		fmt.Println(ui.Header("anchor configuration"))
		fmt.Printf("  config: %s", ui.FilePath(path))
		if !exists {
			fmt.Printf(" %s", ui.Hint("(not created yet)"))
		}
		fmt.Println()
		fmt.Printf("  exhibits_root: %s\n", orUnset(cfg.ExhibitsRoot))
		fmt.Printf("  viewer: %s\n", orUnset(cfg.Viewer))
		fmt.Printf("  sanitize_filenames: %t\n", cfg.SanitizeFilenames)
		fmt.Printf("  fuzzy_threshold: %.2f\n", cfg.Threshold())
		fmt.Printf("  fuzzy_epsilon: %.2f\n", cfg.Epsilon())
		fmt.Printf("  max_retries: %d\n", cfg.RetryPolicy().MaxRetries)
		fmt.Printf("  black_links: %t\n", cfg.BlackLinks)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if isJSONOutput() {
			outputSuccess(map[string]string{"config_path": resolvedConfigPath()}, nil)
			return nil
		}
		fmt.Println(resolvedConfigPath())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().NFlag() == 0 {
			return handleErrorMsg(ErrConfigInvalid, "nothing to set", "pass at least one --flag, see 'anc config set --help'")
		}

		if cmd.Flags().Changed("viewer") {
			if _, err := link.ParseViewer(configSetViewer); err != nil {
				return handleError(ErrViewerInvalid, err, "")
			}
			cfg.Viewer = configSetViewer
		}
		if cmd.Flags().Changed("exhibits-root") {
			cfg.ExhibitsRoot = configSetExhibitsRoot
		}
		if cmd.Flags().Changed("fuzzy-threshold") {
			cfg.FuzzyThreshold = configSetThreshold
		}
		if cmd.Flags().Changed("fuzzy-epsilon") {
			cfg.FuzzyEpsilon = configSetEpsilon
		}
		if cmd.Flags().Changed("max-retries") {
			cfg.MaxRetries = configSetMaxRetries
		}
		if cmd.Flags().Changed("sanitize") {
			cfg.SanitizeFilenames = configSetSanitize
		}
		if cmd.Flags().Changed("black-links") {
			cfg.BlackLinks = configSetBlackLinks
		}
		if cmd.Flags().Changed("ui-accent") {
			cfg.UI.Accent = configSetUIAccent
		}
		if cmd.Flags().Changed("ui-code-theme") {
			cfg.UI.CodeTheme = configSetUICodeTheme
		}

		path := resolvedConfigPath()
		if err := config.SaveTo(path, cfg); err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if isJSONOutput() {
			outputSuccess(configData(cfg, path, true), nil)
			return nil
		}
		fmt.Println(ui.Successf("wrote %s", path))
		return nil
	},
}

func orUnset(v string) string {
	if strings.TrimSpace(v) == "" {
		return ui.Hint("(unset)")
	}
	return v
}

func init() {
	configSetCmd.Flags().StringVar(&configSetExhibitsRoot, "exhibits-root", "", "Default exhibits folder")
	configSetCmd.Flags().StringVar(&configSetViewer, "viewer", "", "Target PDF viewer: chrome or acrobat")
	configSetCmd.Flags().Float64Var(&configSetThreshold, "fuzzy-threshold", 0, "Fuzzy match threshold (0..1)")
	configSetCmd.Flags().Float64Var(&configSetEpsilon, "fuzzy-epsilon", 0, "Fuzzy tie margin (0..1)")
	configSetCmd.Flags().IntVar(&configSetMaxRetries, "max-retries", 0, "Retry attempts for transient I/O")
	configSetCmd.Flags().BoolVar(&configSetSanitize, "sanitize", false, "Sanitize filenames on every link run")
	configSetCmd.Flags().BoolVar(&configSetBlackLinks, "black-links", false, "Render links in body color")
	configSetCmd.Flags().StringVar(&configSetUIAccent, "ui-accent", "", "Accent color (ANSI code or #RRGGBB)")
	configSetCmd.Flags().StringVar(&configSetUICodeTheme, "ui-code-theme", "", "Code block theme for rendered docs")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
