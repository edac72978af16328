package cmd

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codebased/pkg/config"
	"codebased/pkg/ignore"
	"codebased/pkg/tui"
)

// browseCmd opens the interactive picker. It is also what the bare root
// command runs.
var browseCmd = &cobra.Command{
	Use:   "browse [directory]",
	Short: "Open the interactive file picker",
	Long: `Scan a directory into a checkbox file tree, select files, and compile
them into one text artifact. Defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	RootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := rootLogger
	if logger == nil {
		logger = zap.NewNop()
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve directory: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		// Malformed config is not worth refusing to start over.
		logger.Warn("Falling back to default configuration", zap.Error(err))
	}

	rules, err := ignore.Load(filepath.Join(absRoot, ".codebasedignore"), globalIgnorePath(), logger)
	if err != nil {
		return fmt.Errorf("failed to load ignore patterns: %w", err)
	}
	rules.AddLines(cfg.IgnorePatterns...)

	model := tui.New(absRoot, cfg, rules, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("interface error: %w", err)
	}
	return nil
}
