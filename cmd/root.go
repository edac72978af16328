package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codebased/pkg/logging"
	"codebased/pkg/version"
)

// rootLogger is injected by Execute and shared by the subcommands.
var rootLogger *zap.Logger

// RootCmd is the base command when called without any subcommands.
// Running it bare opens the interactive picker on the current directory.
var RootCmd = &cobra.Command{
	Use:   "codebased [directory]",
	Short: "codebased compiles a codebase into a single, organized file",
	Long: `codebased scans a project directory into a selectable file tree and
compiles the selected files into one annotated text artifact, ready to
share as context with AI tools.

Without a subcommand it opens the interactive picker; use "compile" for
headless runs.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		if !debug {
			return nil
		}
		// Swap the production logger for the development config.
		if err := logging.Setup(true, "codebased", version.Get().Version); err != nil {
			return err
		}
		rootLogger = logging.Logger
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd, args)
	},
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	RootCmd.PersistentFlags().String("config", "", "Path to a custom config file (default: user config dir)")
}

// Execute wires the logger in and runs the root command.
func Execute(logger *zap.Logger) error {
	rootLogger = logger
	return RootCmd.Execute()
}

// globalIgnorePath locates the user-wide ignore file, next to the config.
// Empty when the user config dir cannot be determined.
func globalIgnorePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "codebased", "ignore")
}
