package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codebased/pkg/compile"
	"codebased/pkg/config"
	"codebased/pkg/ignore"
	"codebased/pkg/scan"
)

// compileCmd is the headless path: scan, select everything that survives
// the filters, compile, print a short summary.
var compileCmd = &cobra.Command{
	Use:   "compile [directory]",
	Short: "Compile a directory without the interactive picker",
	Long: `Scan the directory, select every text file that passes the ignore and
size filters, and compile the selection into one output file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", "Output file path (default: <directory>/codebase.txt)")
	compileCmd.Flags().StringSliceP("ignore", "x", nil, "Additional ignore patterns")
	compileCmd.Flags().Bool("hidden", false, "Include dot-prefixed files and directories")
	compileCmd.Flags().Bool("binaries", false, "Include files that look binary")
	compileCmd.Flags().Int("max-size", 0, "Max file size in KB (overrides config; 0 = config value)")
	RootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
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
		logger.Warn("Falling back to default configuration", zap.Error(err))
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = filepath.Join(absRoot, cfg.OutputFilename)
	}
	extraIgnore, _ := cmd.Flags().GetStringSlice("ignore")
	includeHidden, _ := cmd.Flags().GetBool("hidden")
	includeBinaries, _ := cmd.Flags().GetBool("binaries")
	maxSizeKB, _ := cmd.Flags().GetInt("max-size")

	rules, err := ignore.Load(filepath.Join(absRoot, ".codebasedignore"), globalIgnorePath(), logger)
	if err != nil {
		return fmt.Errorf("failed to load ignore patterns: %w", err)
	}
	rules.AddLines(cfg.IgnorePatterns...)
	rules.AddLines(extraIgnore...)

	maxSize := cfg.MaxFileSizeBytes()
	if maxSizeKB > 0 {
		maxSize = int64(maxSizeKB) * 1024
	}

	scanner := scan.NewScanner(logger)
	tree, err := scanner.Build(cmd.Context(), absRoot, scan.Options{
		Rules:         rules,
		MaxFileSize:   maxSize,
		IncludeHidden: includeHidden,
		SniffBinary:   true,
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	// Select everything compilable.
	tree.CheckAll()
	var refs []compile.FileRef
	for _, n := range tree.CheckedFiles() {
		if n.Oversize {
			continue
		}
		if n.Binary && !includeBinaries {
			logger.Debug("Skipping binary file", zap.String("file", n.RelPath))
			continue
		}
		refs = append(refs, compile.FileRef{Path: n.Path, RelPath: n.RelPath})
	}
	if len(refs) == 0 {
		logger.Warn("No files to compile after filtering", zap.String("root", absRoot))
		return nil
	}

	compiler := compile.New(logger)
	result, err := compiler.RunCollect(cmd.Context(), compile.Job{
		Root:       absRoot,
		OutputPath: output,
		Files:      refs,
	})
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Compiled %d files (%d failed) into %s (%s)\n",
		len(result.Compiled), len(result.Failed), result.OutputPath,
		compile.FormatBytes(result.OutputSize))
	for _, fe := range result.Failed {
		fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s\n", fe.Message)
	}
	return nil
}
