package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harrison/tidydir/internal/classify"
	"github.com/harrison/tidydir/internal/logger"
	"github.com/harrison/tidydir/internal/organizer"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewPreviewCommand creates the preview command
func NewPreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <directory>",
		Short: "Preview the proposed structure without touching files",
		Long: `Preview the folder structure tidydir would create for a directory.

Nothing is written to disk; preview shows where every file would go
under the selected mode.

Modes:
  content  Documents, Images, Videos, Audio, Archives, Other
  type     content plus Spreadsheets and Presentations
  date     <Year>/<Month> from each file's modification time

Examples:
  tidydir preview ~/Downloads --mode content
  tidydir preview ~/Downloads --mode date --json
  tidydir preview ~/Downloads --mode type --output ~/Sorted`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}

	addScanFlags(cmd)
	cmd.Flags().String("mode", "", "Grouping mode: content, type or date (overrides config)")
	cmd.Flags().String("output", "", "Destination directory shown in the preview")
	cmd.Flags().Bool("json", false, "Print the structure response as JSON")

	return cmd
}

// runPreview implements the preview command logic
func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := mergeScanFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	outputDir, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()

	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	svc := organizer.NewService(organizer.Options{
		Classifier:  classify.NewWithRules(cfg.ToRules()),
		Log:         consoleLog,
		MaxDepth:    cfg.MaxDepth,
		ExcludeDirs: cfg.ExcludeDirs,
	})

	dir := args[0]
	resp := svc.Structure(organizer.StructureRequest{
		InputPath:  dir,
		OutputPath: outputDir,
		Mode:       cfg.Mode,
		DryRun:     true,
		Recursive:  cfg.Recursive,
	}, nil)

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("encode structure response: %w", err)
		}
		if !resp.Success {
			return fmt.Errorf("%s", resp.Error)
		}
		return nil
	}

	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	if outputDir != "" {
		fmt.Fprintf(out, "Proposed structure for %s -> %s (%s mode):\n\n", dir, outputDir, cfg.Mode)
	} else {
		fmt.Fprintf(out, "Proposed structure for %s (%s mode):\n\n", dir, cfg.Mode)
	}
	renderTree(out, resp.Tree, isatty.IsTerminal(os.Stdout.Fd()))

	summary := resp.Summary
	fmt.Fprintf(out, "\n%d of %d files would be placed", summary.PlacedFiles, summary.TotalFiles)
	if summary.SkippedFiles > 0 {
		fmt.Fprintf(out, " (%d without a timestamp skipped)", summary.SkippedFiles)
	}
	if summary.RenamedFiles > 0 {
		fmt.Fprintf(out, " (%d renamed to avoid collisions)", summary.RenamedFiles)
	}
	fmt.Fprintln(out)

	return nil
}
