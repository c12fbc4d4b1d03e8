package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/harrison/tidydir/internal/classify"
	"github.com/harrison/tidydir/internal/logger"
	"github.com/harrison/tidydir/internal/organizer"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a directory and show its typed tree",
		Long: `Scan a directory and print what tidydir sees: folders first, then
files, with per-file sizes and a stats footer.

Hidden entries and common dependency directories are skipped. With
--no-recursive, sub-folders are listed but their contents are not
enumerated.

Examples:
  tidydir scan ~/Downloads
  tidydir scan --no-recursive ~/Downloads
  tidydir scan --depth 5 ~/Downloads
  tidydir scan --json ~/Downloads`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	addScanFlags(cmd)
	cmd.Flags().Bool("json", false, "Print the scan response as JSON")

	return cmd
}

// runScan implements the scan command logic
func runScan(cmd *cobra.Command, args []string) error {
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
	out := cmd.OutOrStdout()

	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	svc := organizer.NewService(organizer.Options{
		Classifier:  classify.NewWithRules(cfg.ToRules()),
		Log:         consoleLog,
		MaxDepth:    cfg.MaxDepth,
		ExcludeDirs: cfg.ExcludeDirs,
	})

	dir := args[0]
	consoleLog.LogScanStart(dir)
	start := time.Now()
	resp := svc.Scan(organizer.ScanRequest{DirPath: dir, Recursive: cfg.Recursive})

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("encode scan response: %w", err)
		}
		if !resp.Success {
			return fmt.Errorf("%s", resp.Error)
		}
		return nil
	}

	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	consoleLog.LogScanComplete(dir, *resp.Stats, time.Since(start))

	fmt.Fprintln(out, dir)
	renderTree(out, resp.Tree, isatty.IsTerminal(os.Stdout.Fd()))

	stats := resp.Stats
	if stats.IgnoredFolders > 0 {
		fmt.Fprintf(out, "\n%d files, %d folders (+%d not scanned), %s\n",
			stats.Files, stats.Folders, stats.IgnoredFolders, formatBytes(stats.TotalBytes))
	} else {
		fmt.Fprintf(out, "\n%d files, %d folders, %s\n",
			stats.Files, stats.Folders, formatBytes(stats.TotalBytes))
	}

	return nil
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
