package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/harrison/tidydir/internal/classify"
	"github.com/harrison/tidydir/internal/config"
	"github.com/harrison/tidydir/internal/executor"
	"github.com/harrison/tidydir/internal/history"
	"github.com/harrison/tidydir/internal/logger"
	"github.com/harrison/tidydir/internal/oplock"
	"github.com/harrison/tidydir/internal/organizer"
	"github.com/harrison/tidydir/internal/progress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewOrganizeCommand creates the organize command
func NewOrganizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize <directory>",
		Short: "Organize a directory's files into category folders",
		Long: `Organize a directory by moving (or copying) its files into category
folders under the output directory.

The proposed structure is shown first and must be confirmed unless
--yes or --json is given. A failed placement does not abort the run;
the summary reports every file that could not be placed.

Examples:
  tidydir organize ~/Downloads --output ~/Sorted
  tidydir organize ~/Downloads --output ~/Sorted --mode date --copy
  tidydir organize ~/Downloads --output ~/Sorted --yes --label "spring cleaning"
  tidydir organize ~/Downloads --output ~/Sorted --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: runOrganize,
	}

	addScanFlags(cmd)
	cmd.Flags().String("output", "", "Destination directory for organized files (required)")
	cmd.Flags().String("mode", "", "Grouping mode: content, type or date (overrides config)")
	cmd.Flags().Bool("copy", false, "Copy files instead of moving them")
	cmd.Flags().Bool("dry-run", false, "Show the proposed structure without touching files")
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	cmd.Flags().String("label", "", "Label recorded with this operation in history")
	cmd.Flags().Bool("json", false, "Print the organize response as JSON")
	cmd.Flags().String("log-dir", "", "Directory for log files (overrides config)")

	if err := cmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}

	return cmd
}

// runOrganize implements the organize command logic
func runOrganize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := mergeScanFlags(cmd, cfg); err != nil {
		return err
	}

	var transferPtr *string
	if copyFlag, _ := cmd.Flags().GetBool("copy"); copyFlag {
		transfer := string(executor.TransferCopy)
		transferPtr = &transfer
	}
	var logDirPtr *string
	if cmd.Flags().Changed("log-dir") {
		logDir, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &logDir
	}
	cfg.MergeWithFlags(nil, nil, nil, transferPtr, logDirPtr)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir := args[0]
	outputDir, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	label, _ := cmd.Flags().GetString("label")
	out := cmd.OutOrStdout()

	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	classifier := classify.NewWithRules(cfg.ToRules())

	// Dry-run mode: render the proposal and stop
	if dryRun {
		svc := organizer.NewService(organizer.Options{
			Classifier:  classifier,
			Log:         consoleLog,
			MaxDepth:    cfg.MaxDepth,
			ExcludeDirs: cfg.ExcludeDirs,
		})
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

		fmt.Fprintf(out, "Proposed structure for %s -> %s (%s mode):\n\n", dir, outputDir, cfg.Mode)
		renderTree(out, resp.Tree, isatty.IsTerminal(os.Stdout.Fd()))
		fmt.Fprintf(out, "\nDry run: no files were moved.\n")
		return nil
	}

	// One operation per root: refuse to start while another invocation
	// holds the lock.
	lock, err := oplock.ForRoot(dir)
	if err != nil {
		return fmt.Errorf("prepare operation lock: %w", err)
	}
	acquired, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire operation lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("another tidydir operation is already running on %s", dir)
	}
	defer lock.Unlock()

	fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer fileLog.Close()

	// Log to both console and file
	multiLog := &multiLogger{
		loggers: []executor.Logger{consoleLog, fileLog},
	}

	svc := organizer.NewService(organizer.Options{
		Classifier:  classifier,
		Log:         multiLog,
		MaxDepth:    cfg.MaxDepth,
		ExcludeDirs: cfg.ExcludeDirs,
		Transfer:    executor.Transfer(cfg.Transfer),
	})

	// Show the proposal and confirm before moving anything
	if !skipConfirm && !jsonOutput {
		preview := svc.Structure(organizer.StructureRequest{
			InputPath:  dir,
			OutputPath: outputDir,
			Mode:       cfg.Mode,
			DryRun:     true,
			Recursive:  cfg.Recursive,
		}, nil)
		if !preview.Success {
			return fmt.Errorf("%s", preview.Error)
		}

		fmt.Fprintf(out, "Proposed structure for %s -> %s (%s mode):\n\n", dir, outputDir, cfg.Mode)
		renderTree(out, preview.Tree, isatty.IsTerminal(os.Stdout.Fd()))
		fmt.Fprintln(out)

		prompt := fmt.Sprintf("%s %d files into %s?", transferVerb(cfg.Transfer), preview.Summary.PlacedFiles, outputDir)
		if !confirmAction(cmd.InOrStdin(), out, prompt) {
			fmt.Fprintf(out, "Operation cancelled.\n")
			return nil
		}
	}

	sink := progressSink(out, jsonOutput)
	resp := svc.Organize(organizer.OrganizeRequest{
		InputPath:  dir,
		OutputPath: outputDir,
		Mode:       cfg.Mode,
		Recursive:  cfg.Recursive,
	}, sink)

	if resp.Success {
		recordHistory(cfg, resp, label, consoleLog)
		if err := fileLog.LogReport(resp.Report); err != nil {
			consoleLog.LogWarn(fmt.Sprintf("write operation log: %v", err))
		}
	}

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("encode organize response: %w", err)
		}
		if !resp.Success {
			return fmt.Errorf("%s", resp.Error)
		}
		return nil
	}

	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	consoleLog.LogOrganizeSummary(resp.Report)

	// Partial per-file failure is not a command failure; the summary
	// above lists every file that could not be placed.
	if resp.FailedFiles > 0 {
		fmt.Fprintf(out, "Completed with %d failed placements. See %s for details.\n",
			resp.FailedFiles, cfg.LogDir)
	}

	return nil
}

// recordHistory journals a completed operation. History failures are
// warnings: the files have already been placed.
func recordHistory(cfg *config.Config, resp organizer.OrganizeResponse, label string, log *logger.ConsoleLogger) {
	if !cfg.History.Enabled || resp.Report == nil {
		return
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("open history store: %v", err))
		return
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.RecordReport(ctx, resp.Report, label); err != nil {
		log.LogWarn(fmt.Sprintf("record operation history: %v", err))
		return
	}
	if cfg.History.KeepDays > 0 {
		if _, err := store.CleanupOldOperations(ctx, cfg.History.KeepDays); err != nil {
			log.LogWarn(fmt.Sprintf("prune operation history: %v", err))
		}
	}
}

// progressSink builds the sink that animates the console progress bar.
// Only an interactive stdout gets the bar; JSON mode and pipes stay
// silent because the executor narrates through the loggers anyway.
func progressSink(out io.Writer, jsonOutput bool) progress.Sink {
	if jsonOutput || !isatty.IsTerminal(os.Stdout.Fd()) {
		return progress.Discard
	}

	pb := logger.NewProgressBar(100, 24, true)
	return progress.FuncSink(func(e progress.Event) {
		pb.Update(e.Percent)
		fmt.Fprintf(out, "\r\033[K%s %s", pb.Render(), e.Message)
		if e.Percent >= 100 {
			fmt.Fprintln(out)
		}
	})
}

// transferVerb names the transfer for the confirmation prompt.
func transferVerb(transfer string) string {
	if transfer == string(executor.TransferCopy) {
		return "Copy"
	}
	return "Move"
}

// multiLogger implements executor.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []executor.Logger
}

// LogDebug delegates debug messages to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo delegates info messages to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn delegates warning messages to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogError delegates error messages to all loggers
func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}
