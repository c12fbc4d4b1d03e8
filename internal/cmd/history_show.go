package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/tidydir/internal/history"
	"github.com/spf13/cobra"
)

// newHistoryShowCommand creates the 'tidydir history show' command
func newHistoryShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <operation-id>",
		Short: "Show one operation and its placements",
		Long: `Display a recorded operation in detail:
  - what was organized, where to, and with which mode
  - per-file placements with their destinations
  - every placement that failed and why

The operation id may be abbreviated to any unique prefix, such as the
eight characters printed by 'tidydir history'.`,
		Args: cobra.ExactArgs(1),
		RunE: runHistoryShow,
	}

	addHistoryFlags(cmd)

	return cmd
}

// runHistoryShow executes the show command
func runHistoryShow(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()

	dbPath, err := historyDBPath(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No operations recorded yet.\n")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	op, err := store.GetOperation(ctx, args[0])
	if err != nil {
		return err
	}

	placements, err := store.GetPlacements(ctx, op.OperationID)
	if err != nil {
		return fmt.Errorf("get placements: %w", err)
	}

	printOperation(output, op, placements)

	return nil
}

// printOperation formats and prints one recorded operation
func printOperation(w io.Writer, op *history.Operation, placements []history.Placement) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "\n=== Operation %s ===\n\n", op.OperationID)

	fmt.Fprintf(w, "Source: %s\n", op.RootPath)
	fmt.Fprintf(w, "Output: %s\n", op.OutputPath)
	fmt.Fprintf(w, "Mode: %s\n", op.Mode)
	fmt.Fprintf(w, "Transfer: %s\n", op.Transfer)
	if op.Label != "" {
		fmt.Fprintf(w, "Label: %s\n", op.Label)
	}
	fmt.Fprintf(w, "Started: %s ", formatTimestamp(op.StartedAt))
	gray.Fprintf(w, "(%s ago)\n", formatAge(time.Since(op.StartedAt)))
	fmt.Fprintf(w, "Duration: %.1fs\n", float64(op.DurationMS)/1000.0)
	fmt.Fprintf(w, "Files: %d total, %d placed, %d failed, %d skipped, %d renamed\n",
		op.TotalFiles, op.ProcessedFiles, op.FailedFiles, op.SkippedFiles, op.RenamedFiles)

	if len(placements) == 0 {
		fmt.Fprintln(w)
		return
	}

	cyan.Fprintf(w, "\nPlacements:\n")
	for _, p := range placements {
		fmt.Fprintf(w, "  ")
		if p.Status == "placed" {
			green.Fprintf(w, "placed")
			fmt.Fprintf(w, " %s -> %s\n", p.Source, p.Destination)
		} else {
			red.Fprintf(w, "failed")
			fmt.Fprintf(w, " %s", p.Source)
			if p.ErrorMessage != "" {
				fmt.Fprintf(w, ": ")
				red.Fprintf(w, "%s", p.ErrorMessage)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w)
}
