package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/harrison/tidydir/internal/history"
	"github.com/spf13/cobra"
)

// newHistoryClearCommand creates the 'tidydir history clear' command
func newHistoryClearCommand() *cobra.Command {
	var olderThan string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete recorded operations",
		Long: `Delete recorded operations and their placements.

Without flags the entire history is cleared. With --older-than only
operations older than the given number of days are deleted.

Examples:
  # Clear everything (requires confirmation)
  tidydir history clear

  # Keep the last 30 days
  tidydir history clear --older-than 30d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, olderThan)
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "", "Only delete operations older than this many days (e.g. 30d)")
	addHistoryFlags(cmd)

	return cmd
}

// runHistoryClear executes the clear command
func runHistoryClear(cmd *cobra.Command, olderThan string) error {
	output := cmd.OutOrStdout()

	var keepDays int
	if olderThan != "" {
		days, err := parseDays(olderThan)
		if err != nil {
			return err
		}
		keepDays = days
	}

	dbPath, err := historyDBPath(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No history database found at: %s\n", dbPath)
		return nil
	}

	if olderThan == "" {
		fmt.Fprintf(output, "WARNING: This will delete ALL recorded operations.\n")
	} else {
		fmt.Fprintf(output, "This will delete operations older than %d days.\n", keepDays)
	}
	if !confirmAction(cmd.InOrStdin(), output, "Continue?") {
		fmt.Fprintf(output, "Operation cancelled.\n")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	var deletedCount int64
	if olderThan == "" {
		deletedCount, err = store.ClearAll(ctx)
	} else {
		deletedCount, err = store.CleanupOldOperations(ctx, keepDays)
	}
	if err != nil {
		return fmt.Errorf("delete operations: %w", err)
	}

	recordText := "operation"
	if deletedCount != 1 {
		recordText = "operations"
	}
	fmt.Fprintf(output, "Deleted %d %s.\n", deletedCount, recordText)

	return nil
}

// parseDays parses a day count like "30d" or "30".
func parseDays(s string) (int, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "d")
	days, err := strconv.Atoi(trimmed)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("invalid day count %q, expected a value like 30d", s)
	}
	return days, nil
}
