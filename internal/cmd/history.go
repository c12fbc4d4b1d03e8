package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/tidydir/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'tidydir history' parent command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past organize operations",
		Long: `Commands for viewing and managing recorded organize operations.

Every executed organize run is journaled with its per-file placements,
so there is always an answer to "where did that file go".

Running 'tidydir history' with no subcommand lists recent operations.`,
		RunE: runHistoryList,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of operations to list (0 = all)")
	addHistoryFlags(cmd)

	// Add subcommands
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryClearCommand())
	cmd.AddCommand(newHistoryExportCommand())

	return cmd
}

// addHistoryFlags registers the flags shared by the history commands.
func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .tidydir/config.yaml)")
	cmd.Flags().String("db-path", "", "Path to history database (overrides config)")
}

// historyDBPath resolves the history database location for a command.
func historyDBPath(cmd *cobra.Command) (string, error) {
	if dbPath, _ := cmd.Flags().GetString("db-path"); dbPath != "" {
		return dbPath, nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	return cfg.History.DBPath, nil
}

// runHistoryList lists recent operations, most recent first
func runHistoryList(cmd *cobra.Command, args []string) error {
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

	limit, _ := cmd.Flags().GetInt("limit")
	operations, err := store.ListOperations(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("list operations: %w", err)
	}

	if len(operations) == 0 {
		fmt.Fprintf(output, "No operations recorded yet.\n")
		return nil
	}

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, op := range operations {
		cyan.Fprintf(output, "%s", shortID(op.OperationID))
		fmt.Fprintf(output, "  %s  %s/%s  %s -> %s  ",
			op.StartedAt.Format("2006-01-02 15:04:05"), op.Mode, op.Transfer,
			op.RootPath, op.OutputPath)
		green.Fprintf(output, "%d placed", op.ProcessedFiles)
		if op.FailedFiles > 0 {
			fmt.Fprintf(output, ", ")
			red.Fprintf(output, "%d failed", op.FailedFiles)
		}
		if op.Label != "" {
			fmt.Fprintf(output, "  (%s)", op.Label)
		}
		fmt.Fprintln(output)
	}

	return nil
}

// shortID truncates an operation id for list display. Show accepts the
// prefix back.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatAge formats how long ago a timestamp was for human-readable display
func formatAge(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}
