package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/harrison/tidydir/internal/history"
	"github.com/harrison/tidydir/internal/oplock"
	"github.com/spf13/cobra"
)

// exportRecord pairs an operation with its placements for export.
type exportRecord struct {
	Operation  *history.Operation
	Placements []history.Placement
}

// newHistoryExportCommand creates the 'tidydir history export' command
func newHistoryExportCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded operations to JSON",
		Long: `Export every recorded operation with its placements as JSON, for
external analysis or backup.

If no output file is specified, data is written to stdout. Writes to
a file are atomic: a concurrent export never leaves a half-written
document behind.

Examples:
  tidydir history export
  tidydir history export --out operations.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryExport(cmd, outPath)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (stdout if not specified)")
	addHistoryFlags(cmd)

	return cmd
}

// runHistoryExport executes the export command
func runHistoryExport(cmd *cobra.Command, outPath string) error {
	dbPath, err := historyDBPath(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no history database found at: %s", dbPath)
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	operations, err := store.ListOperations(ctx, 0)
	if err != nil {
		return fmt.Errorf("list operations: %w", err)
	}

	// Empty history exports as [] rather than null
	records := make([]exportRecord, 0, len(operations))
	for _, op := range operations {
		placements, err := store.GetPlacements(ctx, op.OperationID)
		if err != nil {
			return fmt.Errorf("get placements for %s: %w", op.OperationID, err)
		}
		records = append(records, exportRecord{Operation: op, Placements: placements})
	}

	if outPath == "" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(records); err != nil {
			return fmt.Errorf("encode export: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	data = append(data, '\n')
	if err := oplock.LockAndWrite(outPath, data); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d operations to %s\n", len(records), outPath)
	return nil
}
