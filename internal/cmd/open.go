package cmd

import (
	"fmt"

	"github.com/harrison/tidydir/internal/organizer"
	"github.com/spf13/cobra"
)

// NewOpenCommand creates the open command
func NewOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open a directory in the system file browser",
		Long: `Open a path in the platform file browser, typically the output
directory of a finished organize run.`,
		Args: cobra.ExactArgs(1),
		RunE: runOpen,
	}
}

// runOpen implements the open command logic
func runOpen(cmd *cobra.Command, args []string) error {
	svc := organizer.NewService(organizer.Options{})
	resp := svc.OpenOutput(organizer.OpenRequest{Path: args[0]})
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", args[0])
	return nil
}
