package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for tidydir
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tidydir",
		Short: "Organize messy directories into tidy category trees",
		Long: `Tidydir scans a directory, groups its files by content category,
file type or modification date, and moves or copies them into a
clean folder structure.

The proposed structure can always be previewed before any file is
touched, and every executed operation is recorded so it can be
inspected later.

Configuration is loaded from .tidydir/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewPreviewCommand())
	cmd.AddCommand(NewOrganizeCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewOpenCommand())

	return cmd
}
