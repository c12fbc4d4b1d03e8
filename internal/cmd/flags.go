package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harrison/tidydir/internal/config"
	"github.com/spf13/cobra"
)

// addScanFlags registers the flags shared by every command that scans a
// directory.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .tidydir/config.yaml)")
	cmd.Flags().Bool("recursive", false, "Descend into sub-folders (overrides config)")
	cmd.Flags().Bool("no-recursive", false, "List only the top level (overrides config)")
	cmd.Flags().Int("depth", 0, "Maximum scan depth (overrides config)")
}

// loadConfig resolves configuration for a command invocation. The
// --config flag wins over the TIDYDIR_CONFIG environment variable,
// which wins over .tidydir/config.yaml in the working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = os.Getenv("TIDYDIR_CONFIG")
	}

	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// mergeScanFlags merges the shared scan flags into cfg. Flags the user
// did not set leave the configured values alone.
func mergeScanFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("recursive") && cmd.Flags().Changed("no-recursive") {
		return fmt.Errorf("cannot use both --recursive and --no-recursive")
	}

	var recursivePtr *bool
	if cmd.Flags().Changed("recursive") {
		v, _ := cmd.Flags().GetBool("recursive")
		recursivePtr = &v
	} else if cmd.Flags().Changed("no-recursive") {
		v, _ := cmd.Flags().GetBool("no-recursive")
		enabled := !v
		recursivePtr = &enabled
	}

	var depthPtr *int
	if cmd.Flags().Changed("depth") {
		depth, _ := cmd.Flags().GetInt("depth")
		depthPtr = &depth
	}

	var modePtr *string
	if cmd.Flags().Changed("mode") {
		mode, _ := cmd.Flags().GetString("mode")
		modePtr = &mode
	}

	cfg.MergeWithFlags(depthPtr, recursivePtr, modePtr, nil, nil)
	return nil
}

// confirmAction prompts for a y/N answer on in.
func confirmAction(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
