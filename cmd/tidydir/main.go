package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/harrison/tidydir/internal/cmd"
)

func main() {
	// Optional .env for TIDYDIR_CONFIG and friends; absence is fine.
	_ = godotenv.Load()

	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
