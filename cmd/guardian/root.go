package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "guardian",
	Short: "Missing-person case document extraction pipeline",
	Long: "Guardian ingests missing-person case documents from multiple issuing\n" +
		"organizations, extracts structured case records, and emits schema-valid\n" +
		"JSONL and CSV datasets.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "Path to YAML config file (default: ./guardian.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(fixDatesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.Version = version
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if rootFlags.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
