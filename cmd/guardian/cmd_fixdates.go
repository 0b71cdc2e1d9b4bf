package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcastillo-osint/guardian-pipeline/internal/pipeline"
)

var fixDatesCmd = &cobra.Command{
	Use:   "fix-dates <cases.jsonl>",
	Short: "Recover missing last-seen dates in a finished JSONL file",
	Long: `Reread a finished JSONL dataset and repair records whose last_seen_ts
is empty by rescanning their narrative and provenance text for labeled
dates. The repaired set is written next to the input as <name>.fixed.jsonl.`,
	Args: cobra.ExactArgs(1),
	RunE: runFixDates,
}

func runFixDates(cmd *cobra.Command, args []string) error {
	outPath, fixed, err := pipeline.FixDatesFile(newLogger(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Repaired %d records, wrote %s\n", fixed, outPath)
	return nil
}
