package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcastillo-osint/guardian-pipeline/internal/pipeline"
)

var batchFlags struct {
	inputDir  string
	jsonlPath string
	csvPath   string
	workers   int
}

var batchCmd = &cobra.Command{
	Use:   "batch [input-dir]",
	Short: "Process a directory of case documents with the rule-based extractors",
	Long: `Process every .txt document in a directory: detect the issuing source,
run the matching extractor, enrich and backfill critical fields across the
whole set, then write JSONL and CSV outputs.

Usage:
  guardian batch ./documents
  guardian batch --input ./documents --jsonl cases.jsonl --csv cases.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.inputDir, "input", "", "Directory of .txt case documents")
	f.StringVar(&batchFlags.jsonlPath, "jsonl", "", "JSONL output path (default from config)")
	f.StringVar(&batchFlags.csvPath, "csv", "", "CSV output path (default from config)")
	f.IntVar(&batchFlags.workers, "workers", 0, "Concurrent document workers (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputDir := batchFlags.inputDir
	if inputDir == "" && len(args) > 0 {
		inputDir = args[0]
	}
	if inputDir == "" {
		return fmt.Errorf("input directory is required\n\nUsage: guardian batch <input-dir>")
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	opts := pipeline.BatchOptions{
		InputDir:  inputDir,
		JSONLPath: firstNonEmpty(batchFlags.jsonlPath, rt.cfg.Output.JSONLPath),
		CSVPath:   firstNonEmpty(batchFlags.csvPath, rt.cfg.Output.CSVPath),
		Workers:   batchFlags.workers,
	}
	if opts.Workers < 1 {
		opts.Workers = rt.cfg.Workers
	}

	b := pipeline.NewBatch(rt.logger, rt.processor, nil, rt.validator, rt.audit)
	res, err := b.Run(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"Run %s: %d documents, %d records written, %d skipped, %d errors, %d dates backfilled\n",
		res.RunID, res.Documents, res.Records, res.Skipped, res.Errors, res.Backfilled)
	return nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
