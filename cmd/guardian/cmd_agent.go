package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcastillo-osint/guardian-pipeline/internal/pipeline"
)

var agentFlags struct {
	inputDir   string
	jsonlPath  string
	csvPath    string
	workers    int
	skipOnFail bool
}

var agentCmd = &cobra.Command{
	Use:   "agent [input-dir]",
	Short: "Process documents with the model-assisted extraction flow",
	Long: `Process every .txt document in a directory through the chat model:
extraction, coercion, sanitization, schema validation, and one
validator-guided repair attempt per failing record. Multi-case state
police bulletins are routed to the rule-based extractors.

The model backend comes from config: Ollama by default, set
llm.backend to "openai" (with llm.api_key) to use the OpenAI API.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAgent,
}

func init() {
	f := agentCmd.Flags()
	f.StringVar(&agentFlags.inputDir, "input", "", "Directory of .txt case documents")
	f.StringVar(&agentFlags.jsonlPath, "jsonl", "", "JSONL output path (default from config)")
	f.StringVar(&agentFlags.csvPath, "csv", "", "CSV output path (default from config)")
	f.IntVar(&agentFlags.workers, "workers", 0, "Concurrent document workers (default from config)")
	f.BoolVar(&agentFlags.skipOnFail, "skip-invalid", true, "Skip records that stay invalid after repair")
}

func runAgent(cmd *cobra.Command, args []string) error {
	inputDir := agentFlags.inputDir
	if inputDir == "" && len(args) > 0 {
		inputDir = args[0]
	}
	if inputDir == "" {
		return fmt.Errorf("input directory is required\n\nUsage: guardian agent <input-dir>")
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	agent, err := rt.newAgent()
	if err != nil {
		return err
	}

	opts := pipeline.BatchOptions{
		InputDir:   inputDir,
		JSONLPath:  firstNonEmpty(agentFlags.jsonlPath, rt.cfg.Output.JSONLPath),
		CSVPath:    firstNonEmpty(agentFlags.csvPath, rt.cfg.Output.CSVPath),
		Workers:    agentFlags.workers,
		UseAgent:   true,
		SkipOnFail: agentFlags.skipOnFail,
	}
	if opts.Workers < 1 {
		opts.Workers = rt.cfg.Workers
	}

	b := pipeline.NewBatch(rt.logger, rt.processor, agent, rt.validator, rt.audit)
	res, err := b.Run(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"Run %s: %d documents, %d records written, %d skipped, %d errors\n",
		res.RunID, res.Documents, res.Records, res.Skipped, res.Errors)
	return nil
}
