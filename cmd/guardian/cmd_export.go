package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcastillo-osint/guardian-pipeline/internal/export"
)

var exportFlags struct {
	outPath string
}

var exportCmd = &cobra.Command{
	Use:   "export <cases.jsonl>",
	Short: "Export a JSONL dataset as an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.outPath, "output", "o", "", "Output XLSX path (default: input name with .xlsx)")
}

func runExport(cmd *cobra.Command, args []string) error {
	in := args[0]
	out := exportFlags.outPath
	if out == "" {
		out = strings.TrimSuffix(in, ".jsonl") + ".xlsx"
	}
	svc := export.NewService(newLogger())
	if err := svc.ExportJSONLToXLSX(in, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", out)
	return nil
}
