package export_test

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jcastillo-osint/guardian-pipeline/internal/export"
	"github.com/jcastillo-osint/guardian-pipeline/internal/output"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecords() []map[string]any {
	return []map[string]any{
		{
			"case_id":         "GRD-2025-000001",
			"demographic":     map[string]any{"name": "Jane Doe", "gender": "female"},
			"temporal":        map[string]any{"last_seen_ts": "2025-09-08T00:00:00Z"},
			"spatial":         map[string]any{"last_seen_city": "Richmond", "last_seen_state": "Virginia"},
			"narrative_osint": map[string]any{"incident_summary": strings.Repeat("Very long narrative. ", 60)},
			"outcome":         map[string]any{"case_status": "ongoing"},
			"provenance":      map[string]any{"sources": []any{"NCMEC"}},
		},
		{
			"case_id":     "GRD-2025-000002",
			"demographic": map[string]any{"name": "John Smith", "gender": "male"},
			"outcome":     map[string]any{"case_status": "found"},
			"provenance":  map[string]any{"sources": []any{"VSP"}},
		},
	}
}

func TestExportXLSX(t *testing.T) {
	data, err := export.NewService(discardLogger()).ExportXLSX(sampleRecords())
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reading workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Cases" {
		t.Fatalf("sheets = %v, want only Cases", sheets)
	}

	rows, err := f.GetRows("Cases")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 records", len(rows))
	}
	header := rows[0]
	if header[0] != "source" || header[1] != "case_id" {
		t.Errorf("header starts %v", header[:2])
	}

	byCol := func(row []string, col string) string {
		for i, h := range header {
			if h == col && i < len(row) {
				return row[i]
			}
		}
		return ""
	}
	if got := byCol(rows[1], "full_name"); got != "Jane Doe" {
		t.Errorf("full_name = %q", got)
	}
	if got := byCol(rows[2], "case_status"); got != "found" {
		t.Errorf("case_status = %q", got)
	}

	summary := byCol(rows[1], "incident_summary")
	if len(summary) > 510 {
		t.Errorf("narrative cell not truncated, %d chars", len(summary))
	}
	if !strings.HasSuffix(summary, "…") {
		t.Errorf("truncated cell missing ellipsis: %q", summary[len(summary)-20:])
	}
}

func TestExportJSONLToXLSX(t *testing.T) {
	dir := t.TempDir()
	jsonlPath := filepath.Join(dir, "cases.jsonl")
	outPath := filepath.Join(dir, "cases.xlsx")

	w, err := output.NewJSONLWriter(jsonlPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range sampleRecords() {
		if err := w.Write(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if err := export.NewService(discardLogger()).ExportJSONLToXLSX(jsonlPath, outPath); err != nil {
		t.Fatalf("ExportJSONLToXLSX: %v", err)
	}

	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("opening %s: %v", outPath, err)
	}
	defer f.Close()
	rows, err := f.GetRows("Cases")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}

	if _, err := os.Stat(outPath); err != nil {
		t.Error(err)
	}
}

func TestExportJSONLToXLSXMissingInput(t *testing.T) {
	s := export.NewService(discardLogger())
	if err := s.ExportJSONLToXLSX(filepath.Join(t.TempDir(), "nope.jsonl"), "out.xlsx"); err == nil {
		t.Error("expected an error for a missing input file")
	}
}
