// Package export produces XLSX workbooks from finished case record sets,
// for analysts who work in spreadsheets rather than JSONL.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jcastillo-osint/guardian-pipeline/internal/output"
)

// Service turns record sets into XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

const sheetName = "Cases"

// maxCellChars keeps narrative cells readable; spreadsheets choke on
// multi-kilobyte summaries.
const maxCellChars = 500

// ExportXLSX returns an XLSX workbook for the given records, one row per
// case, columns matching the CSV layout.
func (s *Service) ExportXLSX(records []map[string]any) ([]byte, error) {
	start := time.Now()
	columns, rows := output.Flatten(records)

	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for r, row := range rows {
		for c, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheetName, cell, truncate(row[col], maxCellChars))
		}
	}

	// Freeze the header row.
	_ = f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	// Widen columns to their content, capped so narratives stay sane.
	for i, col := range columns {
		width := float64(len(col)) + 2
		for _, row := range rows {
			if w := float64(len(row[col])) + 2; w > width {
				width = w
			}
		}
		if width > 60 {
			width = 60
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, name, name, width)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		slog.Int("rows", len(rows)),
		slog.Int("columns", len(columns)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return buf.Bytes(), nil
}

// ExportJSONLToXLSX reads a finished JSONL file and writes its XLSX
// rendering to outPath.
func (s *Service) ExportJSONLToXLSX(jsonlPath, outPath string) error {
	records, err := output.ReadJSONL(jsonlPath)
	if err != nil {
		return err
	}
	data, err := s.ExportXLSX(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
