package pipeline_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/output"
	"github.com/jcastillo-osint/guardian-pipeline/internal/pipeline"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

func TestBackfillRecords(t *testing.T) {
	missing := record.New("GRD-2025-000001", constants.SourceNCMEC)
	missing.FullText = "DESTINY CARTER\nMissing Since: September 8, 2025\nMissing From: Richmond, VA\nSex: Female"

	complete := record.New("GRD-2025-000002", constants.SourceFBI)
	complete.Temporal.LastSeenTS = "2024-05-01T00:00:00Z"
	complete.Demographic.Gender = "male"
	complete.FullText = "Last seen January 1, 2020"

	hopeless := record.New("GRD-2025-000003", constants.SourceUnknown)
	hopeless.FullText = "No dates anywhere in this text."

	recovered := pipeline.BackfillRecords(discardLogger(), []*record.CaseRecord{missing, complete, hopeless})

	if recovered != 1 {
		t.Errorf("recovered = %d, want 1", recovered)
	}
	if missing.Temporal.LastSeenTS != "2025-09-08" {
		t.Errorf("LastSeenTS = %q, want the matcher's date-only form", missing.Temporal.LastSeenTS)
	}
	if missing.Demographic.Gender != "female" {
		t.Errorf("Gender = %q", missing.Demographic.Gender)
	}
	if complete.Temporal.LastSeenTS != "2024-05-01T00:00:00Z" {
		t.Error("complete record should not be touched")
	}
	if hopeless.Temporal.LastSeenTS != "" {
		t.Errorf("hopeless record gained LastSeenTS %q", hopeless.Temporal.LastSeenTS)
	}
}

func TestFixDatesFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cases.jsonl")

	records := []map[string]any{
		{
			"case_id":   "GRD-2025-000001",
			"_fulltext": "should never survive",
			"demographic": map[string]any{
				"gender":    "female",
				"_fulltext": "should never survive either",
			},
			"temporal": map[string]any{"last_seen_ts": ""},
			"narrative_osint": map[string]any{
				"incident_summary": "Missing Since: September 8, 2025. She left on foot.",
			},
		},
		{
			"case_id":  "GRD-2025-000002",
			"temporal": map[string]any{"last_seen_ts": ""},
			"provenance": map[string]any{
				"agency": "Richmond PD",
				"notes":  "Last seen 9/10/2025 near the bus depot",
			},
		},
		{
			"case_id":  "GRD-2025-000003",
			"temporal": map[string]any{"last_seen_ts": "2024-01-01T00:00:00Z"},
			"narrative_osint": map[string]any{
				"incident_summary": "Missing Since: March 1, 2020",
			},
		},
	}
	w, err := output.NewJSONLWriter(in)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	outPath, fixed, err := pipeline.FixDatesFile(discardLogger(), in)
	if err != nil {
		t.Fatalf("FixDatesFile: %v", err)
	}
	if want := filepath.Join(dir, "cases.fixed.jsonl"); outPath != want {
		t.Errorf("outPath = %q, want %q", outPath, want)
	}
	if fixed != 2 {
		t.Errorf("fixed = %d, want 2", fixed)
	}

	got, err := output.ReadJSONL(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}

	ts := func(rec map[string]any) string {
		temp, _ := rec["temporal"].(map[string]any)
		s, _ := temp["last_seen_ts"].(string)
		return s
	}
	if ts(got[0]) != "2025-09-08T00:00:00Z" {
		t.Errorf("record 1 last_seen_ts = %q", ts(got[0]))
	}
	if ts(got[1]) != "2025-09-10T00:00:00Z" {
		t.Errorf("record 2 last_seen_ts = %q", ts(got[1]))
	}
	if ts(got[2]) != "2024-01-01T00:00:00Z" {
		t.Error("already-dated record should not change")
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "_fulltext") {
		t.Error("_fulltext leaked into the fixed file")
	}
	if !json.Valid([]byte(strings.SplitN(string(raw), "\n", 2)[0])) {
		t.Error("first output line is not valid JSON")
	}
}
