package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/output"
	"github.com/jcastillo-osint/guardian-pipeline/internal/pipeline"
	"github.com/jcastillo-osint/guardian-pipeline/internal/store"
)

type memStore struct {
	mu       sync.Mutex
	begun    []string
	docs     []store.Document
	finished bool
}

func (m *memStore) BeginRun(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begun = append(m.begun, runID)
	return nil
}

func (m *memStore) RecordDocument(_ context.Context, doc store.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memStore) FinishRun(context.Context, string, int, int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = true
	return nil
}

func (m *memStore) Close() error { return nil }

const batchNCMECDoc = `Have you seen this child?
DESTINY FAITH CARTER
Missing Since: September 8, 2025
Missing From: Richmond, VA
Age Now: 15
Sex: Female
NCMEC: 2025-1234
DESTINY WAS LAST SEEN WEARING A GRAY HOODIE.
RICHMOND POLICE DEPARTMENT 804-646-5100`

const batchVSPDoc = `Virginia State Police
MISSING PERSONS
This bulletin lists active missing person cases across the Commonwealth.

Jane Marie Doe
Missing From: Richmond, Virginia
Missing Since: September 8, 2025
Age at Disappearance: 16
Sex: Female
VSP Case #: 25-1234

John Smith
Missing From: Norfolk, Virginia
Missing Since: August 1, 2025
Age at Disappearance: 14
Sex: Male
VSP Case #: 25-5678`

func writeBatchDocs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	docs := map[string]string{
		"a_ncmec.txt": batchNCMECDoc,
		"b_vsp.txt":   batchVSPDoc,
		"c_empty.txt": "   ",
		"ignored.pdf": "not a text document",
	}
	for name, body := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestBatchRunLegacy(t *testing.T) {
	dir := writeBatchDocs(t)
	outDir := t.TempDir()
	jsonlPath := filepath.Join(outDir, "cases.jsonl")
	csvPath := filepath.Join(outDir, "cases.csv")

	audit := &memStore{}
	processor := pipeline.NewProcessor(discardLogger(), nil, false)
	b := pipeline.NewBatch(discardLogger(), processor, nil, newTestValidator(t), audit)

	res, err := b.Run(context.Background(), pipeline.BatchOptions{
		InputDir:  dir,
		JSONLPath: jsonlPath,
		CSVPath:   csvPath,
		Workers:   2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Documents != 3 {
		t.Errorf("Documents = %d, want 3 (.pdf ignored)", res.Documents)
	}
	if res.Records != 3 {
		t.Errorf("Records = %d, want 1 NCMEC + 2 VSP", res.Records)
	}
	if res.Errors != 1 {
		t.Errorf("Errors = %d, want 1 for the blank document", res.Errors)
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}

	recs, err := output.ReadJSONL(jsonlPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("jsonl has %d records, want 3", len(recs))
	}
	// Sorted input listing: the NCMEC document writes first.
	srcs := func(rec map[string]any) []any {
		prov, _ := rec["provenance"].(map[string]any)
		s, _ := prov["sources"].([]any)
		return s
	}
	if s := srcs(recs[0]); len(s) == 0 || s[0] != "NCMEC" {
		t.Errorf("first record sources = %v", s)
	}
	if s := srcs(recs[1]); len(s) == 0 || s[0] != "VSP" {
		t.Errorf("second record sources = %v", s)
	}
	for i, rec := range recs {
		if rec["case_id"] == "" || rec["case_id"] == nil {
			t.Errorf("record %d has no case_id", i)
		}
		if _, ok := rec["_fulltext"]; ok {
			t.Errorf("record %d leaks _fulltext", i)
		}
	}

	if _, err := os.Stat(csvPath); err != nil {
		t.Errorf("csv output missing: %v", err)
	}

	if len(audit.begun) != 1 || audit.begun[0] != res.RunID {
		t.Errorf("BeginRun calls = %v", audit.begun)
	}
	if !audit.finished {
		t.Error("FinishRun never called")
	}
	var accepted, errored int
	for _, doc := range audit.docs {
		switch doc.Status {
		case constants.DocStatusAccepted:
			accepted++
		case constants.DocStatusError:
			errored++
		}
	}
	if accepted != 3 || errored != 1 {
		t.Errorf("audit rows: %d accepted, %d errored", accepted, errored)
	}
}

func TestBatchRunEmptyDir(t *testing.T) {
	b := pipeline.NewBatch(discardLogger(), pipeline.NewProcessor(discardLogger(), nil, false), nil, newTestValidator(t), nil)
	_, err := b.Run(context.Background(), pipeline.BatchOptions{
		InputDir:  t.TempDir(),
		JSONLPath: filepath.Join(t.TempDir(), "cases.jsonl"),
	})
	if err == nil {
		t.Error("expected an error for a directory with no documents")
	}
}
