package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/store"
)

func openSQLite(t *testing.T) *store.SQLStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "audit.db")
	s, err := store.Open(context.Background(), "sqlite", dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStoreRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	if err := s.BeginRun(ctx, "run-1"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	docs := []store.Document{
		{RunID: "run-1", SourcePath: "/docs/a.txt", Source: "NCMEC", CaseID: "GRD-2025-000001", Status: constants.DocStatusAccepted},
		{RunID: "run-1", SourcePath: "/docs/b.txt", Source: "VSP", CaseID: "GRD-2025-000002", Status: constants.DocStatusSkipped, Detail: "demographic.gender: bad value"},
		{RunID: "run-1", SourcePath: "/docs/c.txt", Source: "Unknown", Status: constants.DocStatusError, Detail: "document text is empty"},
	}
	for _, d := range docs {
		if err := s.RecordDocument(ctx, d); err != nil {
			t.Fatalf("RecordDocument(%s): %v", d.SourcePath, err)
		}
	}
	if err := s.FinishRun(ctx, "run-1", 1, 1); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := s.RunDocuments(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunDocuments: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d documents, want 3", len(got))
	}
	for i, d := range got {
		if d.SourcePath != docs[i].SourcePath || d.Status != docs[i].Status || d.Detail != docs[i].Detail {
			t.Errorf("document %d = %+v, want %+v", i, d, docs[i])
		}
		if d.CreatedAt.IsZero() {
			t.Errorf("document %d has zero created_at", i)
		}
	}
}

func TestSQLStoreRunsIsolated(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	for _, run := range []string{"run-a", "run-b"} {
		if err := s.BeginRun(ctx, run); err != nil {
			t.Fatal(err)
		}
		if err := s.RecordDocument(ctx, store.Document{
			RunID: run, SourcePath: "/docs/x.txt", Source: "FBI", Status: constants.DocStatusAccepted,
		}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RunDocuments(ctx, "run-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RunID != "run-a" {
		t.Errorf("run-a documents = %+v", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := store.Open(context.Background(), "oracle", "dsn"); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}
