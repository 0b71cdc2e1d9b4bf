// Package store records batch run audit rows: every document that entered
// a run and how it left (accepted, skipped, or errored), with validation
// detail. Backed by SQLite for single-machine runs and Postgres for shared
// deployments; both speak database/sql.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
)

// Document is one audit row.
type Document struct {
	RunID      string
	SourcePath string
	Source     string
	CaseID     string
	Status     constants.DocStatus
	Detail     string
	CreatedAt  time.Time
}

// Run is one batch invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Errors     int
}

// AuditStore persists runs and their document outcomes.
type AuditStore interface {
	BeginRun(ctx context.Context, runID string) error
	RecordDocument(ctx context.Context, doc Document) error
	FinishRun(ctx context.Context, runID string, processed, errs int) error
	Close() error
}

// SQLStore implements AuditStore over database/sql.
type SQLStore struct {
	db     *sql.DB
	driver string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	processed INTEGER NOT NULL DEFAULT 0,
	errors INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id),
	source_path TEXT NOT NULL,
	source TEXT NOT NULL,
	case_id TEXT,
	status TEXT NOT NULL,
	detail TEXT,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	processed INTEGER NOT NULL DEFAULT 0,
	errors INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS documents (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id),
	source_path TEXT NOT NULL,
	source TEXT NOT NULL,
	case_id TEXT,
	status TEXT NOT NULL,
	detail TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
`

// Open connects to the configured backend and ensures the schema exists.
// driver is "sqlite" or "postgres".
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var (
		db     *sql.DB
		schema string
		err    error
	)
	switch driver {
	case "sqlite", "":
		db, err = sql.Open("sqlite", dsn)
		schema = sqliteSchema
		driver = "sqlite"
	case "postgres":
		db, err = sql.Open("pgx", dsn)
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s store: %w", driver, err)
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating audit schema: %w", err)
		}
	}
	return &SQLStore{db: db, driver: driver}, nil
}

func (s *SQLStore) BeginRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO runs (id, started_at) VALUES (?, ?)`),
		runID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

func (s *SQLStore) RecordDocument(ctx context.Context, doc Document) error {
	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO documents (run_id, source_path, source, case_id, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		doc.RunID, doc.SourcePath, doc.Source, doc.CaseID, string(doc.Status), doc.Detail, created)
	if err != nil {
		return fmt.Errorf("recording document %s: %w", doc.SourcePath, err)
	}
	return nil
}

func (s *SQLStore) FinishRun(ctx context.Context, runID string, processed, errs int) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE runs SET finished_at = ?, processed = ?, errors = ? WHERE id = ?`),
		time.Now().UTC(), processed, errs, runID)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// RunDocuments returns the audit rows of a run, oldest first.
func (s *SQLStore) RunDocuments(ctx context.Context, runID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT run_id, source_path, source, case_id, status, detail, created_at
		FROM documents WHERE run_id = ? ORDER BY id`), runID)
	if err != nil {
		return nil, fmt.Errorf("querying run documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var status string
		if err := rows.Scan(&d.RunID, &d.SourcePath, &d.Source, &d.CaseID, &status, &d.Detail, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		d.Status = constants.DocStatus(status)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $N for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// NopStore discards all audit writes. Used when no store is configured.
type NopStore struct{}

func (NopStore) BeginRun(context.Context, string) error            { return nil }
func (NopStore) RecordDocument(context.Context, Document) error    { return nil }
func (NopStore) FinishRun(context.Context, string, int, int) error { return nil }
func (NopStore) Close() error                                      { return nil }
