package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/detect"
	"github.com/jcastillo-osint/guardian-pipeline/internal/output"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
	"github.com/jcastillo-osint/guardian-pipeline/internal/sanitize"
	"github.com/jcastillo-osint/guardian-pipeline/internal/schema"
	"github.com/jcastillo-osint/guardian-pipeline/internal/store"
	"github.com/jcastillo-osint/guardian-pipeline/internal/textclean"
)

// BatchOptions configures a directory run.
type BatchOptions struct {
	InputDir   string
	JSONLPath  string
	CSVPath    string
	Workers    int
	UseAgent   bool
	SkipOnFail bool
}

// BatchResult summarizes a run.
type BatchResult struct {
	RunID      string
	Documents  int
	Records    int
	Skipped    int
	Errors     int
	Backfilled int
}

// Batch drives a whole-directory run: list documents, process them with a
// bounded worker pool, backfill criticals across the full record set, then
// persist JSONL and CSV and audit every document outcome.
type Batch struct {
	logger    *slog.Logger
	processor *Processor
	agent     *Agent
	validator *schema.Validator
	audit     store.AuditStore
}

func NewBatch(logger *slog.Logger, processor *Processor, agent *Agent, validator *schema.Validator, audit store.AuditStore) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	if audit == nil {
		audit = store.NopStore{}
	}
	return &Batch{logger: logger, processor: processor, agent: agent, validator: validator, audit: audit}
}

// Run executes the batch. Document order within the outputs follows the
// sorted input listing regardless of worker interleaving.
func (b *Batch) Run(ctx context.Context, opts BatchOptions) (*BatchResult, error) {
	paths, err := listDocuments(opts.InputDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .txt documents under %s", opts.InputDir)
	}

	runID := uuid.NewString()
	if err := b.audit.BeginRun(ctx, runID); err != nil {
		return nil, err
	}
	b.logger.Info("batch.start",
		slog.String("run_id", runID),
		slog.Int("documents", len(paths)),
		slog.Bool("agent", opts.UseAgent))

	seq := NewSequence()
	res := &BatchResult{RunID: runID, Documents: len(paths)}

	// results is indexed by document position so output order is stable.
	results := make([]docResult, len(paths))

	workers := opts.Workers
	if workers < 1 {
		workers = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var mu sync.Mutex

	for i, path := range paths {
		g.Go(func() error {
			raw, err := os.ReadFile(path)
			if err != nil {
				mu.Lock()
				results[i] = docResult{err: fmt.Errorf("reading %s: %w", path, err)}
				mu.Unlock()
				return nil
			}
			var dr docResult
			if opts.UseAgent {
				dr.rows, dr.err = b.agent.ProcessDocument(gctx, string(raw), path, seq)
			} else {
				dr.recs, dr.err = b.processor.Process(gctx, string(raw), path, seq)
			}
			mu.Lock()
			results[i] = dr
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Legacy path: backfill criticals across the whole record set before
	// any record is finalized.
	if !opts.UseAgent {
		var all []*record.CaseRecord
		for _, dr := range results {
			all = append(all, dr.recs...)
		}
		res.Backfilled = BackfillRecords(b.logger, all)
	}

	w, err := output.NewJSONLWriter(opts.JSONLPath)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	var written []map[string]any
	for i, dr := range results {
		path := paths[i]
		source := b.documentSource(path, dr)
		if dr.err != nil {
			res.Errors++
			b.recordAudit(ctx, runID, path, source, "", constants.DocStatusError, dr.err.Error())
			b.logger.Error("batch.document_failed",
				slog.String("source_path", path),
				slog.Any("error", dr.err))
			continue
		}

		rows := dr.rows
		if !opts.UseAgent {
			rows, err = b.finalizeRecords(dr.recs, path)
			if err != nil {
				res.Errors++
				b.recordAudit(ctx, runID, path, source, "", constants.DocStatusError, err.Error())
				continue
			}
		}

		for _, row := range rows {
			caseID, _ := row["case_id"].(string)
			if violations := b.validator.Validate(row); len(violations) > 0 {
				if opts.SkipOnFail {
					res.Skipped++
					b.recordAudit(ctx, runID, path, source, caseID, constants.DocStatusSkipped, violations[0].String())
					continue
				}
				b.logger.Warn("batch.validation",
					slog.String("case_id", caseID),
					slog.String("first_error", violations[0].String()))
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
			written = append(written, row)
			res.Records++
			b.recordAudit(ctx, runID, path, source, caseID, constants.DocStatusAccepted, "")
		}
	}

	if opts.CSVPath != "" && len(written) > 0 {
		if err := output.WriteCSV(b.logger, written, opts.CSVPath); err != nil {
			return nil, err
		}
	}

	if err := b.audit.FinishRun(ctx, runID, res.Records, res.Errors); err != nil {
		b.logger.Warn("batch.audit_finish_failed", slog.Any("error", err))
	}
	b.logger.Info("batch.done",
		slog.String("run_id", runID),
		slog.Int("records", res.Records),
		slog.Int("skipped", res.Skipped),
		slog.Int("errors", res.Errors),
		slog.Int("backfilled", res.Backfilled))
	return res, nil
}

// finalizeRecords runs the persistence tail of the legacy path: canonical
// key rewrite and sanitize, after the backfill pass has had its chance.
func (b *Batch) finalizeRecords(recs []*record.CaseRecord, sourcePath string) ([]map[string]any, error) {
	var rows []map[string]any
	for _, rec := range recs {
		m, err := rec.ToMap()
		if err != nil {
			return nil, fmt.Errorf("encoding record %s: %w", rec.CaseID, err)
		}
		m = record.Canonicalize(m)
		m = sanitize.Sanitize(m, sourcePath)
		rows = append(rows, m)
	}
	return rows, nil
}

// docResult holds one document's outcome until the ordered write pass.
type docResult struct {
	rows []map[string]any
	recs []*record.CaseRecord
	err  error
}

// documentSource reports the detected source for audit rows, preferring the
// first produced record's provenance over re-detecting from disk.
func (b *Batch) documentSource(path string, dr docResult) string {
	if len(dr.recs) > 0 && len(dr.recs[0].Provenance.Sources) > 0 {
		return dr.recs[0].Provenance.Sources[0]
	}
	if len(dr.rows) > 0 {
		if prov, ok := dr.rows[0]["provenance"].(map[string]any); ok {
			if srcs, ok := prov["sources"].([]any); ok && len(srcs) > 0 {
				if s, ok := srcs[0].(string); ok {
					return s
				}
			}
		}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return constants.SourceUnknown.String()
	}
	return detect.Source(textclean.Prenormalize(string(raw))).String()
}

func (b *Batch) recordAudit(ctx context.Context, runID, path, source, caseID string, status constants.DocStatus, detail string) {
	err := b.audit.RecordDocument(ctx, store.Document{
		RunID:      runID,
		SourcePath: path,
		Source:     source,
		CaseID:     caseID,
		Status:     status,
		Detail:     detail,
	})
	if err != nil {
		b.logger.Warn("batch.audit_write_failed",
			slog.String("source_path", path),
			slog.Any("error", err))
	}
}

// listDocuments returns the .txt files directly under dir, sorted.
func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing input dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
