package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcastillo-osint/guardian-pipeline/internal/llm"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
	"github.com/jcastillo-osint/guardian-pipeline/internal/sanitize"
	"github.com/jcastillo-osint/guardian-pipeline/internal/schema"
)

// RepairOutcome is the terminal state of a repair attempt.
type RepairOutcome int

const (
	// Repaired means the corrected record validated cleanly.
	Repaired RepairOutcome = iota
	// RepairFailed means the model answered but the record still fails
	// validation. The attempt is not retried.
	RepairFailed
	// RepairError means the repair call itself failed.
	RepairError
)

// ErrRepairFailed marks a record that stayed invalid after its one repair
// attempt.
var ErrRepairFailed = errors.New("record invalid after repair attempt")

// Repairer runs the bounded validator-feedback loop: exactly one corrective
// round trip per record, then a terminal verdict.
type Repairer struct {
	logger    *slog.Logger
	provider  llm.Provider
	validator *schema.Validator
}

func NewRepairer(logger *slog.Logger, provider llm.Provider, validator *schema.Validator) *Repairer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repairer{logger: logger, provider: provider, validator: validator}
}

// Repair sends the failing record and its violations back to the model,
// then re-coerces, re-canonicalizes, re-sanitizes, and re-validates the
// reply. The returned record is meaningful only when the outcome is
// Repaired.
func (r *Repairer) Repair(ctx context.Context, row map[string]any, violations []schema.Violation, sourcePath string) (map[string]any, RepairOutcome, error) {
	reqID := uuid.NewString()
	r.logger.Info("pipeline.repair.start",
		slog.String("req_id", reqID),
		slog.String("source_path", sourcePath),
		slog.Int("violations", len(violations)))

	prompt, err := llm.BuildRepairPrompt(row, schema.Strings(violations))
	if err != nil {
		return nil, RepairError, err
	}
	repaired, err := r.provider.ChatJSON(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: llm.ExtractPrompt},
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		r.logger.Warn("pipeline.repair.call_failed",
			slog.String("req_id", reqID),
			slog.Any("error", err))
		return nil, RepairError, err
	}

	// The prompt forbids source_path in the reply; restore it from the
	// failing row.
	preserved := sourcePath
	if sp, ok := row["source_path"].(string); ok && sp != "" {
		preserved = sp
	}
	repaired = sanitize.Coerce(repaired)
	repaired = record.Canonicalize(repaired)
	repaired = sanitize.Sanitize(repaired, preserved)
	if id, ok := row["case_id"]; ok {
		repaired["case_id"] = id
	}

	if remaining := r.validator.Validate(repaired); len(remaining) > 0 {
		r.logger.Warn("pipeline.repair.failed",
			slog.String("req_id", reqID),
			slog.Int("remaining", len(remaining)))
		return nil, RepairFailed, ErrRepairFailed
	}

	r.logger.Info("pipeline.repair.ok", slog.String("req_id", reqID))
	return repaired, Repaired, nil
}
