package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/detect"
	"github.com/jcastillo-osint/guardian-pipeline/internal/llm"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
	"github.com/jcastillo-osint/guardian-pipeline/internal/sanitize"
	"github.com/jcastillo-osint/guardian-pipeline/internal/schema"
	"github.com/jcastillo-osint/guardian-pipeline/internal/textclean"
)

// Agent runs the model-assisted flow. VSP bulletins are routed to the
// rule-based processor, which handles multi-case splitting far more
// reliably than free-form extraction; everything else goes through the
// model with coerce, canonicalize, sanitize, validate, and one repair.
type Agent struct {
	logger    *slog.Logger
	provider  llm.Provider
	validator *schema.Validator
	repairer  *Repairer
	legacy    *Processor
}

func NewAgent(logger *slog.Logger, provider llm.Provider, validator *schema.Validator, legacy *Processor) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		logger:    logger,
		provider:  provider,
		validator: validator,
		repairer:  NewRepairer(logger, provider, validator),
		legacy:    legacy,
	}
}

// ProcessDocument turns one document into finished, schema-valid records.
// Invalid records that survive their repair attempt are dropped with an
// error rather than written.
func (a *Agent) ProcessDocument(ctx context.Context, rawText, sourcePath string, seq *Sequence) ([]map[string]any, error) {
	text := textclean.Prenormalize(rawText)
	if len(strings.TrimSpace(text)) < 10 {
		return nil, ErrEmptyText
	}

	if detect.Source(text) == constants.SourceVSP {
		return a.processVSP(ctx, text, sourcePath, seq)
	}
	row, err := a.extractOne(ctx, rawText, sourcePath, seq.Next())
	if err != nil {
		return nil, err
	}
	return []map[string]any{row}, nil
}

// processVSP delegates to the rule-based flow and then pushes each record
// through the same sanitize/validate tail as the model path. Validation
// problems are logged as warnings; split bulletin blocks are sparse and
// still worth keeping.
func (a *Agent) processVSP(ctx context.Context, text, sourcePath string, seq *Sequence) ([]map[string]any, error) {
	a.logger.Info("agent.vsp_fallback", slog.String("source_path", sourcePath))
	recs, err := a.legacy.Process(ctx, text, sourcePath, seq)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	for _, rec := range recs {
		if len(rec.Provenance.Sources) == 0 || rec.Provenance.Sources[0] != constants.SourceVSP.String() {
			rec.Provenance.Sources = append([]string{constants.SourceVSP.String()}, rec.Provenance.Sources...)
		}
		m, err := rec.ToMap()
		if err != nil {
			return nil, fmt.Errorf("encoding record %s: %w", rec.CaseID, err)
		}
		m = record.Canonicalize(m)
		m = sanitize.Sanitize(m, sourcePath)
		if violations := a.validator.Validate(m); len(violations) > 0 {
			a.logger.Warn("agent.vsp_validation",
				slog.String("case_id", rec.CaseID),
				slog.String("first_error", violations[0].String()))
		}
		rows = append(rows, m)
	}
	return rows, nil
}

func (a *Agent) extractOne(ctx context.Context, rawText, sourcePath, caseID string) (map[string]any, error) {
	reqID := uuid.NewString()
	cleaned := textclean.Clean(rawText, nil)

	a.logger.Info("llm.extract.start",
		slog.String("req_id", reqID),
		slog.String("source_path", sourcePath),
		slog.String("case_id", caseID))

	extracted, err := a.provider.ChatJSON(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: llm.ExtractPrompt},
		llm.UserDocMessage(cleaned),
	})
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", sourcePath, err)
	}

	row := sanitize.Coerce(extracted)
	row = record.Canonicalize(row)
	row["case_id"] = caseID
	row = sanitize.Sanitize(row, sourcePath)

	violations := a.validator.Validate(row)
	if len(violations) == 0 {
		a.logger.Info("llm.extract.ok", slog.String("req_id", reqID), slog.String("case_id", caseID))
		return row, nil
	}

	a.logger.Warn("llm.extract.invalid",
		slog.String("req_id", reqID),
		slog.String("case_id", caseID),
		slog.Int("violations", len(violations)),
		slog.String("first_error", violations[0].String()))

	repaired, outcome, err := a.repairer.Repair(ctx, row, violations, sourcePath)
	if outcome != Repaired {
		return nil, fmt.Errorf("record %s from %s: %w", caseID, sourcePath, err)
	}
	repaired["case_id"] = caseID
	return repaired, nil
}
