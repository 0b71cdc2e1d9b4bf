package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jcastillo-osint/guardian-pipeline/internal/llm"
	"github.com/jcastillo-osint/guardian-pipeline/internal/pipeline"
	"github.com/jcastillo-osint/guardian-pipeline/internal/schema"
)

type fakeProvider struct {
	calls    int
	messages []llm.Message
	reply    map[string]any
	err      error
}

func (f *fakeProvider) ChatJSON(_ context.Context, messages []llm.Message) (map[string]any, error) {
	f.calls++
	f.messages = messages
	return f.reply, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestValidator(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func TestRepairSuccess(t *testing.T) {
	provider := &fakeProvider{
		reply: map[string]any{
			"demographic": map[string]any{"name": "Jane Doe", "gender": "female"},
			"provenance":  map[string]any{"sources": []any{"NCMEC"}},
		},
	}
	r := pipeline.NewRepairer(discardLogger(), provider, newTestValidator(t))

	row := map[string]any{
		"case_id":     "GRD-2025-000001",
		"source_path": "/docs/case1.txt",
	}
	violations := []schema.Violation{{Path: "demographic.gender", Message: "value must be one of male, female"}}

	repaired, outcome, err := r.Repair(context.Background(), row, violations, "/docs/case1.txt")
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if outcome != pipeline.Repaired {
		t.Fatalf("outcome = %v, want Repaired", outcome)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want exactly 1", provider.calls)
	}
	if repaired["case_id"] != "GRD-2025-000001" {
		t.Errorf("case_id = %v, want preserved from failing row", repaired["case_id"])
	}
	if repaired["source_path"] != "/docs/case1.txt" {
		t.Errorf("source_path = %v", repaired["source_path"])
	}
}

func TestRepairPromptCarriesViolations(t *testing.T) {
	provider := &fakeProvider{reply: map[string]any{
		"demographic": map[string]any{"gender": "female"},
		"provenance":  map[string]any{"sources": []any{"NCMEC"}},
	}}
	r := pipeline.NewRepairer(discardLogger(), provider, newTestValidator(t))

	row := map[string]any{"case_id": "GRD-2025-000002"}
	violations := []schema.Violation{{Path: "spatial.last_seen_lat", Message: "must be <= 90"}}
	if _, _, err := r.Repair(context.Background(), row, violations, "case.txt"); err != nil {
		t.Fatalf("Repair: %v", err)
	}

	if len(provider.messages) != 2 {
		t.Fatalf("got %d messages, want system + user", len(provider.messages))
	}
	if provider.messages[0].Role != llm.RoleSystem || provider.messages[0].Content != llm.ExtractPrompt {
		t.Error("first message should be the extraction system prompt")
	}
	user := provider.messages[1]
	if user.Role != llm.RoleUser {
		t.Errorf("second message role = %q", user.Role)
	}
	if !strings.Contains(user.Content, "spatial.last_seen_lat") {
		t.Errorf("repair prompt does not carry the violation: %q", user.Content)
	}
	if !strings.Contains(user.Content, "GRD-2025-000002") {
		t.Error("repair prompt does not carry the failing record")
	}
}

// A reply that still fails validation is terminal. There is no second attempt.
func TestRepairFailedStaysInvalid(t *testing.T) {
	provider := &fakeProvider{reply: map[string]any{
		"demographic": map[string]any{"gender": "female"},
	}}
	r := pipeline.NewRepairer(discardLogger(), provider, newTestValidator(t))

	// No case_id anywhere, so the reply cannot validate.
	row := map[string]any{"source_path": "case.txt"}
	repaired, outcome, err := r.Repair(context.Background(), row, nil, "case.txt")
	if outcome != pipeline.RepairFailed {
		t.Fatalf("outcome = %v, want RepairFailed", outcome)
	}
	if !errors.Is(err, pipeline.ErrRepairFailed) {
		t.Errorf("err = %v, want ErrRepairFailed", err)
	}
	if repaired != nil {
		t.Error("failed repair should not return a record")
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want exactly 1", provider.calls)
	}
}

func TestRepairProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("backend unavailable")}
	r := pipeline.NewRepairer(discardLogger(), provider, newTestValidator(t))

	_, outcome, err := r.Repair(context.Background(), map[string]any{"case_id": "GRD-2025-000003"}, nil, "case.txt")
	if outcome != pipeline.RepairError {
		t.Fatalf("outcome = %v, want RepairError", outcome)
	}
	if err == nil || !strings.Contains(err.Error(), "backend unavailable") {
		t.Errorf("err = %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want exactly 1", provider.calls)
	}
}
