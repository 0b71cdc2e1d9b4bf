package llm_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jcastillo-osint/guardian-pipeline/internal/llm"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "bare object",
			in:   `{"case_id": "GRD-2025-000001"}`,
			want: map[string]any{"case_id": "GRD-2025-000001"},
		},
		{
			name: "fenced with language tag",
			in:   "```json\n{\"gender\": \"female\"}\n```",
			want: map[string]any{"gender": "female"},
		},
		{
			name: "prose around the object",
			in:   `Here is the extraction: {"age_years": 16} I hope that helps.`,
			want: map[string]any{"age_years": 16.0},
		},
		{
			name: "nested braces stay balanced",
			in:   `{"demographic": {"name": "Jane"}} {"ignored": true}`,
			want: map[string]any{"demographic": map[string]any{"name": "Jane"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := llm.ExtractJSON(tt.in)
			if err != nil {
				t.Fatalf("ExtractJSON: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractJSONNoObject(t *testing.T) {
	for _, in := range []string{"", "no json here", "[1, 2, 3]"} {
		if _, err := llm.ExtractJSON(in); err == nil {
			t.Errorf("ExtractJSON(%q) should fail", in)
		}
	}
}

func TestUserDocMessage(t *testing.T) {
	msg := llm.UserDocMessage("some document text")
	if msg.Role != llm.RoleUser {
		t.Errorf("Role = %q", msg.Role)
	}
	if !strings.HasPrefix(msg.Content, "DOC_TEXT START\n") || !strings.HasSuffix(msg.Content, "\nDOC_TEXT END") {
		t.Errorf("sentinels missing: %q", msg.Content)
	}

	long := strings.Repeat("x", llm.MaxDocChars+1000)
	truncated := llm.UserDocMessage(long)
	if len(truncated.Content) > llm.MaxDocChars+len("DOC_TEXT START\n\nDOC_TEXT END") {
		t.Errorf("document not truncated, content length %d", len(truncated.Content))
	}
}

func TestBuildRepairPromptCapsViolations(t *testing.T) {
	var violations []string
	for i := 0; i < 15; i++ {
		violations = append(violations, "demographic.gender: bad value "+strings.Repeat("x", i+1))
	}
	prompt, err := llm.BuildRepairPrompt(map[string]any{"case_id": "GRD-2025-000001"}, violations)
	if err != nil {
		t.Fatalf("BuildRepairPrompt: %v", err)
	}
	if got := strings.Count(prompt, "- demographic.gender"); got != 10 {
		t.Errorf("prompt carries %d violations, want capped at 10", got)
	}
	if !strings.Contains(prompt, "GRD-2025-000001") {
		t.Error("prompt does not carry the failing record")
	}
}
