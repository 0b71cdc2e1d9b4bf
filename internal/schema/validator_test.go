package schema_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/jcastillo-osint/guardian-pipeline/internal/schema"
)

func validRecord() map[string]any {
	return map[string]any{
		"case_id": "GRD-2025-000001",
		"demographic": map[string]any{
			"name":   "Jane Doe",
			"gender": "female",
		},
		"temporal": map[string]any{
			"timezone":     "America/New_York",
			"last_seen_ts": "2025-09-08T00:00:00Z",
		},
		"spatial": map[string]any{
			"last_seen_lat": 37.5407,
			"last_seen_lon": -77.436,
		},
		"narrative_osint": map[string]any{
			"incident_summary": "Last seen leaving school.",
		},
		"outcome":    map[string]any{"case_status": "ongoing"},
		"provenance": map[string]any{"sources": []any{"NCMEC"}},
	}
}

func newValidator(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	v := newValidator(t)
	if got := v.Validate(validRecord()); got != nil {
		t.Errorf("unexpected violations: %v", schema.Strings(got))
	}
}

func TestValidateMissingRequiredSection(t *testing.T) {
	v := newValidator(t)
	rec := validRecord()
	delete(rec, "temporal")

	got := v.Validate(rec)
	if len(got) == 0 {
		t.Fatal("expected a violation for the missing temporal section")
	}
	found := false
	for _, viol := range got {
		if strings.Contains(viol.Message, "temporal") {
			found = true
		}
	}
	if !found {
		t.Errorf("no violation mentions temporal: %v", schema.Strings(got))
	}
}

func TestValidateViolationPathsAndOrder(t *testing.T) {
	v := newValidator(t)
	rec := validRecord()
	rec["demographic"].(map[string]any)["gender"] = "unknown"
	rec["demographic"].(map[string]any)["age_years"] = 200.0
	rec["spatial"].(map[string]any)["last_seen_lat"] = 137.5

	got := v.Validate(rec)
	if len(got) < 3 {
		t.Fatalf("got %d violations, want at least 3: %v", len(got), schema.Strings(got))
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool {
		if got[i].Path != got[j].Path {
			return got[i].Path < got[j].Path
		}
		return got[i].Message < got[j].Message
	}) {
		t.Errorf("violations not sorted: %v", schema.Strings(got))
	}

	paths := map[string]bool{}
	for _, viol := range got {
		paths[viol.Path] = true
	}
	for _, want := range []string{"demographic.gender", "demographic.age_years", "spatial.last_seen_lat"} {
		if !paths[want] {
			t.Errorf("missing violation at %s, got paths %v", want, paths)
		}
	}
}

func TestValidateIgnoresBookkeepingKeys(t *testing.T) {
	v := newValidator(t)
	rec := validRecord()
	rec["source_path"] = "/docs/case1.txt"
	rec["audit"] = map[string]any{"confidences": map[string]any{"demographic": 0.9}}

	if got := v.Validate(rec); got != nil {
		t.Errorf("bookkeeping keys should not be validated: %v", schema.Strings(got))
	}
	if rec["source_path"] != "/docs/case1.txt" {
		t.Error("input record was mutated")
	}
	if _, ok := rec["audit"]; !ok {
		t.Error("audit key removed from input record")
	}
}

func TestViolationString(t *testing.T) {
	viol := schema.Violation{Path: "demographic.gender", Message: "value must be one of male, female"}
	if got := viol.String(); got != "demographic.gender: value must be one of male, female" {
		t.Errorf("String() = %q", got)
	}
}
