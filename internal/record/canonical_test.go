package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCanonicalize(t *testing.T) {
	in := map[string]any{
		"demographic": map[string]any{
			"age":    "17",
			"eyes":   "brown",
			"hair":   "black",
			"height": `5'8" - 5'10"`,
			"weight": "130 - 150 lbs",
			"sex":    "F",
		},
		"temporal": map[string]any{
			"last_seen_date": "September 8, 2025",
		},
		"spatial": map[string]any{
			"city":      "Richmond",
			"state":     "Virginia",
			"latitude":  37.54,
			"longitude": -77.43,
		},
	}
	got := Canonicalize(in)

	want := map[string]any{
		"demographic": map[string]any{
			"age_years": 17.0,
			"eye_color": "brown",
			"hair_color": "black",
			"height_in":  69.0,
			"weight_lbs": 140.0,
			"gender":     "female",
		},
		"temporal": map[string]any{
			"last_seen_ts": "2025-09-08T00:00:00Z",
		},
		"spatial": map[string]any{
			"last_seen_city":  "Richmond",
			"last_seen_state": "Virginia",
			"last_seen_lat":   37.54,
			"last_seen_lon":   -77.43,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Canonicalize mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonicalizeKeepsExistingCanonical(t *testing.T) {
	in := map[string]any{
		"demographic": map[string]any{
			"age":       "40",
			"age_years": 17.0,
		},
	}
	got := Canonicalize(in)
	demo := got["demographic"].(map[string]any)
	if demo["age_years"] != 17.0 {
		t.Errorf("age_years = %v, want existing 17 preserved", demo["age_years"])
	}
	if _, ok := demo["age"]; ok {
		t.Error("alias key age should be removed")
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	in := map[string]any{
		"demographic": map[string]any{"sex": "Male", "height": `5' 8"`},
		"spatial":     map[string]any{"lat": 37.0, "lon": -78.0},
	}
	once := Canonicalize(in)
	again := Canonicalize(once)
	if diff := cmp.Diff(once, again); diff != "" {
		t.Errorf("second pass changed the record:\n%s", diff)
	}
}

func TestCanonicalizeDedupesAliases(t *testing.T) {
	in := map[string]any{
		"demographic": map[string]any{
			"aliases": []any{"Bee", "Abby", "Bee", " Abby "},
		},
	}
	got := Canonicalize(in)
	want := []any{"Abby", "Bee"}
	if diff := cmp.Diff(want, got["demographic"].(map[string]any)["aliases"]); diff != "" {
		t.Errorf("aliases mismatch:\n%s", diff)
	}
}
