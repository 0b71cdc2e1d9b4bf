package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxDocChars caps the document text sent per extraction request.
const MaxDocChars = 50000

// ExtractPrompt is the system prompt for structured case extraction.
const ExtractPrompt = `You extract structured missing-person case data from document text.

Return a single JSON object with these top-level keys: demographic, temporal, spatial, narrative_osint, outcome, provenance, audit.

demographic: name, aliases (array), age_years (number), gender ("male" or "female"), race_ethnicity, height_in (inches, number), weight_lbs (number), distinctive_features (string), risk_factors (array of strings).
temporal: timezone, last_seen_ts (ISO 8601), reported_missing_ts, first_police_action_ts, follow_up_sightings (array of objects with "ts" required, plus optional lat, lon, event_type, reporter_type, confidence, note).
spatial: last_seen_location, last_seen_address, last_seen_city, last_seen_county, last_seen_state, last_seen_postal_code, last_seen_lat, last_seen_lon.
narrative_osint: incident_summary (string), behavioral_patterns (array), movement_cues_text, temporal_markers (array).
outcome: case_status ("ongoing", "found", or "not_found").
provenance: sources (array), case_number, agency, agency_phone.
audit: confidences (object of field name to 0..1), evidence (object of field name to quote from the text).

Rules:
- Use only information present in the document text. Omit keys you cannot support with text.
- Timestamps are ISO 8601 strings like "2025-09-08T00:00:00Z".
- Use "ts" NOT "date_iso", use "note" NOT "notes" in follow_up_sightings.
- Output a single JSON object, no prose, no markdown fences.`

// SummarizePrompt is the system prompt for one-paragraph case summaries.
const SummarizePrompt = `You summarize missing-person case records. Given a JSON case record, return a JSON object {"summary": "..."} with one factual paragraph covering who is missing, when and where they were last seen, and any investigative leads. Use only facts from the record. No speculation, no prose outside the JSON.`

// UserDocMessage wraps document text in the sentinel markers the extraction
// prompt expects, truncated to MaxDocChars.
func UserDocMessage(docText string) Message {
	if len(docText) > MaxDocChars {
		docText = docText[:MaxDocChars]
	}
	return Message{
		Role:    RoleUser,
		Content: "DOC_TEXT START\n" + docText + "\nDOC_TEXT END",
	}
}

// BuildRepairPrompt formats the validator-feedback repair request: the
// failing record, the first ten violations, and the fixed rule block.
func BuildRepairPrompt(row map[string]any, violations []string) (string, error) {
	if len(violations) > 10 {
		violations = violations[:10]
	}
	var errLines []string
	for _, v := range violations {
		errLines = append(errLines, "- "+v)
	}
	rowJSON, err := json.MarshalIndent(row, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding row for repair prompt: %w", err)
	}

	return fmt.Sprintf(`You produced the JSON below. The validator errors follow. Return a corrected JSON that fixes ONLY the errors, without adding new keys.

Errors:
%s

Current JSON:
%s

Rules:
- Change 4-digit ages into computed ages or remove age_years.
- For follow_up_sightings, keep only { "ts", "lat", "lon", "event_type", "reporter_type", "confidence", "note" } per item.
- Use "ts" NOT "date_iso", use "note" NOT "notes".
- Fix type mismatches (numbers vs strings, nulls where not allowed).
- Do NOT include source_path in output (it will be added automatically).
- Output a single JSON object, no prose.`, strings.Join(errLines, "\n"), rowJSON), nil
}
