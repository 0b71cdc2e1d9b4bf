package pipeline

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/internal/output"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

// BackfillRecords is the second pass of a batch run. It revisits every
// record whose critical fields are still blank and retries them against
// the retained raw text. last_seen_ts stays "" when even the hardened
// matchers find nothing; the gap must remain visible, not papered over.
func BackfillRecords(logger *slog.Logger, recs []*record.CaseRecord) (recovered int) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, rec := range recs {
		if rec.Temporal.LastSeenTS == "" && rec.FullText != "" {
			if ts := record.ParseLastSeenTS(rec.FullText); ts != "" {
				rec.Temporal.LastSeenTS = ts
				recovered++
				logger.Debug("backfill.last_seen_ts",
					slog.String("case_id", rec.CaseID),
					slog.String("last_seen_ts", ts))
			}
		}
		if rec.Demographic.Gender == "" && rec.FullText != "" {
			if g := record.ParseGender(rec.FullText); g != "" {
				rec.Demographic.Gender = g
			}
		}
	}
	return recovered
}

var (
	fixDateWordyRe = regexp.MustCompile(`(?i)\b(Missing Since|Last seen)\b[^0-9A-Za-z]{0,5}([A-Za-z]{3,9}\s+\d{1,2},\s*\d{4})`)
	fixDateSlashRe = regexp.MustCompile(`(?i)\b(Missing Since|Last seen)\b[^0-9]{0,5}(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
)

// fixDateSections are the record sections whose text can still carry a
// recoverable last-seen date after extraction gave up.
var fixDateSections = []string{"narrative_osint", "provenance", "outcome"}

// FixDatesFile rereads a finished JSONL file and repairs records whose
// last_seen_ts is empty by rescanning their narrative and provenance text.
// The repaired set is written next to the input as <name>.fixed.jsonl.
// Returns the output path and how many records were repaired.
func FixDatesFile(logger *slog.Logger, path string) (string, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	recs, err := output.ReadJSONL(path)
	if err != nil {
		return "", 0, err
	}

	fixed := 0
	for _, rec := range recs {
		delete(rec, "_fulltext")
		if demo, ok := rec["demographic"].(map[string]any); ok {
			delete(demo, "_fulltext")
		}
		if lastSeenTS(rec) != "" {
			continue
		}
		blob := sectionText(rec)
		ts := ""
		if m := fixDateWordyRe.FindStringSubmatch(blob); m != nil {
			ts = record.ParseDateToISOUTC(m[2])
		}
		if ts == "" {
			if m := fixDateSlashRe.FindStringSubmatch(blob); m != nil {
				ts = record.ParseDateToISOUTC(m[2])
			}
		}
		if ts == "" {
			continue
		}
		temp, ok := rec["temporal"].(map[string]any)
		if !ok {
			temp = map[string]any{}
			rec["temporal"] = temp
		}
		temp["last_seen_ts"] = ts
		fixed++
		logger.Debug("fixdates.repaired",
			slog.Any("case_id", rec["case_id"]),
			slog.String("last_seen_ts", ts))
	}

	outPath := fixedPath(path)
	w, err := output.NewJSONLWriter(outPath)
	if err != nil {
		return "", 0, err
	}
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			w.Close()
			return "", 0, err
		}
	}
	if err := w.Close(); err != nil {
		return "", 0, fmt.Errorf("closing %s: %w", outPath, err)
	}
	logger.Info("fixdates.done",
		slog.String("output", outPath),
		slog.Int("records", len(recs)),
		slog.Int("fixed", fixed))
	return outPath, fixed, nil
}

func lastSeenTS(rec map[string]any) string {
	temp, _ := rec["temporal"].(map[string]any)
	ts, _ := temp["last_seen_ts"].(string)
	return strings.TrimSpace(ts)
}

// sectionText joins every string and numeric leaf of the scannable
// sections into one searchable blob.
func sectionText(rec map[string]any) string {
	var parts []string
	for _, section := range fixDateSections {
		m, ok := rec[section].(map[string]any)
		if !ok {
			continue
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch t := m[k].(type) {
			case string:
				if t != "" {
					parts = append(parts, t)
				}
			case float64:
				parts = append(parts, strconv.FormatFloat(t, 'f', -1, 64))
			}
		}
	}
	return strings.Join(parts, " | ")
}

func fixedPath(path string) string {
	if strings.HasSuffix(path, ".jsonl") {
		return strings.TrimSuffix(path, ".jsonl") + ".fixed.jsonl"
	}
	return path + ".fixed.jsonl"
}
