package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// baseColumns is the fixed leading column order. Columns present in the
// data but not listed here follow in sorted order.
var baseColumns = []string{
	"source", "case_id", "case_status",
	"full_name", "aka", "aliases", "dob", "age_years", "gender", "hair_color", "eye_color",
	"distinctive_features", "risk_factors",
	"height_in", "height_cm", "weight_lbs", "weight_kg",
	"last_seen_location", "last_seen_city", "last_seen_state", "last_seen_country",
	"last_seen_address", "last_seen_county", "last_seen_postal_code",
	"last_seen_lat", "last_seen_lon",
	"last_seen_ts", "reported_ts", "reported_missing_ts", "first_police_action_ts",
	"incident_summary", "notes", "behavioral_patterns", "movement_cues_text", "categories",
}

// FlattenForCSV reduces a nested record to a single CSV row keyed by the
// base column names, reading both canonical and legacy key locations.
func FlattenForCSV(rec map[string]any) map[string]string {
	city := firstNested(rec, "spatial.city", "spatial.last_seen_city")
	state := firstNested(rec, "spatial.state", "spatial.last_seen_state")
	country := firstNested(rec, "spatial.country", "spatial.last_seen_country")

	location := strings.Join(nonEmpty(city, state), ", ")
	if location == "" {
		location = country
	}

	row := map[string]string{
		"source":      firstNested(rec, "case.source", "provenance.sources.0"),
		"case_id":     firstNested(rec, "case.case_id", "case_id"),
		"case_status": firstNested(rec, "case.status", "outcome.case_status"),

		"full_name":            firstNested(rec, "name.full", "demographic.name"),
		"aka":                  nested(rec, "demographic.aka"),
		"aliases":              nested(rec, "demographic.aliases"),
		"dob":                  nested(rec, "demographic.dob"),
		"age_years":            nested(rec, "demographic.age_years"),
		"gender":               nested(rec, "demographic.gender"),
		"hair_color":           nested(rec, "demographic.hair_color"),
		"eye_color":            nested(rec, "demographic.eye_color"),
		"distinctive_features": nested(rec, "demographic.distinctive_features"),
		"risk_factors":         nested(rec, "demographic.risk_factors"),

		"height_in":  nested(rec, "demographic.height_in"),
		"height_cm":  nested(rec, "demographic.height_cm"),
		"weight_lbs": firstNested(rec, "demographic.weight_lbs", "demographic.weight_lb"),
		"weight_kg":  nested(rec, "demographic.weight_kg"),

		"last_seen_location":    location,
		"last_seen_city":        city,
		"last_seen_state":       state,
		"last_seen_country":     country,
		"last_seen_address":     nested(rec, "spatial.last_seen_address"),
		"last_seen_county":      nested(rec, "spatial.last_seen_county"),
		"last_seen_postal_code": nested(rec, "spatial.last_seen_postal_code"),
		"last_seen_lat":         nested(rec, "spatial.last_seen_lat"),
		"last_seen_lon":         nested(rec, "spatial.last_seen_lon"),

		"last_seen_ts":           nested(rec, "temporal.last_seen_ts"),
		"reported_ts":            firstNested(rec, "temporal.reported_ts", "temporal.reported_missing_ts"),
		"reported_missing_ts":    nested(rec, "temporal.reported_missing_ts"),
		"first_police_action_ts": nested(rec, "temporal.first_police_action_ts"),

		"incident_summary":    firstNested(rec, "narrative.incident_summary", "narrative_osint.incident_summary"),
		"notes":               nested(rec, "narrative.notes"),
		"behavioral_patterns": nested(rec, "narrative_osint.behavioral_patterns"),
		"movement_cues_text":  nested(rec, "narrative_osint.movement_cues_text"),
		"categories":          nested(rec, "case.categories"),
	}
	return row
}

// Flatten reduces all records to rows plus the full column list: the base
// columns first, then any extra columns found in the data in sorted order.
func Flatten(records []map[string]any) (columns []string, rows []map[string]string) {
	rows = make([]map[string]string, len(records))
	extraSet := map[string]struct{}{}
	base := map[string]struct{}{}
	for _, c := range baseColumns {
		base[c] = struct{}{}
	}
	for i, rec := range records {
		rows[i] = FlattenForCSV(rec)
		for k := range rows[i] {
			if _, ok := base[k]; !ok {
				extraSet[k] = struct{}{}
			}
		}
	}
	var extras []string
	for k := range extraSet {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	columns = append(append([]string{}, baseColumns...), extras...)
	return columns, rows
}

// WriteCSV writes all records with the base columns first and any extras
// after, in sorted order. When the target file is locked (a spreadsheet has
// it open) the output lands in a timestamp-suffixed sibling instead.
func WriteCSV(logger *slog.Logger, records []map[string]any, path string) error {
	if logger == nil {
		logger = slog.Default()
	}
	columns, flat := Flatten(records)

	err := writeCSVFile(path, columns, flat)
	if err != nil && errors.Is(err, os.ErrPermission) {
		alt := strings.TrimSuffix(path, ".csv") + "." + time.Now().Format("20060102_150405") + ".csv"
		logger.Warn("output.csv_locked", slog.String("path", path), slog.String("fallback", alt))
		return writeCSVFile(alt, columns, flat)
	}
	return err
}

func writeCSVFile(path string, columns []string, rows []map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv output %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// nested reads a dot-path value and renders it for CSV: lists join with
// "; ", numbers drop their trailing zeros, everything else stringifies.
func nested(rec map[string]any, path string) string {
	var cur any = rec
	for _, p := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			// numeric segment indexes into a list
			if list, isList := cur.([]any); isList {
				idx, err := strconv.Atoi(p)
				if err != nil || idx < 0 || idx >= len(list) {
					return ""
				}
				cur = list[idx]
				continue
			}
			return ""
		}
		cur = m[p]
	}
	return render(cur)
}

func firstNested(rec map[string]any, paths ...string) string {
	for _, p := range paths {
		if v := nested(rec, p); v != "" {
			return v
		}
	}
	return ""
}

func render(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		var parts []string
		for _, item := range t {
			if s := render(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return fmt.Sprintf("%v", v)
}

func nonEmpty(ss ...string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
