// Package sanitize repairs and normalizes model-produced records before
// schema validation. Coerce fixes structural damage in raw model JSON;
// Sanitize enforces the schema's allowed key sets, ranges, and enums, and
// moves anything outside them into provenance.original_fields.
package sanitize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

var allowedTop = map[string]struct{}{
	"source_path": {}, "case_id": {}, "demographic": {}, "temporal": {},
	"spatial": {}, "narrative_osint": {}, "outcome": {}, "provenance": {}, "audit": {},
}

var coerceAllowedTop = map[string]struct{}{
	"case_id": {}, "demographic": {}, "spatial": {}, "temporal": {},
	"narrative_osint": {}, "provenance": {}, "outcome": {}, "case": {}, "source_path": {},
}

var allowedDemographic = map[string]struct{}{
	"name": {}, "aliases": {}, "age_years": {}, "gender": {}, "race_ethnicity": {},
	"height_in": {}, "weight_lbs": {}, "distinctive_features": {}, "risk_factors": {},
	"abductor_associate_info": {}, "_fulltext": {},
}

var allowedTemporal = map[string]struct{}{
	"timezone": {}, "last_seen_ts": {}, "reported_missing_ts": {}, "first_police_action_ts": {},
	"elapsed_report_minutes": {}, "elapsed_first_response_minutes": {}, "follow_up_sightings": {},
}

var allowedSpatial = map[string]struct{}{
	"last_seen_location": {}, "last_seen_address": {}, "last_seen_city": {},
	"last_seen_county": {}, "last_seen_state": {}, "last_seen_postal_code": {},
	"last_seen_lat": {}, "last_seen_lon": {}, "nearby_roads": {},
	"nearby_transit_hubs": {}, "nearby_pois": {},
}

var allowedOSINT = map[string]struct{}{
	"incident_summary": {}, "behavioral_patterns": {}, "movement_cues_text": {},
	"temporal_markers": {}, "witness_accounts": {}, "news": {}, "social_media": {},
	"persons_of_interest": {},
}

var allowedOutcome = map[string]struct{}{
	"case_status": {}, "recovery_ts": {}, "recovery_location": {}, "recovery_state": {},
	"recovery_lat": {}, "recovery_lon": {}, "recovery_time_hours": {},
	"recovery_distance_mi": {}, "recovery_condition": {},
}

// originalFieldKeys lists the producer keys captured to original_fields per
// category before the whitelist strips them.
var originalFieldKeys = []struct {
	category string
	keys     []string
}{
	{"demographic", []string{"hair_color", "eye_color", "sex", "weight_lb"}},
	{"spatial", []string{"city", "state"}},
	{"temporal", []string{"reported_ts", "last_seen_date"}},
}

// now is stubbed in tests.
var now = time.Now

const fallbackSummary = "No summary available"

// Coerce repairs structural damage in raw model output: unknown top-level
// keys dropped, nulls for required strings folded to "", four-digit ages
// removed, list-valued distinctive_features joined, numeric strings parsed,
// follow-up sightings folded from their synonym spellings, and the required
// defaults installed. The gender default is the exception; it is applied by
// Sanitize after synonym keys have been reconciled. Mutates and returns rec.
func Coerce(rec map[string]any) map[string]any {
	if rec == nil {
		rec = map[string]any{}
	}
	for k := range rec {
		if _, ok := coerceAllowedTop[k]; !ok {
			delete(rec, k)
		}
	}

	demo := ensureMap(rec, "demographic")
	temp := ensureMap(rec, "temporal")
	spat := ensureMap(rec, "spatial")
	osint := ensureMap(rec, "narrative_osint")
	prov := ensureMap(rec, "provenance")
	outc := ensureMap(rec, "outcome")

	for _, p := range [][2]string{
		{"demographic", "name"},
		{"spatial", "last_seen_location"},
		{"narrative_osint", "incident_summary"},
	} {
		cat := rec[p[0]].(map[string]any)
		if v, present := cat[p[1]]; present && v == nil {
			cat[p[1]] = ""
		}
	}

	if age, ok := asFloat(demo["age_years"]); ok && age > 1900 {
		delete(demo, "age_years")
	}

	if list, ok := demo["distinctive_features"].([]any); ok {
		if joined := joinList(list); joined != "" {
			demo["distinctive_features"] = joined
		} else {
			delete(demo, "distinctive_features")
		}
	}

	for _, k := range []string{"height_in", "weight_lbs", "age_years"} {
		if s, ok := demo[k].(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				demo[k] = f
			} else {
				delete(demo, k)
			}
		}
	}

	if fus, ok := temp["follow_up_sightings"].([]any); ok {
		clean := coerceSightings(fus)
		if len(clean) > 0 {
			temp["follow_up_sightings"] = clean
		} else {
			delete(temp, "follow_up_sightings")
		}
	}

	for _, k := range []string{"last_seen_ts", "reported_missing_ts", "first_police_action_ts"} {
		if v, present := temp[k]; present {
			if v == nil || v == "" {
				delete(temp, k)
			}
		}
	}

	if _, ok := temp["timezone"]; !ok {
		temp["timezone"] = record.DefaultTimezone
	}
	if _, ok := temp["last_seen_ts"]; !ok {
		temp["last_seen_ts"] = now().UTC().Format("2006-01-02T15:04:05Z")
	}

	// Gender only normalizes here. The male default waits for Sanitize, so
	// a reply carrying sex instead of gender still reconciles through the
	// canonical key rewrite in between.
	switch g := strings.ToLower(trimString(demo["gender"])); g {
	case "male", "female":
		demo["gender"] = g
	default:
		delete(demo, "gender")
	}

	if v, ok := spat["last_seen_lat"]; !ok || v == nil {
		spat["last_seen_lat"] = 0.0
	}
	if v, ok := spat["last_seen_lon"]; !ok || v == nil {
		spat["last_seen_lon"] = 0.0
	}

	if cs, _ := outc["case_status"].(string); cs != "ongoing" && cs != "found" && cs != "not_found" {
		outc["case_status"] = "ongoing"
	}

	if _, ok := osint["incident_summary"]; !ok {
		osint["incident_summary"] = fallbackSummary
	}

	if _, ok := prov["sources"]; !ok {
		prov["sources"] = []any{}
	}
	if _, ok := prov["original_fields"]; !ok {
		prov["original_fields"] = map[string]any{}
	}

	return rec
}

// Sanitize normalizes a coerced record to the schema shape: synonym keys
// mapped, category whitelists applied, numeric ranges enforced, enums
// defaulted, and every stripped producer key preserved under
// provenance.original_fields. sourcePath is stamped onto the record.
func Sanitize(raw map[string]any, sourcePath string) map[string]any {
	rec := map[string]any{}
	for k, v := range raw {
		rec[k] = v
	}
	rec["source_path"] = sourcePath

	// Capture producer keys before mapping destroys them.
	captured := map[string]any{}
	for _, c := range originalFieldKeys {
		src, _ := raw[c.category].(map[string]any)
		for _, k := range c.keys {
			if v, ok := src[k]; ok {
				captured[c.category+"."+k] = v
			}
		}
	}

	mapExtraKeys(rec)

	for k, v := range rec {
		if _, ok := allowedTop[k]; !ok || v == nil {
			delete(rec, k)
		}
	}

	rec["demographic"] = sanitizeDemographic(submap(rec, "demographic"))
	rec["temporal"] = sanitizeTemporal(submap(rec, "temporal"))
	rec["spatial"] = sanitizeSpatial(submap(rec, "spatial"))
	rec["narrative_osint"] = sanitizeOSINT(submap(rec, "narrative_osint"))
	rec["outcome"] = sanitizeOutcome(submap(rec, "outcome"))

	prov := submap(rec, "provenance")
	if prov == nil {
		prov = map[string]any{}
	}
	orig, _ := prov["original_fields"].(map[string]any)
	if orig == nil {
		orig = map[string]any{}
	}
	for k, v := range captured {
		orig[k] = v
	}
	if len(orig) > 0 {
		prov["original_fields"] = orig
	}
	if _, ok := prov["sources"]; !ok {
		prov["sources"] = []any{}
	}
	rec["provenance"] = prov

	if audit := sanitizeAudit(submap(rec, "audit")); len(audit) > 0 {
		rec["audit"] = audit
	} else {
		delete(rec, "audit")
	}

	if id, ok := raw["case_id"]; ok {
		rec["case_id"] = id
	}

	for k, v := range rec {
		if _, ok := allowedTop[k]; !ok || emptyAny(v) {
			delete(rec, k)
		}
	}
	return rec
}

// mapExtraKeys folds cross-path synonym keys into the schema spellings:
// sex to gender, weight_lb to weight_lbs, reported_ts to
// reported_missing_ts, last_seen_date to last_seen_ts, and bare city/state
// to their last_seen_ forms.
func mapExtraKeys(rec map[string]any) {
	demo := submap(rec, "demographic")
	if demo != nil {
		if sex := popString(demo, "sex"); sex != "" {
			l := strings.ToLower(sex)
			if l == "male" || l == "female" {
				demo["gender"] = l
			}
		}
		if wl, ok := demo["weight_lb"]; ok {
			delete(demo, "weight_lb")
			if _, has := demo["weight_lbs"]; !has && wl != nil {
				demo["weight_lbs"] = wl
			}
		}
	}

	temp := submap(rec, "temporal")
	if temp != nil {
		if rts := popString(temp, "reported_ts"); rts != "" {
			if _, has := temp["reported_missing_ts"]; !has {
				temp["reported_missing_ts"] = rts
			}
		}
		if lsd := popString(temp, "last_seen_date"); lsd != "" {
			if _, has := temp["last_seen_ts"]; !has {
				temp["last_seen_ts"] = lsd
			}
		}
		if fus, ok := temp["follow_up_sightings"].([]any); ok {
			temp["follow_up_sightings"] = coerceSightings(fus)
		}
	}

	spat := submap(rec, "spatial")
	if spat != nil {
		if city := popString(spat, "city"); city != "" {
			if _, has := spat["last_seen_city"]; !has {
				spat["last_seen_city"] = city
			}
		}
		if state := popString(spat, "state"); state != "" {
			if _, has := spat["last_seen_state"]; !has {
				spat["last_seen_state"] = state
			}
		}
	}
}

func sanitizeDemographic(in map[string]any) map[string]any {
	out := map[string]any{}
	for _, k := range []string{"name", "race_ethnicity"} {
		if s := trimString(in[k]); s != "" {
			out[k] = s
		}
	}
	if aliases, ok := in["aliases"].([]any); ok {
		clean := []any{}
		for _, a := range aliases {
			if trimString(a) != "" {
				clean = append(clean, a)
			}
		}
		out["aliases"] = clean
	}
	if g := strings.ToLower(trimString(in["gender"])); g == "male" || g == "female" {
		out["gender"] = g
	}
	if age, ok := asFloat(in["age_years"]); ok && age >= 0 && age <= 120 {
		out["age_years"] = age
	}
	if h, ok := asFloat(in["height_in"]); ok && h >= 10 && h <= 96 {
		out["height_in"] = h
	}
	if w, ok := asFloat(in["weight_lbs"]); ok && w >= 5 && w <= 600 {
		out["weight_lbs"] = w
	}
	switch df := in["distinctive_features"].(type) {
	case []any:
		if joined := joinList(df); joined != "" {
			out["distinctive_features"] = joined
		}
	case string:
		if s := strings.TrimSpace(df); s != "" {
			out["distinctive_features"] = s
		}
	}
	if rf := cleanStringList(in["risk_factors"]); len(rf) > 0 {
		out["risk_factors"] = rf
	}
	if abductor, ok := in["abductor_associate_info"].(map[string]any); ok {
		out["abductor_associate_info"] = abductor
	}
	if ft := trimString(in["_fulltext"]); ft != "" {
		out["_fulltext"] = ft
	}
	if _, ok := out["gender"]; !ok {
		out["gender"] = "male"
	}
	keepKeys(out, allowedDemographic)
	return out
}

func sanitizeTemporal(in map[string]any) map[string]any {
	out := map[string]any{}
	tz := trimString(in["timezone"])
	if tz == "" {
		tz = record.DefaultTimezone
	}
	out["timezone"] = tz
	for _, k := range []string{"last_seen_ts", "reported_missing_ts", "first_police_action_ts"} {
		if s := trimString(in[k]); s != "" {
			out[k] = s
		}
	}
	for _, k := range []string{"elapsed_report_minutes", "elapsed_first_response_minutes"} {
		if f, ok := asFloat(in[k]); ok {
			iv := int(f)
			if iv >= 0 {
				out[k] = iv
			}
		}
	}
	if fus, ok := in["follow_up_sightings"].([]any); ok {
		if clean := sanitizeSightings(fus); len(clean) > 0 {
			out["follow_up_sightings"] = clean
		}
	}
	if _, ok := out["last_seen_ts"]; !ok {
		out["last_seen_ts"] = now().UTC().Format("2006-01-02T15:04:05Z")
	}
	keepKeys(out, allowedTemporal)
	return out
}

func sanitizeSpatial(in map[string]any) map[string]any {
	out := map[string]any{}
	for _, k := range []string{"last_seen_location", "last_seen_address", "last_seen_city", "last_seen_county", "last_seen_state", "last_seen_postal_code"} {
		if s := trimString(in[k]); s != "" {
			out[k] = s
		}
	}
	lat, latOK := asFloat(in["last_seen_lat"])
	lon, lonOK := asFloat(in["last_seen_lon"])
	if latOK && lonOK && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
		out["last_seen_lat"], out["last_seen_lon"] = lat, lon
	} else {
		out["last_seen_lat"], out["last_seen_lon"] = 0.0, 0.0
	}
	for _, k := range []string{"nearby_roads", "nearby_transit_hubs", "nearby_pois"} {
		if arr := cleanStringList(in[k]); len(arr) > 0 {
			out[k] = arr
		}
	}
	keepKeys(out, allowedSpatial)
	return out
}

func sanitizeOSINT(in map[string]any) map[string]any {
	out := map[string]any{}
	if s := trimString(in["incident_summary"]); s != "" {
		out["incident_summary"] = s
	}
	if bp := cleanStringList(in["behavioral_patterns"]); len(bp) > 0 {
		out["behavioral_patterns"] = bp
	}
	if s := trimString(in["movement_cues_text"]); s != "" {
		out["movement_cues_text"] = s
	}
	if tm := cleanStringList(in["temporal_markers"]); len(tm) > 0 {
		out["temporal_markers"] = tm
	}
	// structured passthrough lists
	for _, k := range []string{"witness_accounts", "news", "social_media", "persons_of_interest"} {
		if list, ok := in[k].([]any); ok {
			out[k] = list
		}
	}
	if _, ok := out["incident_summary"]; !ok {
		out["incident_summary"] = fallbackSummary
	}
	keepKeys(out, allowedOSINT)
	return out
}

func sanitizeOutcome(in map[string]any) map[string]any {
	cs := strings.ToLower(trimString(in["case_status"]))
	if cs != "ongoing" && cs != "found" && cs != "not_found" {
		cs = "ongoing"
	}
	out := map[string]any{"case_status": cs}
	for _, k := range []string{"recovery_ts", "recovery_location", "recovery_state", "recovery_condition"} {
		if s := trimString(in[k]); s != "" {
			out[k] = s
		}
	}
	rlat, latOK := asFloat(in["recovery_lat"])
	rlon, lonOK := asFloat(in["recovery_lon"])
	if latOK && lonOK && rlat >= -90 && rlat <= 90 && rlon >= -180 && rlon <= 180 {
		out["recovery_lat"], out["recovery_lon"] = rlat, rlon
	}
	if t, ok := asFloat(in["recovery_time_hours"]); ok && t >= 0 {
		out["recovery_time_hours"] = t
	}
	if d, ok := asFloat(in["recovery_distance_mi"]); ok && d >= 0 {
		out["recovery_distance_mi"] = d
	}
	keepKeys(out, allowedOutcome)
	return out
}

func sanitizeAudit(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := map[string]any{}
	if conf, ok := in["confidences"].(map[string]any); ok {
		clamped := map[string]any{}
		for k, v := range conf {
			f, _ := asFloat(v)
			if f < 0 {
				f = 0
			}
			if f > 1 {
				f = 1
			}
			clamped[k] = f
		}
		if len(clamped) > 0 {
			out["confidences"] = clamped
		}
	}
	if ev, ok := in["evidence"].(map[string]any); ok {
		clean := map[string]any{}
		for k, v := range ev {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				clean[k] = s
			}
		}
		if len(clean) > 0 {
			out["evidence"] = clean
		}
	}
	return out
}

// coerceSightings folds sighting items from their synonym spellings into
// the schema item shape. Items without a resolvable ts are dropped.
func coerceSightings(in []any) []any {
	var clean []any
	for _, raw := range in {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ts := firstString(item, "ts", "date_iso", "time_iso", "date", "datetime", "time")
		note := firstString(item, "note", "notes", "text", "desc", "description")
		lat, latOK := asFloat(firstAny(item, "lat", "latitude"))
		lon, lonOK := asFloat(firstAny(item, "lon", "longitude"))

		out := map[string]any{}
		if ts != "" {
			out["ts"] = ts
		}
		if note != "" {
			out["note"] = note
		}
		if latOK && lat >= -90 && lat <= 90 {
			out["lat"] = lat
		}
		if lonOK && lon >= -180 && lon <= 180 {
			out["lon"] = lon
		}
		if s := trimString(item["event_type"]); s != "" {
			out["event_type"] = s
		}
		if s := trimString(item["reporter_type"]); s != "" {
			out["reporter_type"] = s
		}
		if c, ok := asFloat(item["confidence"]); ok {
			if c < 0 {
				c = 0
			}
			if c > 1 {
				c = 1
			}
			out["confidence"] = c
		}
		if out["ts"] != nil {
			clean = append(clean, out)
		}
	}
	return clean
}

// sanitizeSightings re-checks already-folded items; spellings are assumed
// canonical by this point.
func sanitizeSightings(in []any) []any {
	var clean []any
	for _, raw := range in {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out := map[string]any{}
		if ts := trimString(item["ts"]); ts != "" {
			out["ts"] = ts
		}
		if note := trimString(item["note"]); note != "" {
			out["note"] = note
		}
		if lat, ok := asFloat(item["lat"]); ok && lat >= -90 && lat <= 90 {
			out["lat"] = lat
		}
		if lon, ok := asFloat(item["lon"]); ok && lon >= -180 && lon <= 180 {
			out["lon"] = lon
		}
		if s := trimString(item["event_type"]); s != "" {
			out["event_type"] = s
		}
		if s := trimString(item["reporter_type"]); s != "" {
			out["reporter_type"] = s
		}
		if c, ok := asFloat(item["confidence"]); ok {
			if c < 0 {
				c = 0
			}
			if c > 1 {
				c = 1
			}
			out["confidence"] = c
		}
		if out["ts"] != nil {
			clean = append(clean, out)
		}
	}
	return clean
}

func ensureMap(rec map[string]any, key string) map[string]any {
	if m, ok := rec[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	rec[key] = m
	return m
}

func submap(rec map[string]any, key string) map[string]any {
	m, _ := rec[key].(map[string]any)
	return m
}

func keepKeys(m map[string]any, allowed map[string]struct{}) {
	for k := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
		}
	}
}

func popString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	delete(m, key)
	return trimString(v)
}

func trimString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return fmt.Sprintf("%v", t)
	}
	return ""
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func joinList(items []any) string {
	var parts []string
	for _, it := range items {
		if s := trimString(it); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}

func cleanStringList(v any) []any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []any
	for _, it := range list {
		if s := trimString(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := trimString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstAny(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func emptyAny(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
