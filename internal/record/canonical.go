package record

import (
	"strconv"
	"strings"
)

// Canonicalize rewrites synonym keys in a dynamic record into the schema's
// canonical names. Values never overwrite an already-populated canonical
// field; the non-canonical key is removed either way, which makes the pass
// idempotent. It is applied to both producer paths before sanitizing and
// validating.
func Canonicalize(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	demo := submap(m, "demographic")
	temp := submap(m, "temporal")
	spat := submap(m, "spatial")

	// demographic: legacy bespoke aliases, then cross-path synonyms
	migrate(demo, "age", "age_years", asNumber)
	migrate(demo, "eyes", "eye_color", asText)
	migrate(demo, "eyes_color", "eye_color", asText)
	migrate(demo, "hair", "hair_color", asText)
	migrate(demo, "height", "height_in", asInches)
	migrate(demo, "weight", "weight_lbs", asPounds)
	migrate(demo, "sex", "gender", asGender)
	migrate(demo, "weight_lb", "weight_lbs", asNumber)
	migrate(demo, "height_inches", "height_in", asNumber)

	// temporal: *_date keys carry unparsed strings; canonical *_ts keys are ISO
	migrate(temp, "last_seen_date", "last_seen_ts", asISODate)
	migrate(temp, "reported_date", "reported_ts", asISODate)
	migrate(temp, "reported_missing_date", "reported_missing_ts", asISODate)
	migrate(temp, "first_police_action_date", "first_police_action_ts", asISODate)

	// spatial: bare keys and lat/lon spellings
	migrate(spat, "city", "last_seen_city", asText)
	migrate(spat, "state", "last_seen_state", asText)
	migrate(spat, "lat", "last_seen_lat", asNumber)
	migrate(spat, "latitude", "last_seen_lat", asNumber)
	migrate(spat, "lon", "last_seen_lon", asNumber)
	migrate(spat, "lng", "last_seen_lon", asNumber)
	migrate(spat, "longitude", "last_seen_lon", asNumber)

	// list fields deduplicate with a stable sorted order
	dedupeKey(demo, "aka")
	dedupeKey(demo, "aliases")
	dedupeKey(submap(m, "case"), "categories")

	return m
}

func submap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if sub, ok := m[key].(map[string]any); ok {
		return sub
	}
	return nil
}

// migrate moves cat[alias] to cat[canonical] through the transform, unless
// the canonical key already holds a value. The alias key is always deleted.
func migrate(cat map[string]any, alias, canonical string, transform func(any) (any, bool)) {
	if cat == nil {
		return
	}
	v, ok := cat[alias]
	if !ok {
		return
	}
	delete(cat, alias)
	if !emptyValue(cat[canonical]) {
		return
	}
	out, ok := transform(v)
	if !ok || emptyValue(out) {
		return
	}
	cat[canonical] = out
}

func dedupeKey(cat map[string]any, key string) {
	if cat == nil {
		return
	}
	list, ok := cat[key].([]any)
	if !ok {
		return
	}
	var strs []string
	for _, v := range list {
		if s, ok := v.(string); ok {
			strs = append(strs, strings.TrimSpace(s))
		}
	}
	deduped := DedupeSorted(strs)
	out := make([]any, len(deduped))
	for i, s := range deduped {
		out[i] = s
	}
	cat[key] = out
}

func emptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func asText(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64, int, bool:
		return v, true
	}
	return nil, false
}

func asNumber(v any) (any, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	return nil, false
}

func asInches(v any) (any, bool) {
	if s, ok := v.(string); ok {
		if in, ok := ToInches(s); ok {
			return in, true
		}
		return nil, false
	}
	return asNumber(v)
}

func asPounds(v any) (any, bool) {
	if s, ok := v.(string); ok {
		if lb, ok := ToPounds(s); ok {
			return lb, true
		}
		return nil, false
	}
	return asNumber(v)
}

func asGender(v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	g := NormalizeGender(s)
	return g, g != ""
}

func asISODate(v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	iso := ParseDateToISOUTC(s)
	return iso, iso != ""
}
