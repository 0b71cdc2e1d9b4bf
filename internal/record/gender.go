package record

import (
	"regexp"
	"strings"
)

var (
	sexHeaderRe   = regexp.MustCompile(`(?im)^\s*Sex\s*[:\n]\s*(Male|Female)\b`)
	genderTokenRe = regexp.MustCompile(`(?i)\b(Male|Female)\b`)
	femaleRe      = regexp.MustCompile(`(?i)\bFemale\b`)
	maleRe        = regexp.MustCompile(`(?i)\bMale\b`)
)

// NormalizeGender maps free-form sex/gender values onto the schema enum.
// Returns "" for anything unrecognized.
func NormalizeGender(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "m"):
		return "male"
	case strings.HasPrefix(s, "f"):
		return "female"
	}
	return ""
}

// ParseGender extracts gender from raw document text. A "Sex" header wins;
// otherwise the first standalone Male/Female token, checking Female first
// as the broader fallback.
func ParseGender(text string) string {
	t := strings.ReplaceAll(text, "\r", "")

	if m := sexHeaderRe.FindStringSubmatch(t); m != nil {
		return NormalizeGender(m[1])
	}
	if m := genderTokenRe.FindStringSubmatch(t); m != nil {
		return NormalizeGender(m[1])
	}
	if femaleRe.MatchString(t) {
		return "female"
	}
	if maleRe.MatchString(t) {
		return "male"
	}
	return ""
}
