package record

import (
	"regexp"
	"strings"
	"time"
)

// Layouts tried in order when normalizing extracted date strings.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
	"1-2-2006",
	"1/2/06",
	"1-2-06",
	"2006-01-02",
}

const (
	monthPat = `(January|February|March|April|May|June|July|August|September|October|November|December)`
	mdyPat   = monthPat + `\s+\d{1,2},\s+\d{4}`
	slashPat = `\b\d{1,2}/\d{1,2}/\d{2,4}\b`
)

var (
	lastSeenNCMECRe   = regexp.MustCompile(`(?i)Missing Since:\s*(` + mdyPat + `)`)
	lastSeenCharleyRe = regexp.MustCompile(`(?i)Missing Since\s*:?\s*(?:\n|\s)*(` + slashPat + `|` + mdyPat + `)`)
	lastSeenNamUsRe   = regexp.MustCompile(`(?i)(?:Date\s+Last\s+Seen|Missing\s+Date)\s*:?\s*(` + slashPat + `|` + mdyPat + `)`)
	lastSeenGenericRe = regexp.MustCompile(`(?i)Last seen[^0-9A-Za-z]{0,5}(` + mdyPat + `|` + slashPat + `)`)

	missingCommaRe = regexp.MustCompile(`(\d{1,2})\s+(\d{4})$`)

	// Loose date token shapes used when scanning a window after a label.
	dateTokenRes = []*regexp.Regexp{
		regexp.MustCompile(`[A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4}`),
		regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
		regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`),
	}
)

// NormalizeDate parses a date string in any of the common document formats
// and returns it as YYYY-MM-DD. Returns "" when nothing parses.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// ParseDateToISOUTC converts a date string to a midnight-UTC timestamp
// ("2006-01-02T00:00:00Z"). Returns "" when nothing parses.
func ParseDateToISOUTC(s string) string {
	d := NormalizeDate(s)
	if d == "" {
		return ""
	}
	return d + "T00:00:00Z"
}

// ExtractDateISO finds the first recognizable date token inside free text
// (a captured label value may carry trailing junk) and returns it as a
// midnight-UTC timestamp. Returns "" when no token parses.
func ExtractDateISO(text string) string {
	for _, re := range dateTokenRes {
		for _, tok := range re.FindAllString(text, -1) {
			// "Sep 8 2025" without the comma needs one normalized retry.
			if iso := ParseDateToISOUTC(tok); iso != "" {
				return iso
			}
			if iso := ParseDateToISOUTC(missingCommaRe.ReplaceAllString(tok, "$1, $2")); iso != "" {
				return iso
			}
		}
	}
	return ""
}

// ParseLastSeenTS extracts the last-seen date from raw document text,
// trying the per-source label shapes in order of precision and returning
// YYYY-MM-DD. Returns "" when no pattern matches.
func ParseLastSeenTS(text string) string {
	t := strings.ReplaceAll(text, "\r", "")

	for _, re := range []*regexp.Regexp{lastSeenNCMECRe, lastSeenCharleyRe, lastSeenNamUsRe, lastSeenGenericRe} {
		if m := re.FindStringSubmatch(t); m != nil {
			if d := NormalizeDate(m[1]); d != "" {
				return d
			}
		}
	}
	return ""
}
