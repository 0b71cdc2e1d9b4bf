// Package extract holds one extraction routine per detected source plus
// the source-agnostic enrichment pass. Each routine is a sequence of
// independent field rules: fields are pulled greedily, a failing rule
// leaves its field absent and never raises.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

// Func is a per-source extraction routine. It always returns a
// fully-shaped record, with every category present even when empty.
type Func func(text, caseID string) *record.CaseRecord

// ForSource returns the extraction routine for a detected source.
// Unknown falls through to the narrative-style parser, tagged Unknown.
func ForSource(src constants.Source) Func {
	switch src {
	case constants.SourceNamUs:
		return ParseNamUs
	case constants.SourceNCMEC:
		return ParseNCMEC
	case constants.SourceFBI:
		return ParseFBI
	case constants.SourceCharley:
		return ParseCharley
	case constants.SourceVSP:
		return ParseVSP
	default:
		return func(text, caseID string) *record.CaseRecord {
			rec := ParseCharley(text, caseID)
			rec.Provenance.Sources = []string{constants.SourceUnknown.String()}
			return rec
		}
	}
}

var coordsRe = regexp.MustCompile(`(-?\d{1,2}\.\d+),\s*(-?\d{1,3}\.\d+)`)

// extractCoords pulls the first "lat,lon" pair embedded in text, such as a
// maps link. Values are range-clamped.
func extractCoords(text string) (float64, float64, bool) {
	m := coordsRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lon, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return record.ClampLat(lat), record.ClampLon(lon), true
}

var (
	dateNearLabelRe = regexp.MustCompile(`(?is)(Missing Since|Last Seen|Date of Last Contact|Disappearance).{0,120}?([A-Za-z]{3,9}\s+\d{1,2},\s*\d{4}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	dateBeforeRe    = regexp.MustCompile(`(?is)([A-Za-z]{3,9}\s+\d{1,2},\s*\d{4}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4}).{0,120}?(Missing Since|Last Seen|Date of Last Contact|Disappearance)`)
)

// fallbackLastSeen scans for a date within 120 chars of a key phrase, in
// either order. Used when the source-specific label did not match.
func fallbackLastSeen(text string) string {
	if m := dateNearLabelRe.FindStringSubmatch(text); m != nil {
		if iso := record.ExtractDateISO(m[2]); iso != "" {
			return iso
		}
	}
	if m := dateBeforeRe.FindStringSubmatch(text); m != nil {
		if iso := record.ExtractDateISO(m[1]); iso != "" {
			return iso
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// titleCase uppercases the first letter of each word, the way poster names
// in ALL CAPS are folded for output.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
