package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

var (
	charleyNameRe   = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\s*\n`)
	charleySinceRe  = regexp.MustCompile(`(?i)Missing\s+Since(?:\s*[:\-])?\s*(?:\n|\r\n|\s)*([A-Za-z0-9 ,/\-]{6,40})`)
	charleyFromRe   = regexp.MustCompile(`(?i)Missing\s+From\s*[:\-]?\s*(?:\n|\r\n|\s)*([A-Za-z .'\-]+),\s*([A-Za-z .'\-]+)`)
	charleySexRe    = regexp.MustCompile(`(?i)Sex\s*[:\-]?\s*(?:\n|\r\n|\s)*\b(Female|Male)\b`)
	charleyHWRe     = regexp.MustCompile(`(?i)Height\s+and\s+Weight\s*\n\s*([^\r\n]+)`)
	charleyPoundsRe = regexp.MustCompile(`(?i)(\d{2,3})\s*pounds`)
	charleyDetRe    = regexp.MustCompile(`(?is)Details\s+of\s+Disappearance\s*\n([\s\S]*?)(?:\n\s*Investigating\s+Agency|\z)`)
)

// ParseCharley targets Charley Project narrative pages: "Missing Since" and
// "Missing From" labels whose values may wrap to the next line, a combined
// "Height and Weight" line, and a long "Details of Disappearance" narrative.
// Also the fall-through parser for undetected documents, since its patterns
// are the loosest of the set.
func ParseCharley(text, caseID string) *record.CaseRecord {
	rec := record.New(caseID, constants.SourceCharley)
	rec.Provenance.Sources = []string{constants.CharleyProvenanceTag}

	if m := charleyNameRe.FindStringSubmatch(text); m != nil {
		rec.Demographic.Name = strings.TrimSpace(m[1])
	}

	if m := charleySinceRe.FindStringSubmatch(text); m != nil {
		rec.Temporal.LastSeenTS = record.ExtractDateISO(m[1])
	}

	if m := charleyFromRe.FindStringSubmatch(text); m != nil {
		city := strings.TrimSpace(m[1])
		state := strings.TrimSpace(m[2])
		rec.Spatial.LastSeenCity = city
		rec.Spatial.LastSeenState = state
		rec.Spatial.LastSeenLocation = city + ", " + state
	}

	if m := charleySexRe.FindStringSubmatch(text); m != nil {
		rec.Demographic.Gender = record.NormalizeGender(m[1])
	}

	if m := charleyHWRe.FindStringSubmatch(text); m != nil {
		hw := m[1]
		if h, ok := record.ToInches(hw); ok {
			rec.Demographic.HeightIn = record.Float(h)
		}
		if w, ok := record.ToPounds(hw); ok {
			rec.Demographic.WeightLbs = record.Float(w)
		} else if pm := charleyPoundsRe.FindStringSubmatch(hw); pm != nil {
			if w, err := strconv.ParseFloat(pm[1], 64); err == nil {
				rec.Demographic.WeightLbs = record.Float(w)
			}
		}
	}

	if m := charleyDetRe.FindStringSubmatch(text); m != nil {
		rec.Narrative.IncidentSummary = collapse(m[1])
	}

	if rec.Temporal.LastSeenTS == "" {
		rec.Temporal.LastSeenTS = fallbackLastSeen(text)
	}

	return rec
}
