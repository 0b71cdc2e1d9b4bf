package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

var (
	vspNameRe    = regexp.MustCompile(`(?i)Name\s*[:\-]?\s*([A-Za-z .'\-]+)`)
	vspAgeRe     = regexp.MustCompile(`(?i)Age\s+at\s+time\s+of\s+disappearance\s*[:\-]?\s*(\d{1,3})`)
	vspSexRe     = regexp.MustCompile(`(?i)Sex\s*[:\-]?\s*(Male|Female)\b`)
	vspFromRe    = regexp.MustCompile(`(?i)Missing\s+From\s*[:\-]?\s*([A-Za-z .'\-]+?),\s*([A-Za-z .'\-]+?)(?:\n|$)`)
	vspSinceRe   = regexp.MustCompile(`(?i)Missing\s+Since\s*[:\-]?\s*([A-Za-z0-9 ,/\-]{6,40})`)
	vspContactRe = regexp.MustCompile(`(?i)Contact\s*[:\-]?\s*([A-Za-z0-9 .,&'\-]+?)(?:\n|$)`)
	vspVAARe     = regexp.MustCompile(`\b(VAA\d{2}-\d+)\b`)

	// A lone capitalized line above "Missing From" carries the name in the
	// bulletin layout, where there is no "Name:" label.
	vspLineNameRe = regexp.MustCompile(`(?m)^\s*([A-Z][A-Za-z.'\-]+(?:\s+[A-Z][A-Za-z.'\-]+){1,3})\s*\n\s*Missing\s+From`)
)

// ParseVSP targets Virginia State Police bulletin blocks, one per subject:
// labeled Name/Age/Sex lines, "Missing From: City, Virginia", "Missing
// Since", a Contact agency, and a VAA case number. Multi-subject bulletins
// are split with SplitVSPCases before this runs.
func ParseVSP(text, caseID string) *record.CaseRecord {
	rec := record.New(caseID, constants.SourceVSP)

	if m := vspNameRe.FindStringSubmatch(text); m != nil {
		rec.Demographic.Name = collapse(m[1])
	} else if m := vspLineNameRe.FindStringSubmatch(text); m != nil {
		rec.Demographic.Name = collapse(m[1])
	}

	if m := vspAgeRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.Demographic.AgeYears = record.Float(v)
		}
	}

	if m := vspSexRe.FindStringSubmatch(text); m != nil {
		rec.Demographic.Gender = record.NormalizeGender(m[1])
	}

	if m := vspFromRe.FindStringSubmatch(text); m != nil {
		city := strings.TrimSpace(m[1])
		state := strings.TrimSpace(m[2])
		rec.Spatial.LastSeenCity = city
		rec.Spatial.LastSeenState = state
		rec.Spatial.LastSeenLocation = city + ", " + state
	}

	if m := vspSinceRe.FindStringSubmatch(text); m != nil {
		rec.Temporal.LastSeenTS = record.ExtractDateISO(m[1])
	}
	if rec.Temporal.LastSeenTS == "" {
		rec.Temporal.LastSeenTS = fallbackLastSeen(text)
	}

	if m := vspContactRe.FindStringSubmatch(text); m != nil {
		rec.Provenance.Agency = collapse(m[1])
	}

	if m := vspVAARe.FindStringSubmatch(text); m != nil {
		rec.Provenance.CaseNumber = m[1]
	}

	return rec
}

var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// SplitVSPCases splits a multi-subject bulletin into one text block per
// case. A block is any blank-line-separated paragraph that mentions
// "Missing From"; header and footer paragraphs fall away. A single-case
// document comes back as one block.
func SplitVSPCases(text string) []string {
	var blocks []string
	for _, para := range paragraphSplitRe.Split(text, -1) {
		if strings.Contains(para, "Missing From") {
			blocks = append(blocks, strings.TrimSpace(para))
		}
	}
	if len(blocks) == 0 && strings.TrimSpace(text) != "" {
		blocks = append(blocks, strings.TrimSpace(text))
	}
	return blocks
}
