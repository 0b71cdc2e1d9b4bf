package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

var (
	namusFullNameRe  = regexp.MustCompile(`(?s)Legal\s+First\s+Name\s*([^\r\n]+)\s+Middle\s+Name\s*([^\r\n]+)\s+Legal\s+Last\s+Name\s*([^\r\n]+)`)
	namusMidLastRe   = regexp.MustCompile(`(?s)Middle\s+Name\s*([A-Za-z\s]+?)\s+Legal\s+Last\s+Name\s*([A-Za-z\s\-]+?)(?:\s+Height|\s*$)`)
	namusFirstRe     = regexp.MustCompile(`(?s)Legal\s+First\s+Name\s*([A-Za-z\s]+?)(?:\s+Middle|\s*$)`)
	namusNarrNameRe  = regexp.MustCompile(`(?i)\b([A-Z][a-z]{2,})\s+(?:is\s+believed|arrived|was\s+last\s+seen|left|went|expressed|traveled)`)
	namusSexRe       = regexp.MustCompile(`(?i)(?:Biological\s+Sex|Sex)\s*[:\-]?\s*(Male|Female)\b`)
	namusAgeRe       = regexp.MustCompile(`(?i)Missing\s+Age[:\s]*([0-9]{1,2})`)
	namusHeightRe    = regexp.MustCompile(`(?i)Height[:\s]*([^\r\n]+)`)
	namusWeightRe    = regexp.MustCompile(`(?i)Weight[:\s]*([^\r\n]+)`)
	namusRaceRe      = regexp.MustCompile(`(?i)Race\s*/\s*Ethnicity[:\s]*([^\r\n]+)`)
	namusLastSeenRe  = regexp.MustCompile(`(?i)Date\s+(?:of\s+)?Last\s+Contact\s*[:\-]?\s*([A-Za-z0-9 ,/\-]{6,40})`)
	namusCreatedRe   = regexp.MustCompile(`(?i)NamUs\s+Case\s+Created[:\s]*([^\r\n]+)`)
	namusLocationRe  = regexp.MustCompile(`(?i)Last\s+Known\s+Location[\s\S]*?Location[:\s]*([^\r\n]+)`)
	namusCircumstRe  = regexp.MustCompile(`(?is)Circumstances\s+of\s+Disappearance\s*([\s\S]*?)\n\s*(?:Physical\s+Description|Clothing\s+and\s+Accessories|ADDITIONAL\s+CASE\s+INFO|Transportation|CASE\s+INFORMATION)\b`)
	namusTrimHeight  = regexp.MustCompile(`\s+Height.*$`)
	nonNameCandidate = map[string]struct{}{
		"the": {}, "and": {}, "but": {}, "for": {}, "are": {}, "was": {}, "were": {},
		"been": {}, "have": {}, "has": {}, "had": {}, "will": {}, "would": {},
		"could": {}, "should": {}, "may": {}, "might": {}, "can": {}, "must": {},
		"shall": {}, "juvenile": {}, "adult": {}, "person": {}, "individual": {},
		"victim": {}, "missing": {}, "reported": {}, "investigation": {},
		"agency": {}, "police": {}, "sheriff": {}, "detective": {}, "officer": {},
		"she": {}, "he": {}, "they": {}, "it": {},
	}
)

// ParseNamUs targets NamUs form-style case pages: labeled name fields,
// "Date of Last Contact", "Last Known Location", height/weight ranges,
// and an optional maps link with coordinates.
func ParseNamUs(text, caseID string) *record.CaseRecord {
	rec := record.New(caseID, constants.SourceNamUs)

	var first, middle, last string
	if m := namusFullNameRe.FindStringSubmatch(text); m != nil {
		first = strings.Trim(collapse(m[1]), "- ")
		middle = strings.Trim(collapse(m[2]), "- ")
		last = strings.TrimSpace(namusTrimHeight.ReplaceAllString(strings.Trim(collapse(m[3]), "- "), ""))
	} else if m := namusMidLastRe.FindStringSubmatch(text); m != nil {
		middle = strings.TrimSpace(m[1])
		last = strings.TrimSpace(namusTrimHeight.ReplaceAllString(strings.TrimSpace(m[2]), ""))
		if fm := namusFirstRe.FindStringSubmatch(text); fm != nil {
			first = strings.TrimSpace(fm[1])
		}
	}
	if first == "" {
		// best effort: subject's given name often opens a narrative sentence
		for _, m := range namusNarrNameRe.FindAllStringSubmatch(text, -1) {
			cand := strings.TrimSpace(m[1])
			if _, bad := nonNameCandidate[strings.ToLower(cand)]; !bad {
				first = cand
				break
			}
		}
	}
	if middle == "--" {
		middle = ""
	}
	var parts []string
	for _, p := range []string{first, middle, last} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		rec.Demographic.Name = strings.Join(parts, " ")
	}

	if m := namusSexRe.FindStringSubmatch(text); m != nil {
		rec.Demographic.Gender = record.NormalizeGender(m[1])
	}
	if m := namusAgeRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.Demographic.AgeYears = record.Float(v)
		}
	}
	if m := namusHeightRe.FindStringSubmatch(text); m != nil {
		if h, ok := record.ToInches(m[1]); ok {
			rec.Demographic.HeightIn = record.Float(h)
		}
	}
	if m := namusWeightRe.FindStringSubmatch(text); m != nil {
		if w, ok := record.ToPounds(m[1]); ok {
			rec.Demographic.WeightLbs = record.Float(w)
		}
	}
	if m := namusRaceRe.FindStringSubmatch(text); m != nil {
		rec.Demographic.RaceEthnicity = strings.Trim(collapse(m[1]), " ,")
	}

	if m := namusLastSeenRe.FindStringSubmatch(text); m != nil {
		rec.Temporal.LastSeenTS = record.ExtractDateISO(m[1])
	}
	if m := namusCreatedRe.FindStringSubmatch(text); m != nil {
		rec.Temporal.ReportedMissingTS = record.ExtractDateISO(m[1])
	}

	if m := namusLocationRe.FindStringSubmatch(text); m != nil {
		loc := collapse(m[1])
		rec.Spatial.LastSeenLocation = loc
		parts := strings.Split(loc, ",")
		if len(parts) >= 2 {
			rec.Spatial.LastSeenCity = strings.TrimSpace(parts[0])
			stateWords := strings.Fields(strings.TrimSpace(parts[len(parts)-1]))
			if len(stateWords) > 0 {
				rec.Spatial.LastSeenState = stateWords[0]
			}
		}
	}

	if lat, lon, ok := extractCoords(text); ok {
		rec.Spatial.LastSeenLat = lat
		rec.Spatial.LastSeenLon = lon
	}

	if m := namusCircumstRe.FindStringSubmatch(text); m != nil {
		desc := strings.Trim(collapse(m[1]), " : ")
		if desc != "" {
			rec.Narrative.IncidentSummary = desc
		}
	}

	return rec
}
