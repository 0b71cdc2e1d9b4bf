package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

var (
	ncmecNameRes = []*regexp.Regexp{
		regexp.MustCompile(`\n\s*([A-Z][A-Z\s'\-]+)\n\s*Missing Since`),
		regexp.MustCompile(`\n\s*([A-Z][A-Z\s'\-]+)\n\s*How you can help`),
		regexp.MustCompile(`MISSING CHILD\s*\n\s*([A-Z][A-Z\s'\-]+)\n`),
	}
	ncmecSinceRe     = regexp.MustCompile(`(?i)Missing\s+Since\s*[:\-]?\s*([A-Za-z0-9 ,/\-]{6,40})`)
	ncmecSinceTailRe = regexp.MustCompile(`(?i)Missing\s+Since\s*:?\s*`)
	ncmecCityStateRe = regexp.MustCompile(`\b([A-Za-z .'\-]+),\s*([A-Z]{2})\b`)
	ncmecAgeNowRe    = regexp.MustCompile(`(?i)Age\s*Now\s*:\s*(\d{1,2})`)
	ncmecSexRe       = regexp.MustCompile(`(?i)(?:Sex\s*[:\-]?\s*)?(Female|Male)\b`)
	ncmecCaseNumRe   = regexp.MustCompile(`(?i)NCMEC:\s*([A-Z0-9\-]+)`)
	ncmecPhoneRe     = regexp.MustCompile(`(\d{3}[-.]\d{3}[-.]\d{4})`)
	ncmecAgencyRe    = regexp.MustCompile(`([A-Z\s]+(?:POLICE|SHERIFF|DEPARTMENT))\s*\d{3}[-.]\d{3}[-.]\d{4}`)
	ncmecWeightRe    = regexp.MustCompile(`(?i)(\d+)\s*(?:lbs?|pounds?)`)

	// Narrative patterns, tried in order of specificity. Each targets the
	// free-text sentences posters bury between the demographic block and the
	// report-sighting boilerplate.
	ncmecDescRes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)NCMEC:\s*[A-Z0-9\-]+\s*\n\s*([A-Z][^.]*\.(?:\s+[A-Z][^.]*\.)*)`),
		regexp.MustCompile(`(?is)(?:Female|Male)\s*\n\s*([A-Z][^.]*\.(?:\s+[A-Z][^.]*\.)*)`),
		regexp.MustCompile(`(?is)([A-Z][A-Z\s]+\s+(?:WAS LAST SEEN|MAY STAY|MIGHT|WAS|IS|HAS|HAD|WILL|WOULD|CAN|COULD|SHOULD|MUST|SHALL)[^.]*\.(?:\s+[A-Z][^.]*\.)*)`),
		regexp.MustCompile(`(?is)(?:last\s+seen\s+wearing|features?|clothing)[:\s]*([A-Z0-9 ,.'\-()]+)`),
		regexp.MustCompile(`(?is)([A-Z][A-Z\s,.'\-()]+(?:HOODIE|SHIRT|PANTS|SHOES|BRACES|RING|TATTOO|SCAR)[A-Z0-9 ,.'\-()]*)`),
		regexp.MustCompile(`(?is)([A-Z][A-Z\s,.'\-()]+(?:WAS LAST SEEN|HAS|WEARING)[A-Z0-9 ,.'\-()]*)`),
	}
	ncmecDescTrailRe = regexp.MustCompile(`(?i)\s+(?:How you can help|Scan, View|Report Sighting|CALL|911|NCMEC).*$`)
	ncmecBoilerRe    = regexp.MustCompile(`(?i)^(?:Scan, View|How you can help|Report Sighting|CALL|911|MISSING CHILD)`)

	ncmecHairColors = []string{"black", "brown", "blonde", "red", "gray", "white", "auburn"}
	ncmecEyeColors  = []string{"blue", "brown", "green", "hazel", "gray", "black"}

	ncmecFeatureRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)tattoo[^.]*`),
		regexp.MustCompile(`(?i)scar[^.]*`),
		regexp.MustCompile(`(?i)brace[^.]*`),
		regexp.MustCompile(`(?i)piercing[^.]*`),
		regexp.MustCompile(`(?i)birthmark[^.]*`),
		regexp.MustCompile(`(?i)mole[^.]*`),
	}
)

// ParseNCMEC targets NCMEC posters: a name in caps, "Missing Since", a
// city/state pair near the date, "Age Now", sex, and a short free-text
// description. Posters rarely carry measurements, so height and weight are
// filled from growth-chart estimates and flagged as such.
func ParseNCMEC(text, caseID string) *record.CaseRecord {
	rec := record.New(caseID, constants.SourceNCMEC)

	for _, re := range ncmecNameRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := collapse(m[1]); name != "" {
				rec.Demographic.Name = titleCase(name)
				break
			}
		}
	}

	if m := ncmecSinceRe.FindStringSubmatch(text); m != nil {
		rec.Temporal.LastSeenTS = record.ExtractDateISO(m[1])
	}

	// City/state sits within a short window after the Missing Since label.
	if loc := ncmecSinceTailRe.FindStringIndex(text); loc != nil {
		end := loc[1] + 250
		if end > len(text) {
			end = len(text)
		}
		if m := ncmecCityStateRe.FindStringSubmatch(text[loc[1]:end]); m != nil {
			city := strings.TrimSpace(m[1])
			state := strings.TrimSpace(m[2])
			rec.Spatial.LastSeenCity = city
			rec.Spatial.LastSeenState = state
			rec.Spatial.LastSeenLocation = city + ", " + state
		}
	}

	if m := ncmecAgeNowRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.Demographic.AgeYears = record.Float(v)
		}
	}
	if m := ncmecSexRe.FindStringSubmatch(text); m != nil {
		rec.Demographic.Gender = record.NormalizeGender(m[1])
	}

	for _, re := range ncmecDescRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		desc := collapse(m[1])
		desc = strings.TrimSpace(ncmecDescTrailRe.ReplaceAllString(desc, ""))
		if len(desc) > 10 && !ncmecBoilerRe.MatchString(desc) {
			rec.Narrative.IncidentSummary = desc
			break
		}
	}

	if rec.Temporal.LastSeenTS == "" {
		rec.Temporal.LastSeenTS = fallbackLastSeen(text)
	}

	if m := ncmecCaseNumRe.FindStringSubmatch(text); m != nil {
		rec.Provenance.CaseNumber = strings.TrimSpace(m[1])
	}
	if m := ncmecPhoneRe.FindStringSubmatch(text); m != nil {
		rec.Provenance.AgencyPhone = m[1]
	}
	if m := ncmecAgencyRe.FindStringSubmatch(text); m != nil {
		rec.Provenance.Agency = collapse(m[1])
	}

	if m := ncmecWeightRe.FindStringSubmatch(text); m != nil {
		if w, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.Demographic.WeightLbs = record.Float(w)
		}
	}

	if rec.Demographic.AgeYears != nil && rec.Demographic.Gender != "" &&
		rec.Demographic.HeightIn == nil && rec.Demographic.WeightLbs == nil {
		h, w, ok := EstimateHeightWeight(*rec.Demographic.AgeYears, rec.Demographic.Gender)
		if ok {
			if h != 0 {
				rec.Demographic.HeightIn = record.Float(h)
				rec.Demographic.HeightEstimate = true
			}
			if w != 0 {
				rec.Demographic.WeightLbs = record.Float(w)
				rec.Demographic.WeightEstimate = true
			}
		}
	}

	lower := strings.ToLower(text)
	for _, color := range ncmecHairColors {
		if containsWord(lower, color) {
			rec.Demographic.HairColor = titleCase(color)
			break
		}
	}
	for _, color := range ncmecEyeColors {
		if containsWord(lower, color) {
			rec.Demographic.EyeColor = titleCase(color)
			break
		}
	}

	var features []string
	for _, re := range ncmecFeatureRes {
		features = append(features, re.FindAllString(text, -1)...)
	}
	if len(features) > 0 {
		rec.Demographic.DistinctiveFeatures = strings.Join(features, "; ")
	}

	return rec
}

func containsWord(lower, word string) bool {
	idx := strings.Index(lower, word)
	for idx >= 0 {
		before := idx == 0 || !isWordByte(lower[idx-1])
		end := idx + len(word)
		after := end == len(lower) || !isWordByte(lower[end])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
