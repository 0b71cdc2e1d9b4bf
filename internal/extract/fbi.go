package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

var (
	fbiNameRe = regexp.MustCompile(`(?m)^([A-Z][A-Z\s'\-]+)\s*\n`)
	fbiDateRe = regexp.MustCompile(`([A-Za-z]{3,9}\s+\d{1,2},\s+\d{4})`)
	fbiLocRe  = regexp.MustCompile(`([A-Za-z\s]+),\s*([A-Za-z\s]+(?:Carolina|Dakota|Hampshire|Jersey|Mexico|York|Island|Virginia|Washington|California|Florida|Texas|Alaska|Hawaii|Alabama|Arizona|Arkansas|Colorado|Connecticut|Delaware|Georgia|Idaho|Illinois|Indiana|Iowa|Kansas|Kentucky|Louisiana|Maine|Maryland|Massachusetts|Michigan|Minnesota|Mississippi|Missouri|Montana|Nebraska|Nevada|Ohio|Oklahoma|Oregon|Pennsylvania|Rhode|South|Tennessee|Utah|Vermont|West|Wisconsin|Wyoming))`)

	// "white female, with blue eyes and brown hair" and its orderings.
	fbiDemoRes = []struct {
		re            *regexp.Regexp
		eyeIdx, hairIdx int
	}{
		{regexp.MustCompile(`(?i)(\w+)\s+(?:male|female),?\s+with\s+(\w+)\s+eyes\s+and\s+(\w+)\s+hair`), 2, 3},
		{regexp.MustCompile(`(?i)(\w+)\s+(?:male|female),?\s+(\w+)\s+eyes,?\s+(\w+)\s+hair`), 2, 3},
		{regexp.MustCompile(`(?i)(\w+)\s+(?:male|female),?\s+(\w+)\s+hair,?\s+(\w+)\s+eyes`), 3, 2},
	}

	fbiFemaleRe  = regexp.MustCompile(`(?i)\bfemale\b`)
	fbiMaleRe    = regexp.MustCompile(`(?i)\bmale\b`)
	fbiHWRe      = regexp.MustCompile(`(?i)(\d+['"]?\d*)\s*(?:tall|ft|feet).*?(\d+)\s*(?:pounds|lbs)`)
	fbiHeightRe  = regexp.MustCompile(`(?i)approximately\s+(\d+['"]?\d*)\s*(?:tall|ft|feet)`)
	fbiWeightRe  = regexp.MustCompile(`(?i)weighed\s+approximately\s+(\d+)\s*(?:pounds|lbs)`)
	fbiAgeRe     = regexp.MustCompile(`(?i)(?:was|is)\s+(\d{1,2})\s+(?:and|\s+years?\s+old)`)
	fbiDOBRe     = regexp.MustCompile(`(?i)born\s+on\s+([A-Za-z]{3,9}\s+\d{1,2},\s+\d{4})`)
	fbiDetailsRe = regexp.MustCompile(`(?is)DETAILS\s*\n(.*?)(?:\n\s*ADDITIONAL\s+INFORMATION|\n\s*Anyone\s+with\s+information|\z)`)
	fbiPhoneRe   = regexp.MustCompile(`\((\d{3})\)\s*(\d{3})-(\d{4})`)
	fbiOfficeRe  = regexp.MustCompile(`(?i)FBI\s+([A-Za-z\s]+)\s+Field\s+Office`)

	fbiLocalAgencyRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)working\s+this\s+investigation\s+jointly\s+with\s+the\s+([A-Za-z\s]+(?:Police|Sheriff|Department))`),
		regexp.MustCompile(`(?i)investigation\s+jointly\s+with\s+the\s+([A-Za-z\s]+(?:Police|Sheriff|Department))`),
		regexp.MustCompile(`(?i)with\s+the\s+([A-Za-z\s]+(?:Police|Sheriff|Department))`),
		regexp.MustCompile(`(?i)contact\s+(?:the\s+the\s+)?([A-Za-z\s]+(?:Police|Sheriff|Department))\s+at\s+\(?\d{3}\)?\s*\d{3}[-.\s]?\d{4}`),
	}
	fbiDupTheRe     = regexp.MustCompile(`(?i)\bthe\s+the\b`)
	fbiLeadingTheRe = regexp.MustCompile(`(?i)^\s*the\s+`)
)

// ParseFBI targets FBI missing posters, which bury demographics in running
// narrative instead of labeled fields: an ALL-CAPS title name, a wordy date,
// "city, Full State", phrases like "white female, with blue eyes and brown
// hair", and a DETAILS section.
func ParseFBI(text, caseID string) *record.CaseRecord {
	rec := record.New(caseID, constants.SourceFBI)

	if m := fbiNameRe.FindStringSubmatch(text); m != nil {
		rec.Demographic.Name = titleCase(collapse(m[1]))
	}

	if m := fbiDateRe.FindStringSubmatch(text); m != nil {
		rec.Temporal.LastSeenTS = record.ExtractDateISO(m[1])
	}

	if m := fbiLocRe.FindStringSubmatch(text); m != nil {
		city := strings.TrimSpace(m[1])
		state := strings.TrimSpace(m[2])
		rec.Spatial.LastSeenCity = city
		rec.Spatial.LastSeenState = state
		rec.Spatial.LastSeenLocation = city + ", " + state
	}

	for _, p := range fbiDemoRes {
		if m := p.re.FindStringSubmatch(text); m != nil {
			rec.Demographic.RaceEthnicity = titleCase(m[1])
			rec.Demographic.EyeColor = titleCase(m[p.eyeIdx])
			rec.Demographic.HairColor = titleCase(m[p.hairIdx])
			break
		}
	}

	if fbiFemaleRe.MatchString(text) {
		rec.Demographic.Gender = "female"
	} else if fbiMaleRe.MatchString(text) {
		rec.Demographic.Gender = "male"
	}

	if m := fbiHWRe.FindStringSubmatch(text); m != nil {
		if h, ok := record.ToInches(m[1]); ok {
			rec.Demographic.HeightIn = record.Float(h)
		}
		if w, err := strconv.ParseFloat(m[2], 64); err == nil {
			rec.Demographic.WeightLbs = record.Float(w)
		}
	} else {
		if m := fbiHeightRe.FindStringSubmatch(text); m != nil {
			if h, ok := record.ToInches(m[1]); ok {
				rec.Demographic.HeightIn = record.Float(h)
			}
		}
		if m := fbiWeightRe.FindStringSubmatch(text); m != nil {
			if w, err := strconv.ParseFloat(m[1], 64); err == nil {
				rec.Demographic.WeightLbs = record.Float(w)
			}
		}
	}

	if m := fbiAgeRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.Demographic.AgeYears = record.Float(v)
		}
	}

	if m := fbiDOBRe.FindStringSubmatch(text); m != nil {
		if iso := record.ExtractDateISO(m[1]); iso != "" {
			rec.Demographic.DOB = strings.SplitN(iso, "T", 2)[0]
		}
	}

	if m := fbiDetailsRe.FindStringSubmatch(text); m != nil {
		rec.Narrative.IncidentSummary = collapse(m[1])
	}

	if m := fbiPhoneRe.FindStringSubmatch(text); m != nil {
		rec.Provenance.AgencyPhone = "(" + m[1] + ") " + m[2] + "-" + m[3]
	}

	if m := fbiOfficeRe.FindStringSubmatch(text); m != nil {
		rec.Provenance.Agency = "FBI " + collapse(m[1]) + " Field Office"
	} else {
		for _, re := range fbiLocalAgencyRes {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			agency := collapse(m[1])
			agency = fbiDupTheRe.ReplaceAllString(agency, "the")
			agency = fbiLeadingTheRe.ReplaceAllString(agency, "")
			rec.Provenance.Agency = agency
			break
		}
	}

	return rec
}
