package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

var (
	enrichSexRe    = regexp.MustCompile(`(?i)\b(?:Sex|Gender)\s*[:\-]?\s*(Male|Female)\b`)
	enrichAgeRe    = regexp.MustCompile(`(?i)\bAge(?:\s+at\s+(?:time\s+of\s+disappearance|missing))?\s*[:\-]?\s*(\d{1,2})\b`)
	enrichFtInRe   = regexp.MustCompile(`(?i)\b(\d)\s*(?:ft|feet|['\x{2019}])\s*([0-9]{1,2})\s*(?:in|inches|["\x{201D}])?\b`)
	enrichInOnlyRe = regexp.MustCompile(`(?i)\bHeight\s*[:\-]?\s*(\d{2,3})\s*(?:in|inches)\b`)
	enrichWeightRe = regexp.MustCompile(`(?i)\bWeight\s*[:\-]?\s*(\d{2,3})\s*(?:lb|lbs|pounds)\b`)
	enrichHairRe   = regexp.MustCompile(`(?i)\bHair(?:\s*Color)?\s*[:\-]?\s*([A-Za-z]+)(?:\s|$)`)
	enrichEyeRe    = regexp.MustCompile(`(?i)\bEyes?(?:\s*Color)?\s*[:\-]?\s*([A-Za-z /-]+?)\b(?:Hair|Height|Weight|DOB|Date\b)`)
	enrichDOBRe    = regexp.MustCompile(`(?i)\b(?:DOB|Date of Birth)\s*[:\-]?\s*([A-Za-z]{3,9}\s+\d{1,2},\s+\d{4}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	enrichFromRe   = regexp.MustCompile(`(?i)\b(?:Missing\s+From|Location)\s*[:\-]?\s*([A-Za-z .-]+?),\s*([A-Z]{2})\b`)
	enrichPostalRe = regexp.MustCompile(`\b(\d{5}(?:-\d{4})?)\b`)
	enrichCountyRe = regexp.MustCompile(`(?i)\b(?:County|Parish)\s*[:\-]?\s*([A-Za-z .-]+?)(?:\s+County|\s+Parish|\s*$)`)
	enrichAddrRe   = regexp.MustCompile(`(?i)\b(?:Address|Last\s+Seen\s+At)\s*[:\-]?\s*([A-Za-z0-9 .,\-/]+?)(?:,\s*[A-Z]{2}|\s*$)`)

	enrichLastSeenRe = regexp.MustCompile(`(?i)\b(?:Date of Last Contact|Missing Since|Date Missing)\s*[:\-]?\s*([A-Za-z]{3,9}\s+\d{1,2},\s+\d{4}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	enrichReportRe   = regexp.MustCompile(`(?i)\b(?:Reported\s+Missing|Case\s+Created|Report\s+Date)\s*[:\-]?\s*([A-Za-z]{3,9}\s+\d{1,2},\s+\d{4}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	enrichPoliceRe   = regexp.MustCompile(`(?i)\b(?:First\s+Response|Police\s+Action|Investigation\s+Started)\s*[:\-]?\s*([A-Za-z]{3,9}\s+\d{1,2},\s+\d{4}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)

	enrichCaseNumRe = regexp.MustCompile(`(?i)\b(?:Case|NamUs|NCMEC)\s*(?:ID|#|Number)\s*[:\-]?\s*([A-Z0-9-]+)\b`)

	enrichAKARes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:AKA|Also Known As)\s*[:\-]?\s*([A-Za-z0-9 .'\-]+?)(?:\s|$)`),
		regexp.MustCompile(`(?i)\b(?:Nickname|Nicknames?)\s*[:\-]?\s*([A-Za-z0-9 .'\-]+?)(?:\s|$)`),
		regexp.MustCompile(`(?i)\b(?:Chosen Name/Nickname/Alias|Chosen Name|Alias)\s*[:\-]?\s*([A-Za-z0-9 .'\-]+?)(?:\s|$)`),
	}
	enrichAKAJunkRe = regexp.MustCompile(`(?i)\b(?:Biological|Sex|Current|Age|Years|Middle|Name|Legal|Last|Height|Weight|Race|Ethnicity)\b`)

	enrichFeatureRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Scar/mark\s+([^\n]+)`),
		regexp.MustCompile(`(?i)Tattoo\s+([^\n]+)`),
		regexp.MustCompile(`(?i)Birthmark\s+([^\n]+)`),
	}
	enrichFeatureTrimRes = []*regexp.Regexp{
		regexp.MustCompile(`\s+Clothing.*$`),
		regexp.MustCompile(`\s+Item.*$`),
		regexp.MustCompile(`\s+Description.*$`),
	}
	enrichFeatureJunkRe = regexp.MustCompile(`(?i)\b(?:Clothing|Accessories|Item|Description|Physical|Features)\b`)

	enrichRiskRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:At\s+Risk|Risk\s+Factors?|Vulnerable|Endangered)\s*[:\-]?\s*([A-Za-z0-9 .,\-/]+?)(?:\s+AKA|\s+$)`),
		regexp.MustCompile(`(?i)\b(?:Mental\s+Health|Medical\s+Condition|Disability)\s*[:\-]?\s*([A-Za-z0-9 .,\-/]+?)(?:\s+AKA|\s+$)`),
	}
	enrichRiskWordRe = regexp.MustCompile(`(?i)\b(Runaway|Fugitive|Wanted)\b`)

	enrichAgencyRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bInvestigating Agency\s*[:\-]?\s*([A-Za-z0-9 .,&'\-]+?)(?:\s|$)`),
		regexp.MustCompile(`(?i)\bContact\s*[:\-]?\s*([A-Za-z0-9 .,&'\-]*(?:POLICE|SHERIFF|DEPARTMENT|AGENCY)[A-Za-z0-9 .,&'\-]*?)(?:\s|$)`),
		regexp.MustCompile(`(?i)\b([A-Za-z0-9 .,&'\-]*(?:POLICE|SHERIFF|DEPARTMENT|AGENCY)[A-Za-z0-9 .,&'\-]*?)\s*[:\-]?\s*Contact`),
	}
	enrichAgencyJunkRe = regexp.MustCompile(`(?i)\b(?:NamUs|Case|Created|Last|Known|Location|April|2023|Missing|From)\b`)
	enrichPhoneRe      = regexp.MustCompile(`(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`)

	enrichBehaviorRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:traveling|en\s+route|headed|going\s+to)\s*[:\-]?\s*([A-Za-z0-9 .,\-/]{5,50}?)(?:\s+with|\s+$)`),
		regexp.MustCompile(`(?i)\b(?:with|accompanied\s+by|in\s+company\s+of)\s*[:\-]?\s*([A-Za-z0-9 .,\-/]{5,50}?)(?:\s+in|\s+$)`),
		regexp.MustCompile(`(?i)\b(?:vehicle|car|truck|bus)\s*[:\-]?\s*([A-Za-z0-9 .,\-/]{5,50}?)\s*$`),
		regexp.MustCompile(`(?i)\b(?:may\s+stay|believed\s+to\s+be|suspected\s+of|known\s+to)\s*[:\-]?\s*([A-Za-z0-9 .,\-/]{5,50}?)(?:\s+with|\s+$)`),
		regexp.MustCompile(`(?i)\b(?:destination|headed\s+to|en\s+route\s+to)\s*[:\-]?\s*([A-Za-z0-9 .,\-/]{5,50}?)(?:\s+with|\s+$)`),
	}
	enrichClothingRe = regexp.MustCompile(`(?i)\b(?:wearing|shirt|pants|hoodie|shoes|clothing|outfit)\b`)
	enrichMovementRe = regexp.MustCompile(`(?i)\b(?:movement|travel|route|destination|direction)\s*[:\-]?\s*([A-Za-z0-9 .,\-/]+)`)

	validHairColors = map[string]struct{}{
		"black": {}, "brown": {}, "blonde": {}, "red": {}, "gray": {},
		"white": {}, "auburn": {}, "strawberry": {}, "chestnut": {},
	}
)

// Enrich fills gaps in a parsed record from the raw document text. It never
// overwrites a value the source extractor already set; every rule is
// set-if-missing. Runs after every extractor regardless of source.
func Enrich(rec *record.CaseRecord, fullText string) {
	norm := collapse(fullText)

	if rec.Demographic.Gender == "" {
		if m := enrichSexRe.FindStringSubmatch(norm); m != nil {
			rec.Demographic.Gender = record.NormalizeGender(m[1])
		}
	}

	if rec.Demographic.AgeYears == nil {
		if m := enrichAgeRe.FindStringSubmatch(norm); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				rec.Demographic.AgeYears = record.Float(v)
			}
		}
	}

	if rec.Demographic.HeightIn == nil {
		if m := enrichFtInRe.FindStringSubmatch(norm); m != nil {
			ft, _ := strconv.Atoi(m[1])
			in, _ := strconv.Atoi(m[2])
			rec.Demographic.HeightIn = record.Float(float64(ft*12 + in))
		} else if m := enrichInOnlyRe.FindStringSubmatch(norm); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				rec.Demographic.HeightIn = record.Float(v)
			}
		}
	}

	if rec.Demographic.WeightLbs == nil {
		if m := enrichWeightRe.FindStringSubmatch(norm); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				rec.Demographic.WeightLbs = record.Float(v)
			}
		}
	}

	if rec.Demographic.HairColor == "" {
		if m := enrichHairRe.FindStringSubmatch(norm); m != nil {
			color := titleCase(strings.TrimSpace(m[1]))
			if _, ok := validHairColors[strings.ToLower(color)]; ok {
				rec.Demographic.HairColor = color
			}
		}
	}

	if rec.Demographic.EyeColor == "" {
		if m := enrichEyeRe.FindStringSubmatch(norm); m != nil {
			rec.Demographic.EyeColor = titleCase(strings.TrimSpace(m[1]))
		}
	}

	if rec.Demographic.DOB == "" {
		if m := enrichDOBRe.FindStringSubmatch(norm); m != nil {
			rec.Demographic.DOB = record.NormalizeDate(m[1])
		}
	}

	if m := enrichFromRe.FindStringSubmatch(norm); m != nil {
		if rec.Spatial.LastSeenCity == "" {
			rec.Spatial.LastSeenCity = titleCase(strings.TrimSpace(m[1]))
		}
		if rec.Spatial.LastSeenState == "" {
			rec.Spatial.LastSeenState = strings.ToUpper(m[2])
		}
	}
	if rec.Spatial.LastSeenPostalCode == "" {
		if m := enrichPostalRe.FindStringSubmatch(norm); m != nil {
			rec.Spatial.LastSeenPostalCode = m[1]
		}
	}
	if rec.Spatial.LastSeenCounty == "" {
		if m := enrichCountyRe.FindStringSubmatch(norm); m != nil {
			rec.Spatial.LastSeenCounty = titleCase(strings.TrimSpace(m[1]))
		}
	}
	if rec.Spatial.LastSeenAddress == "" {
		if m := enrichAddrRe.FindStringSubmatch(norm); m != nil {
			rec.Spatial.LastSeenAddress = strings.TrimSpace(m[1])
		}
	}

	if rec.Temporal.LastSeenTS == "" {
		if m := enrichLastSeenRe.FindStringSubmatch(norm); m != nil {
			rec.Temporal.LastSeenTS = record.ExtractDateISO(m[1])
		}
	}
	if rec.Temporal.ReportedMissingTS == "" {
		if m := enrichReportRe.FindStringSubmatch(norm); m != nil {
			rec.Temporal.ReportedMissingTS = record.ExtractDateISO(m[1])
		}
	}
	if rec.Temporal.FirstPoliceActionTS == "" {
		if m := enrichPoliceRe.FindStringSubmatch(norm); m != nil {
			rec.Temporal.FirstPoliceActionTS = record.ExtractDateISO(m[1])
		}
	}

	if rec.Provenance.CaseNumber == "" {
		if m := enrichCaseNumRe.FindStringSubmatch(norm); m != nil {
			rec.Provenance.CaseNumber = strings.TrimSpace(m[1])
		}
	}

	var aka []string
	for _, re := range enrichAKARes {
		for _, m := range re.FindAllStringSubmatch(norm, -1) {
			cand := strings.TrimSpace(m[1])
			if cand == "" || cand == "--" || cand == "-" {
				continue
			}
			if enrichAKAJunkRe.MatchString(cand) {
				continue
			}
			aka = append(aka, cand)
		}
	}
	if len(aka) > 0 {
		deduped := record.DedupeSorted(aka)
		if rec.Demographic.AKA == "" {
			rec.Demographic.AKA = strings.Join(deduped, " | ")
		}
		if len(rec.Demographic.Aliases) == 0 {
			rec.Demographic.Aliases = deduped
		}
	}

	if rec.Demographic.DistinctiveFeatures == "" {
		var features []string
		seen := map[string]struct{}{}
		for _, re := range enrichFeatureRes {
			for _, m := range re.FindAllStringSubmatch(fullText, -1) {
				f := strings.TrimSpace(m[1])
				for _, trim := range enrichFeatureTrimRes {
					f = trim.ReplaceAllString(f, "")
				}
				f = strings.TrimSpace(f)
				if len(f) <= 5 || len(f) >= 200 || enrichFeatureJunkRe.MatchString(f) {
					continue
				}
				if _, dup := seen[f]; dup {
					continue
				}
				seen[f] = struct{}{}
				features = append(features, f)
			}
		}
		if len(features) > 0 {
			rec.Demographic.DistinctiveFeatures = strings.Join(features, " | ")
		}
	}

	if len(rec.Demographic.RiskFactors) == 0 {
		var risks []string
		for _, re := range enrichRiskRes {
			for _, m := range re.FindAllStringSubmatch(norm, -1) {
				if r := strings.TrimSpace(m[1]); r != "" {
					risks = append(risks, r)
				}
			}
		}
		for _, m := range enrichRiskWordRe.FindAllStringSubmatch(norm, -1) {
			risks = append(risks, m[1])
		}
		if len(risks) > 0 {
			rec.Demographic.RiskFactors = record.DedupeSorted(risks)
		}
	}

	if rec.Provenance.Agency == "" {
		for _, re := range enrichAgencyRes {
			m := re.FindStringSubmatch(norm)
			if m == nil {
				continue
			}
			agency := strings.TrimSpace(m[1])
			if len(agency) > 3 && len(agency) < 100 && !enrichAgencyJunkRe.MatchString(agency) {
				rec.Provenance.Agency = agency
				break
			}
		}
	}
	if rec.Provenance.AgencyPhone == "" {
		if m := enrichPhoneRe.FindStringSubmatch(norm); m != nil {
			rec.Provenance.AgencyPhone = m[1]
		}
	}

	if len(rec.Narrative.BehavioralPatterns) == 0 {
		var patterns []string
		for _, re := range enrichBehaviorRes {
			for _, m := range re.FindAllStringSubmatch(norm, -1) {
				p := strings.TrimSpace(m[1])
				if len(p) > 5 && len(p) < 100 && !enrichClothingRe.MatchString(p) {
					patterns = append(patterns, p)
				}
			}
		}
		if len(patterns) > 0 {
			rec.Narrative.BehavioralPatterns = record.DedupeSorted(patterns)
		}
	}

	if rec.Narrative.MovementCuesText == "" {
		if m := enrichMovementRe.FindStringSubmatch(norm); m != nil {
			rec.Narrative.MovementCuesText = strings.TrimSpace(m[1])
		}
	}
}
