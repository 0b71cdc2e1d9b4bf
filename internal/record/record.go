// Package record defines the canonical case record and the key-rewrite
// rules that reconcile both producer paths into the schema shape.
package record

import (
	"encoding/json"
	"sort"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
)

// DefaultTimezone is applied when a document carries no timezone of its own.
const DefaultTimezone = "America/New_York"

// CaseRecord is the canonical unit flowing through the pipeline. A
// per-source extractor creates it, every later stage mutates it in place,
// and it becomes immutable the moment it is written to JSONL.
type CaseRecord struct {
	SourcePath string `json:"source_path,omitempty"`
	CaseID     string `json:"case_id"`

	Demographic Demographic    `json:"demographic"`
	Temporal    Temporal       `json:"temporal"`
	Spatial     Spatial        `json:"spatial"`
	Narrative   NarrativeOSINT `json:"narrative_osint"`
	Outcome     Outcome        `json:"outcome"`
	Provenance  Provenance     `json:"provenance"`
	Audit       *Audit         `json:"audit,omitempty"`

	// FullText keeps the raw document text around for the batch backfill
	// pass. It is stripped before persistence.
	FullText string `json:"_fulltext,omitempty"`
}

// Demographic is the who-bag: identity and physical description.
type Demographic struct {
	Name                string   `json:"name,omitempty"`
	AKA                 string   `json:"aka,omitempty"`
	Aliases             []string `json:"aliases,omitempty"`
	DOB                 string   `json:"dob,omitempty"`
	AgeYears            *float64 `json:"age_years,omitempty"`
	Gender              string   `json:"gender,omitempty"`
	RaceEthnicity       string   `json:"race_ethnicity,omitempty"`
	HeightIn            *float64 `json:"height_in,omitempty"`
	WeightLbs           *float64 `json:"weight_lbs,omitempty"`
	HairColor           string   `json:"hair_color,omitempty"`
	EyeColor            string   `json:"eye_color,omitempty"`
	DistinctiveFeatures string   `json:"distinctive_features,omitempty"`
	RiskFactors         []string `json:"risk_factors,omitempty"`

	// Set when height/weight were filled from age-based growth-chart
	// estimates rather than the document itself.
	HeightEstimate bool `json:"height_estimate,omitempty"`
	WeightEstimate bool `json:"weight_estimate,omitempty"`
}

// Sighting is one follow-up sighting report. TS is mandatory per item.
type Sighting struct {
	TS           string   `json:"ts"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	EventType    string   `json:"event_type,omitempty"`
	ReporterType string   `json:"reporter_type,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Note         string   `json:"note,omitempty"`
}

// Temporal holds the case timeline. Timestamps are ISO 8601 strings or
// empty when unknown; last_seen_ts is always non-empty by persistence time.
type Temporal struct {
	Timezone                    string     `json:"timezone,omitempty"`
	LastSeenTS                  string     `json:"last_seen_ts"`
	ReportedMissingTS           string     `json:"reported_missing_ts,omitempty"`
	FirstPoliceActionTS         string     `json:"first_police_action_ts,omitempty"`
	ElapsedReportMinutes        *int       `json:"elapsed_report_minutes,omitempty"`
	ElapsedFirstResponseMinutes *int       `json:"elapsed_first_response_minutes,omitempty"`
	FollowUpSightings           []Sighting `json:"follow_up_sightings,omitempty"`
}

// Spatial holds the last-seen location. Lat/lon are required by the schema
// and default to 0.0 placeholders until geocoding fills them.
type Spatial struct {
	LastSeenLocation   string   `json:"last_seen_location,omitempty"`
	LastSeenAddress    string   `json:"last_seen_address,omitempty"`
	LastSeenCity       string   `json:"last_seen_city,omitempty"`
	LastSeenCounty     string   `json:"last_seen_county,omitempty"`
	LastSeenState      string   `json:"last_seen_state,omitempty"`
	LastSeenPostalCode string   `json:"last_seen_postal_code,omitempty"`
	LastSeenLat        float64  `json:"last_seen_lat"`
	LastSeenLon        float64  `json:"last_seen_lon"`
	NearbyRoads        []string `json:"nearby_roads,omitempty"`
	NearbyTransitHubs  []string `json:"nearby_transit_hubs,omitempty"`
	NearbyPOIs         []string `json:"nearby_pois,omitempty"`
}

// NarrativeOSINT carries free-text narrative and open-source intel.
// Witness/news/social lists are opaque structured passthrough.
type NarrativeOSINT struct {
	IncidentSummary    string   `json:"incident_summary"`
	BehavioralPatterns []string `json:"behavioral_patterns,omitempty"`
	MovementCuesText   string   `json:"movement_cues_text,omitempty"`
	TemporalMarkers    []string `json:"temporal_markers,omitempty"`
	WitnessAccounts    []any    `json:"witness_accounts,omitempty"`
	News               []any    `json:"news,omitempty"`
	SocialMedia        []any    `json:"social_media,omitempty"`
	PersonsOfInterest  []any    `json:"persons_of_interest,omitempty"`
}

// Outcome tracks case resolution.
type Outcome struct {
	CaseStatus         string   `json:"case_status"`
	RecoveryTS         string   `json:"recovery_ts,omitempty"`
	RecoveryLocation   string   `json:"recovery_location,omitempty"`
	RecoveryState      string   `json:"recovery_state,omitempty"`
	RecoveryLat        *float64 `json:"recovery_lat,omitempty"`
	RecoveryLon        *float64 `json:"recovery_lon,omitempty"`
	RecoveryTimeHours  *float64 `json:"recovery_time_hours,omitempty"`
	RecoveryDistanceMi *float64 `json:"recovery_distance_mi,omitempty"`
	RecoveryCondition  string   `json:"recovery_condition,omitempty"`
}

// Provenance records where the data came from. OriginalFields is the
// side-channel for producer keys outside the canonical schema, keyed
// "category.key", so nothing is silently destroyed.
type Provenance struct {
	Sources        []string       `json:"sources"`
	CaseNumber     string         `json:"case_number,omitempty"`
	Agency         string         `json:"agency,omitempty"`
	AgencyPhone    string         `json:"agency_phone,omitempty"`
	OriginalFields map[string]any `json:"original_fields,omitempty"`
}

// Audit holds per-category confidences and free-form evidence strings.
// It is pipeline bookkeeping and excluded from schema validation.
type Audit struct {
	Confidences map[string]float64 `json:"confidences,omitempty"`
	Evidence    map[string]string  `json:"evidence,omitempty"`
}

// New returns a fully-shaped record seeded with the defaults every
// extractor starts from.
func New(caseID string, source constants.Source) *CaseRecord {
	return &CaseRecord{
		CaseID:      caseID,
		Temporal:    Temporal{Timezone: DefaultTimezone},
		Outcome:     Outcome{CaseStatus: string(constants.CaseStatusOngoing)},
		Narrative:   NarrativeOSINT{IncidentSummary: ""},
		Provenance:  Provenance{Sources: []string{source.String()}, OriginalFields: map[string]any{}},
		Demographic: Demographic{},
		Spatial:     Spatial{},
	}
}

// SetOriginalField stashes a non-canonical producer value under
// provenance.original_fields["category.key"].
func (r *CaseRecord) SetOriginalField(key string, v any) {
	if r.Provenance.OriginalFields == nil {
		r.Provenance.OriginalFields = map[string]any{}
	}
	r.Provenance.OriginalFields[key] = v
}

// ToMap round-trips the record through JSON into the dynamic form the
// validator and sanitizer operate on.
func (r *CaseRecord) ToMap() (map[string]any, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// FromMap builds a typed record from the dynamic form. Unknown keys are
// dropped by the JSON decoder; callers that must preserve them run the
// sanitizer first.
func FromMap(m map[string]any) (*CaseRecord, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var r CaseRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DedupeSorted returns the list with empties removed, duplicates dropped,
// and a stable sorted order.
func DedupeSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional integer fields.
func Int(v int) *int { return &v }
