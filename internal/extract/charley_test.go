package extract_test

import (
	"strings"
	"testing"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/extract"
)

const charleyPage = `Abigail Rose Turner
Missing Since
9/8/2025
Missing From
Richmond, Virginia
Sex
Female
Height and Weight
5'4" - 5'6", 120 pounds
Details of Disappearance
Turner was last seen leaving her home on Cary Street in Richmond, Virginia.
She never arrived at school and her phone was found nearby.
Investigating Agency
Richmond Police Department`

func TestParseCharley(t *testing.T) {
	rec := extract.ParseCharley(charleyPage, "GRD-2025-000001")

	if rec.Demographic.Name != "Abigail Rose Turner" {
		t.Errorf("Name = %q", rec.Demographic.Name)
	}
	if rec.Temporal.LastSeenTS != "2025-09-08T00:00:00Z" {
		t.Errorf("LastSeenTS = %q", rec.Temporal.LastSeenTS)
	}
	if rec.Spatial.LastSeenCity != "Richmond" || rec.Spatial.LastSeenState != "Virginia" {
		t.Errorf("location = %q, %q", rec.Spatial.LastSeenCity, rec.Spatial.LastSeenState)
	}
	if rec.Demographic.Gender != "female" {
		t.Errorf("Gender = %q", rec.Demographic.Gender)
	}
	if rec.Demographic.HeightIn == nil || *rec.Demographic.HeightIn != 65 {
		t.Errorf("HeightIn = %v, want midpoint 65", rec.Demographic.HeightIn)
	}
	if rec.Demographic.WeightLbs == nil || *rec.Demographic.WeightLbs != 120 {
		t.Errorf("WeightLbs = %v, want 120", rec.Demographic.WeightLbs)
	}
	if len(rec.Provenance.Sources) != 1 || rec.Provenance.Sources[0] != constants.CharleyProvenanceTag {
		t.Errorf("Sources = %v, want [%s]", rec.Provenance.Sources, constants.CharleyProvenanceTag)
	}
	if !strings.Contains(rec.Narrative.IncidentSummary, "last seen leaving her home") {
		t.Errorf("IncidentSummary = %q", rec.Narrative.IncidentSummary)
	}
	if strings.Contains(rec.Narrative.IncidentSummary, "Investigating Agency") {
		t.Error("narrative should stop before the Investigating Agency section")
	}
}
