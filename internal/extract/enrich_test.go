package extract_test

import (
	"testing"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/extract"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
)

func TestEnrichFillsGaps(t *testing.T) {
	text := "Sex: Female\n" +
		"Age: 16\n" +
		"Height: 5 ft 4 in\n" +
		"Weight: 120 lbs\n" +
		"Hair: Brown\n" +
		"DOB: 3/2/2009\n" +
		"Missing From: Richmond, VA 23220\n" +
		"Missing Since: September 8, 2025\n"

	rec := record.New("GRD-2025-000001", constants.SourceUnknown)
	extract.Enrich(rec, text)

	if rec.Demographic.Gender != "female" {
		t.Errorf("Gender = %q", rec.Demographic.Gender)
	}
	if rec.Demographic.AgeYears == nil || *rec.Demographic.AgeYears != 16 {
		t.Errorf("AgeYears = %v", rec.Demographic.AgeYears)
	}
	if rec.Demographic.HeightIn == nil || *rec.Demographic.HeightIn != 64 {
		t.Errorf("HeightIn = %v, want 64", rec.Demographic.HeightIn)
	}
	if rec.Demographic.WeightLbs == nil || *rec.Demographic.WeightLbs != 120 {
		t.Errorf("WeightLbs = %v", rec.Demographic.WeightLbs)
	}
	if rec.Demographic.HairColor != "Brown" {
		t.Errorf("HairColor = %q", rec.Demographic.HairColor)
	}
	if rec.Demographic.DOB != "2009-03-02" {
		t.Errorf("DOB = %q", rec.Demographic.DOB)
	}
	if rec.Spatial.LastSeenCity != "Richmond" || rec.Spatial.LastSeenState != "VA" {
		t.Errorf("location = %q, %q", rec.Spatial.LastSeenCity, rec.Spatial.LastSeenState)
	}
	if rec.Spatial.LastSeenPostalCode != "23220" {
		t.Errorf("PostalCode = %q", rec.Spatial.LastSeenPostalCode)
	}
	if rec.Temporal.LastSeenTS != "2025-09-08T00:00:00Z" {
		t.Errorf("LastSeenTS = %q", rec.Temporal.LastSeenTS)
	}
}

func TestEnrichNeverOverwrites(t *testing.T) {
	rec := record.New("GRD-2025-000002", constants.SourceNCMEC)
	rec.Demographic.Gender = "male"
	rec.Demographic.AgeYears = record.Float(12)
	rec.Temporal.LastSeenTS = "2024-01-01T00:00:00Z"

	extract.Enrich(rec, "Sex: Female\nAge: 16\nMissing Since: September 8, 2025")

	if rec.Demographic.Gender != "male" {
		t.Errorf("Gender overwritten to %q", rec.Demographic.Gender)
	}
	if *rec.Demographic.AgeYears != 12 {
		t.Errorf("AgeYears overwritten to %v", *rec.Demographic.AgeYears)
	}
	if rec.Temporal.LastSeenTS != "2024-01-01T00:00:00Z" {
		t.Errorf("LastSeenTS overwritten to %q", rec.Temporal.LastSeenTS)
	}
}

func TestEnrichHairColorWhitelist(t *testing.T) {
	rec := record.New("GRD-2025-000003", constants.SourceUnknown)
	extract.Enrich(rec, "Hair: Unknown")
	if rec.Demographic.HairColor != "" {
		t.Errorf("HairColor = %q, want off-whitelist value rejected", rec.Demographic.HairColor)
	}
}

func TestEnrichRiskWords(t *testing.T) {
	rec := record.New("GRD-2025-000004", constants.SourceUnknown)
	extract.Enrich(rec, "The subject is a suspected Runaway and considered Endangered: diabetic, needs medication daily")
	if len(rec.Demographic.RiskFactors) == 0 {
		t.Fatal("expected risk factors")
	}
	found := false
	for _, r := range rec.Demographic.RiskFactors {
		if r == "Runaway" {
			found = true
		}
	}
	if !found {
		t.Errorf("RiskFactors = %v, want Runaway included", rec.Demographic.RiskFactors)
	}
}
