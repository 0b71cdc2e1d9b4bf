package detect_test

import (
	"testing"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/detect"
)

func TestSource(t *testing.T) {
	tests := []struct {
		name string
		text string
		want constants.Source
	}{
		{
			"vsp bulletin",
			"MISSING PERSONS\nVirginia State Police\nJane Doe\nMissing From: Richmond, Virginia",
			constants.SourceVSP,
		},
		{
			"vsp by case number",
			"MISSING PERSONS\ncase VAA25-1234",
			constants.SourceVSP,
		},
		{
			"namus",
			"NamUs Case Created: 09/10/2025\nDate of Last Contact: 09/08/2025",
			constants.SourceNamUs,
		},
		{
			"ncmec poster",
			"Have you seen this child?\nMissing Since: September 8, 2025",
			constants.SourceNCMEC,
		},
		{
			"fbi poster",
			"FBI Richmond Field Office seeks the public's assistance",
			constants.SourceFBI,
		},
		{
			"charley page",
			"Details of Disappearance\nShe vanished in 2025.",
			constants.SourceCharley,
		},
		{
			"no markers",
			"A person went missing last week.",
			constants.SourceUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detect.Source(tt.text); got != tt.want {
				t.Errorf("Source = %q, want %q", got, tt.want)
			}
		})
	}
}

// A multi-case state police bulletin also carries poster-style markers.
// VSP must win or the document never reaches the case splitter.
func TestSourcePrecedence(t *testing.T) {
	text := "MISSING PERSONS\nVirginia State Police\n\n" +
		"Jane Doe\nMissing From: Richmond, Virginia\nMissing Since: September 8, 2025\n\n" +
		"Details of Disappearance unknown."
	if got := detect.Source(text); got != constants.SourceVSP {
		t.Errorf("Source = %q, want VSP to outrank NCMEC and Charley markers", got)
	}
}
