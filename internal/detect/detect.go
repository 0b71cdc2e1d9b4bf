// Package detect classifies raw document text into a source identifier
// using ordered marker tests. Ordering is load-bearing: a multi-case VSP
// bulletin also contains poster-style markers and must win, because
// multi-case documents are split before any other extractor runs.
package detect

import (
	"regexp"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
)

var (
	vaaCaseRe        = regexp.MustCompile(`\bVAA\d{2}-\d+\b`)
	fbiFieldOfficeRe = regexp.MustCompile(`(?i)\bFBI\s+\w+\s+Field\s+Office\b`)
	fieldOfficeRe    = regexp.MustCompile(`(?i)Field\s+Office\s*:\s*\w+`)
	fbiBureauRe      = regexp.MustCompile(`(?i)\bFederal Bureau of Investigation\b`)
	fbiConcernRe     = regexp.MustCompile(`(?i)If you have any information concerning this (?:child|person)`)
)

type rule struct {
	source constants.Source
	match  func(text string) bool
}

// Ranked first-match rule list. Do not reorder without a precedence test.
var rules = []rule{
	{constants.SourceVSP, isVSP},
	{constants.SourceNamUs, func(t string) bool {
		return strings.Contains(t, "NamUs") ||
			strings.Contains(t, "Case Created") ||
			strings.Contains(t, "Date of Last Contact")
	}},
	{constants.SourceNCMEC, func(t string) bool {
		return strings.Contains(t, "Have you seen this child?") ||
			strings.Contains(t, "NCMEC") ||
			strings.Contains(t, "Missing Since:") ||
			strings.Contains(t, "Missing Since :")
	}},
	{constants.SourceFBI, func(t string) bool {
		return (strings.Contains(t, "FBI") && strings.Contains(t, "www.fbi.gov")) ||
			fbiBureauRe.MatchString(t) ||
			fbiFieldOfficeRe.MatchString(t) ||
			fieldOfficeRe.MatchString(t) ||
			fbiConcernRe.MatchString(t)
	}},
	{constants.SourceCharley, func(t string) bool {
		return strings.Contains(t, "The Charley Project") ||
			strings.Contains(t, "Details of Disappearance") ||
			strings.Contains(t, "Missing From")
	}},
}

func isVSP(t string) bool {
	if !strings.Contains(t, "MISSING PERSONS") {
		return false
	}
	return strings.Contains(t, "Missing From") ||
		strings.Contains(t, "Virginia State Police") ||
		vaaCaseRe.MatchString(t)
}

// Source returns the first matching source identifier, or Unknown when no
// markers are present. Pure function of the text.
func Source(text string) constants.Source {
	for _, r := range rules {
		if r.match(text) {
			return r.source
		}
	}
	return constants.SourceUnknown
}
