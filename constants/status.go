package constants

// CaseStatus is the canonical outcome.case_status enum.
type CaseStatus string

// Stable values (store these exact strings in output records).
const (
	CaseStatusOngoing  CaseStatus = "ongoing"
	CaseStatusFound    CaseStatus = "found"
	CaseStatusNotFound CaseStatus = "not_found"
)

// ValidCaseStatus reports whether s is one of the allowed enum values.
func ValidCaseStatus(s string) bool {
	switch CaseStatus(s) {
	case CaseStatusOngoing, CaseStatusFound, CaseStatusNotFound:
		return true
	}
	return false
}

// DocStatus is the per-document processing status recorded in the audit store.
type DocStatus string

const (
	DocStatusAccepted DocStatus = "ACCEPTED" // record validated and written
	DocStatusSkipped  DocStatus = "SKIPPED"  // validation failed after repair
	DocStatusError    DocStatus = "ERROR"    // producer or I/O failure
)
