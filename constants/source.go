package constants

// Source identifies which issuing organization's document layout produced a
// record. The detector returns one of these and the matching extractor runs.
type Source string

// Stable values (these exact strings appear in output records).
const (
	SourceVSP     Source = "VSP"     // Virginia State Police multi-case bulletin
	SourceNamUs   Source = "NamUs"   // NamUs form-style case page
	SourceNCMEC   Source = "NCMEC"   // NCMEC missing-child poster
	SourceFBI     Source = "FBI"     // FBI narrative poster
	SourceCharley Source = "Charley" // Charley Project narrative page
	SourceUnknown Source = "Unknown" // no markers matched; narrative fallback
)

// CharleyProvenanceTag is the legacy tag written to provenance.sources for
// Charley-layout records. It predates the shorter detector value.
const CharleyProvenanceTag = "CharleyProject"

func (s Source) String() string { return string(s) }
