// Package schema validates case records against the embedded Draft-7
// case-record schema and reports violations as stable, sorted error lists
// suitable for feeding back into a repair prompt.
package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed guardian_schema.json
var schemaBytes []byte

// Violation is one schema failure, addressed by its instance path.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validator wraps the compiled case-record schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource("guardian_schema.json", bytes.NewReader(schemaBytes)); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	s, err := c.Compile("guardian_schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate checks a record and returns its violations sorted by
// (path, message) so repeated runs produce identical lists. source_path and
// audit are pipeline bookkeeping and excluded from validation; the input
// map is not modified. A nil return means the record is valid.
func (v *Validator) Validate(rec map[string]any) []Violation {
	stripped := make(map[string]any, len(rec))
	for k, val := range rec {
		if k == "source_path" || k == "audit" {
			continue
		}
		stripped[k] = val
	}

	err := v.schema.Validate(stripped)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Violation{{Path: "", Message: err.Error()}}
	}

	var out []Violation
	collectLeaves(ve, &out)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// collectLeaves walks the cause tree down to leaf failures; interior nodes
// only restate their children.
func collectLeaves(ve *jsonschema.ValidationError, out *[]Violation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Violation{
			Path:    instancePath(ve.InstanceLocation),
			Message: ve.Message,
		})
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

// instancePath renders a JSON-pointer instance location as a dotted path,
// "" for the document root.
func instancePath(loc string) string {
	loc = strings.TrimPrefix(loc, "/")
	if loc == "" {
		return ""
	}
	return strings.ReplaceAll(loc, "/", ".")
}

// Strings flattens violations for logs and prompts.
func Strings(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}
