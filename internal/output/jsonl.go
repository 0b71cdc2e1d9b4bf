// Package output persists finished case records as JSONL and CSV. JSONL is
// the system of record, one JSON object per line; CSV is a flattened
// convenience view for spreadsheet users.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONLWriter appends records to a JSONL file, one object per line.
// Safe for concurrent use by batch workers.
type JSONLWriter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLWriter opens path for appending, creating it when missing.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening jsonl output %s: %w", path, err)
	}
	return &JSONLWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// Write appends one record. The _fulltext working field is stripped before
// persistence; records on disk never carry raw document text.
func (w *JSONLWriter) Write(rec map[string]any) error {
	clean := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == "_fulltext" {
			continue
		}
		if k == "demographic" {
			if demo, ok := v.(map[string]any); ok {
				d := make(map[string]any, len(demo))
				for dk, dv := range demo {
					if dk == "_fulltext" {
						continue
					}
					d[dk] = dv
				}
				clean[k] = d
				continue
			}
		}
		clean[k] = v
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(clean); err != nil {
		return fmt.Errorf("writing jsonl record: %w", err)
	}
	return nil
}

func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// ReadJSONL loads every record from a JSONL file.
func ReadJSONL(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening jsonl input %s: %w", path, err)
	}
	defer f.Close()

	var records []map[string]any
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decoding jsonl record %d from %s: %w", len(records)+1, path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
