package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Sequence hands out case ids of the form GRD-YYYY-NNNNNN, monotonically
// within a run. Safe for concurrent workers.
type Sequence struct {
	year string
	n    atomic.Int64
}

// NewSequence starts a sequence for the current year.
func NewSequence() *Sequence {
	return &Sequence{year: time.Now().Format("2006")}
}

// Next returns the next case id.
func (s *Sequence) Next() string {
	return fmt.Sprintf("GRD-%s-%06d", s.year, s.n.Add(1))
}

// Peek returns the id the next call to Next would produce, without
// consuming it.
func (s *Sequence) Peek() string {
	return fmt.Sprintf("GRD-%s-%06d", s.year, s.n.Load()+1)
}
