package board

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator supplies ids when synthesizing pages and buttons for formats
// that do not carry stable ids of their own. It is a capability passed into
// codecs, never ambient state, so tests can supply deterministic sequences.
type IDGenerator interface {
	NewID() string
}

// UUIDs is the production generator.
type UUIDs struct{}

func (UUIDs) NewID() string {
	return uuid.NewString()
}

// Sequence generates "prefix-1", "prefix-2", ... for deterministic tests.
type Sequence struct {
	Prefix string
	next   int
}

func (s *Sequence) NewID() string {
	s.next++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, s.next)
}
