package catalog

import (
	"github.com/gogpu/shaderwall/effect"
)

// Failure records a source skipped during discovery.
type Failure struct {
	Ref string
	Err error
}

type entry struct {
	desc   *effect.Descriptor
	source string
}

// Snapshot is an immutable view of the catalog. A nil *Snapshot is empty.
type Snapshot struct {
	entries  []entry
	index    map[string]int
	failures []Failure
}

// Get returns the descriptor for id.
func (s *Snapshot) Get(id string) (*effect.Descriptor, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.entries[i].desc, true
}

// Source returns the source text of the effect with the given id.
func (s *Snapshot) Source(id string) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[id]
	if !ok {
		return "", false
	}
	return s.entries[i].source, true
}

// All returns the descriptors in discovery order. An id discovered more
// than once keeps the position of its first occurrence.
func (s *Snapshot) All() []*effect.Descriptor {
	if s == nil {
		return nil
	}
	out := make([]*effect.Descriptor, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.desc
	}
	return out
}

// IDs returns the effect ids in discovery order.
func (s *Snapshot) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.desc.ID
	}
	return out
}

// Len returns the number of effects.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Failures returns the sources skipped by the discovery pass that
// produced this snapshot.
func (s *Snapshot) Failures() []Failure {
	if s == nil {
		return nil
	}
	return append([]Failure(nil), s.failures...)
}
