// Package model holds the in-memory model that declaration front ends build
// and the migration differ consumes. Hash declarations live on properties
// only as the annotation triplet; no richer descriptor object crosses
// package boundaries.
package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hashcol/hashcol/internal/annotation"
	"github.com/hashcol/hashcol/internal/descriptor"
)

// Model is a set of entities keyed by name.
type Model struct {
	Entities []*Entity `json:"entities"`
}

// Entity maps to a table.
type Entity struct {
	Name       string      `json:"name"`
	Properties []*Property `json:"properties"`
}

// Property maps to a column. Annotations carry the computed-hash triplet
// when the property has a hash declaration.
type Property struct {
	Name         string            `json:"name"`
	Kind         string            `json:"kind"`
	Nullable     bool              `json:"nullable,omitempty"`
	ExplicitType string            `json:"explicit_type,omitempty"`
	Annotations  map[string]string `json:"annotations,omitempty"`
}

// Entity returns the named entity, or nil.
func (m *Model) Entity(name string) *Entity {
	for _, e := range m.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Property returns the named property, or nil.
func (e *Entity) Property(name string) *Property {
	for _, p := range e.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// HashDescriptor decodes the property's computed-hash declaration from its
// annotations. Returns ok=false for ordinary columns.
func (p *Property) HashDescriptor() (descriptor.Descriptor, bool, error) {
	if p.Annotations == nil {
		return descriptor.Descriptor{}, false, nil
	}
	return annotation.Decode(p.Name, p.Annotations)
}

// CanonicalJSON emits a canonical form: entities and properties in declared
// order, annotation keys sorted. Canonical bytes feed the snapshot
// fingerprint, so the encoding must be stable across runs.
func (m *Model) CanonicalJSON() ([]byte, error) {
	// encoding/json already sorts map keys; declared order of slices is
	// preserved. Marshal is sufficient as long as the struct shape is stable.
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("model: canonical encoding failed: %w", err)
	}
	return data, nil
}

// FromJSON decodes a model from its snapshot payload.
func FromJSON(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("model: decoding snapshot payload failed: %w", err)
	}
	return &m, nil
}

// SortedAnnotationKeys returns the property's annotation keys in sorted
// order, for deterministic logging and diffing.
func (p *Property) SortedAnnotationKeys() []string {
	keys := make([]string, 0, len(p.Annotations))
	for k := range p.Annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
